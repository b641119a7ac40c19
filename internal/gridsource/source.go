// Package gridsource supplies per-pixel observation series to the batch
// driver. A source hides where the grid was reshaped into per-pixel series:
// a flat CSV export or the observation table in the results database.
package gridsource

import (
	"context"

	"github.com/seastate/heatwave/internal/timeseries"
)

// PixelSeries is the raw observation list for one grid pixel, keyed by a
// stable pixel identity that downstream aggregation joins on.
type PixelSeries struct {
	PixelID      string
	Observations []timeseries.Observation
}

// Source loads all pixel series available from a backing store.
type Source interface {
	Load(ctx context.Context) ([]PixelSeries, error)
}
