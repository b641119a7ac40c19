package gridsource

import (
	"context"
	"fmt"

	"github.com/seastate/heatwave/internal/database"
)

// DatabaseSource reads pixel series from the sst_observations table.
type DatabaseSource struct {
	client *database.Client
}

// NewDatabaseSource creates a source over an already-connected client.
func NewDatabaseSource(client *database.Client) *DatabaseSource {
	return &DatabaseSource{client: client}
}

// Load enumerates the distinct pixels in the observation table and fetches
// each pixel's series in chronological order.
func (s *DatabaseSource) Load(ctx context.Context) ([]PixelSeries, error) {
	ids, err := s.client.PixelIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pixels: %w", err)
	}

	pixels := make([]PixelSeries, 0, len(ids))
	for _, id := range ids {
		obs, err := s.client.ObservationsForPixel(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading pixel %s: %w", id, err)
		}
		pixels = append(pixels, PixelSeries{PixelID: id, Observations: obs})
	}
	return pixels, nil
}
