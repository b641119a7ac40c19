// Package detect implements marine-heat-wave detection over a daily
// temperature series: exceedance flagging against a seasonal climatology,
// gap-tolerant event segmentation, and per-event intensity metrics.
//
// Detection is a pure function of (series, options); it holds no state and
// performs no I/O, so pixels can be processed concurrently without locking.
package detect

import (
	"fmt"
	"time"

	"github.com/seastate/heatwave/internal/climatology"
	"github.com/seastate/heatwave/internal/timeseries"
)

// Options configures one detection run.
type Options struct {
	BaselineStart time.Time
	BaselineEnd   time.Time

	// MinDuration is the minimum event length in days; shorter runs are
	// discarded (strictly shorter: a run of exactly MinDuration survives).
	MinDuration int

	// MaxGap is the largest calendar gap in days bridged between two
	// exceedance runs. The rule is inclusive: runs separated by exactly
	// MaxGap days merge.
	MaxGap int

	Mode Mode

	// Window is the full width of the day-of-year pooling window used by
	// the climatology (11 means ±5 days).
	Window int

	// ThresholdPercentile is the seasonal threshold percentile, e.g. 90.
	ThresholdPercentile float64

	// SmoothingWindow is the full width of the moving average applied to
	// the seasonal curves.
	SmoothingWindow int
}

// DefaultOptions returns the standard marine-heat-wave detection parameters
// for the given baseline period: 5-day minimum duration, 2-day gap bridging,
// warm-side detection, 11-day pooling window, 90th-percentile threshold,
// 31-day smoothing.
func DefaultOptions(baselineStart, baselineEnd time.Time) Options {
	return Options{
		BaselineStart:       baselineStart,
		BaselineEnd:         baselineEnd,
		MinDuration:         5,
		MaxGap:              2,
		Mode:                ModeWarm,
		Window:              11,
		ThresholdPercentile: 90,
		SmoothingWindow:     31,
	}
}

func (o Options) climatologyConfig() climatology.Config {
	return climatology.Config{
		BaselineStart:  o.BaselineStart,
		BaselineEnd:    o.BaselineEnd,
		WindowWidth:    o.Window,
		Percentile:     o.ThresholdPercentile,
		SmoothingWidth: o.SmoothingWindow,
	}
}

// Detect runs the full pipeline on a gap-filled series: build the seasonal
// climatology from the baseline period, flag exceedances, segment them into
// events, and compute per-event metrics. Fails with
// climatology.ErrInvalidBaseline when the baseline is unusable; statistical
// degeneracies degrade to missing values instead of errors.
func Detect(series timeseries.Series, opts Options) (*Result, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty series", timeseries.ErrInvalidInput)
	}
	if opts.MinDuration < 1 {
		return nil, fmt.Errorf("%w: minimum duration must be at least 1, got %d", timeseries.ErrInvalidInput, opts.MinDuration)
	}
	if opts.MaxGap < 0 {
		return nil, fmt.Errorf("%w: maximum gap must be non-negative, got %d", timeseries.ErrInvalidInput, opts.MaxGap)
	}

	clim, err := climatology.Build(series, opts.climatologyConfig())
	if err != nil {
		return nil, err
	}
	return DetectWithClimatology(series, clim, opts)
}

// DetectWithClimatology runs flagging, segmentation, and metrics against a
// climatology built elsewhere (for example restored from the climatology
// cache). The climatology must cover the same span as the series.
func DetectWithClimatology(series timeseries.Series, clim *climatology.Climatology, opts Options) (*Result, error) {
	if len(clim.Points) != len(series) || !clim.Start.Equal(series.Start()) {
		return nil, fmt.Errorf("%w: climatology span does not match series span", timeseries.ErrInvalidInput)
	}
	events := segment(series, clim, opts.Mode, opts.MinDuration, opts.MaxGap)
	return &Result{Climatology: clim, Events: events}, nil
}
