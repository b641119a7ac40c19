// Package climatology builds the day-of-year seasonal baseline (mean and
// percentile threshold) for a daily temperature series. The baseline is
// estimated from a configurable historical period by pooling values in a
// centered day-of-year window across all baseline years, then smoothing the
// resulting curves with a circular moving average.
package climatology

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/seastate/heatwave/internal/timeseries"
)

// ErrInvalidBaseline indicates a baseline period outside the series span or
// an empty/inverted baseline window.
var ErrInvalidBaseline = errors.New("invalid baseline period")

// Config holds the climatology estimation parameters.
type Config struct {
	// BaselineStart and BaselineEnd bound the historical period (inclusive)
	// used to estimate the seasonal statistics. Must lie within the series.
	BaselineStart time.Time
	BaselineEnd   time.Time

	// WindowWidth is the full width in days of the centered day-of-year
	// pooling window. 11 means ±5 days around each day-of-year.
	WindowWidth int

	// Percentile is the threshold percentile in (0, 100), e.g. 90.
	Percentile float64

	// SmoothingWidth is the full width in days of the centered moving
	// average applied to the raw seasonal curves, wrapping circularly
	// across the year boundary.
	SmoothingWidth int
}

// DefaultConfig returns the standard climatology parameters for the given
// baseline period: an 11-day pooling window, 90th-percentile threshold, and
// a 31-day smoothing pass.
func DefaultConfig(baselineStart, baselineEnd time.Time) Config {
	return Config{
		BaselineStart:  timeseries.Day(baselineStart),
		BaselineEnd:    timeseries.Day(baselineEnd),
		WindowWidth:    11,
		Percentile:     90,
		SmoothingWidth: 31,
	}
}

// Point is the seasonal baseline at one date: the smoothed seasonal mean and
// the smoothed seasonal threshold. Missing marks a day-of-year whose pooled
// baseline sample was empty; comparisons against a missing point never flag.
type Point struct {
	Mean      float64
	Threshold float64
	Missing   bool
}

// Curve is the smoothed seasonal cycle indexed by day-of-year 1..366.
// Index 0 is unused.
type Curve struct {
	Mean      [timeseries.DOYMax + 1]float64
	Threshold [timeseries.DOYMax + 1]float64
	Missing   [timeseries.DOYMax + 1]bool
}

// Climatology maps every calendar date of a series span to its seasonal
// baseline Point.
type Climatology struct {
	Start  time.Time
	Points []Point
}

// At returns the baseline point for the given date. ok is false when the
// date is outside the climatology span.
func (c *Climatology) At(date time.Time) (Point, bool) {
	i := timeseries.DaysBetween(c.Start, date)
	if i < 0 || i >= len(c.Points) {
		return Point{}, false
	}
	return c.Points[i], true
}

// Build estimates the seasonal curve from the baseline period of the series
// and maps it onto every date of the full series span.
func Build(series timeseries.Series, cfg Config) (*Climatology, error) {
	curve, err := BuildCurve(series, cfg)
	if err != nil {
		return nil, err
	}
	return curve.Apply(series), nil
}

// BuildCurve estimates the smoothed day-of-year seasonal curve from the
// baseline period of the series. The threshold percentile is computed with
// linear interpolation between order statistics (gonum stat.Quantile,
// LinInterp); the interpolation rule is part of the contract because
// downstream trend comparisons are sensitive to exact threshold values.
func BuildCurve(series timeseries.Series, cfg Config) (*Curve, error) {
	if err := Validate(series, cfg); err != nil {
		return nil, err
	}

	half := cfg.WindowWidth / 2

	// Pool baseline values into day-of-year buckets. Each observation lands
	// in every bucket whose centered window covers its day-of-year, with
	// wrapping so the pool for early-January days includes late December.
	buckets := make([][]float64, timeseries.DOYMax+1)
	startIdx := series.Index(cfg.BaselineStart)
	endIdx := series.Index(cfg.BaselineEnd)
	for i := startIdx; i <= endIdx; i++ {
		obs := series[i]
		if obs.Missing {
			continue
		}
		doy := timeseries.DayOfYear(obs.Date)
		for off := -half; off <= half; off++ {
			d := timeseries.WrapDOY(doy + off)
			buckets[d] = append(buckets[d], obs.Value)
		}
	}

	var raw Curve
	for d := 1; d <= timeseries.DOYMax; d++ {
		sample := buckets[d]
		if len(sample) == 0 {
			raw.Missing[d] = true
			continue
		}
		sort.Float64s(sample)
		raw.Mean[d] = stat.Mean(sample, nil)
		raw.Threshold[d] = stat.Quantile(cfg.Percentile/100, stat.LinInterp, sample, nil)
	}

	smoothed := smoothCircular(&raw, cfg.SmoothingWidth)
	return smoothed, nil
}

// Apply maps the day-of-year curve onto every calendar date of the series
// span, producing a per-date Climatology.
func (c *Curve) Apply(series timeseries.Series) *Climatology {
	points := make([]Point, len(series))
	for i, obs := range series {
		d := timeseries.DayOfYear(obs.Date)
		points[i] = Point{
			Mean:      c.Mean[d],
			Threshold: c.Threshold[d],
			Missing:   c.Missing[d],
		}
	}
	return &Climatology{Start: series.Start(), Points: points}
}

// smoothCircular applies a centered moving average of the given full width
// to both seasonal curves, wrapping across the day-of-year boundary so that
// day 1 and day 366 remain continuous. Days whose raw value is missing stay
// missing; missing neighbors are excluded from the average.
func smoothCircular(raw *Curve, width int) *Curve {
	if width <= 1 {
		out := *raw
		return &out
	}
	half := width / 2

	var out Curve
	for d := 1; d <= timeseries.DOYMax; d++ {
		if raw.Missing[d] {
			out.Missing[d] = true
			continue
		}
		var meanSum, threshSum float64
		var n int
		for off := -half; off <= half; off++ {
			k := timeseries.WrapDOY(d + off)
			if raw.Missing[k] {
				continue
			}
			meanSum += raw.Mean[k]
			threshSum += raw.Threshold[k]
			n++
		}
		out.Mean[d] = meanSum / float64(n)
		out.Threshold[d] = threshSum / float64(n)
	}
	return &out
}

// Validate checks that the baseline period and curve parameters are usable
// for the given series. BuildCurve runs the same checks; callers reusing a
// curve built elsewhere (for example from the climatology cache) must call
// it themselves, since a curve carries no record of the series it was built
// from.
func Validate(series timeseries.Series, cfg Config) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: empty series", ErrInvalidBaseline)
	}
	start := timeseries.Day(cfg.BaselineStart)
	end := timeseries.Day(cfg.BaselineEnd)
	if start.After(end) {
		return fmt.Errorf("%w: baseline start %s after end %s",
			ErrInvalidBaseline, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if !series.Contains(start, end) {
		return fmt.Errorf("%w: baseline %s..%s outside series span %s..%s",
			ErrInvalidBaseline,
			start.Format("2006-01-02"), end.Format("2006-01-02"),
			series.Start().Format("2006-01-02"), series.End().Format("2006-01-02"))
	}
	// Anything shorter than a full seasonal cycle leaves day-of-year
	// buckets with no chance of a sample.
	if span := timeseries.DaysBetween(start, end) + 1; span < 365 {
		return fmt.Errorf("%w: baseline spans %d days, need at least one full year", ErrInvalidBaseline, span)
	}
	if cfg.WindowWidth < 1 || cfg.WindowWidth%2 == 0 {
		return fmt.Errorf("%w: window width must be a positive odd integer, got %d", ErrInvalidBaseline, cfg.WindowWidth)
	}
	if cfg.Percentile <= 0 || cfg.Percentile >= 100 {
		return fmt.Errorf("%w: percentile must be in (0, 100), got %g", ErrInvalidBaseline, cfg.Percentile)
	}
	if cfg.SmoothingWidth < 1 || cfg.SmoothingWidth%2 == 0 {
		return fmt.Errorf("%w: smoothing width must be a positive odd integer, got %d", ErrInvalidBaseline, cfg.SmoothingWidth)
	}
	return nil
}
