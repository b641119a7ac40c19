package climatology

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/seastate/heatwave/internal/timeseries"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// buildSeries constructs a gap-filled daily series from start to end where
// each day's value is produced by fn (nil fn means missing).
func buildSeries(t *testing.T, start, end time.Time, fn func(time.Time) (float64, bool)) timeseries.Series {
	t.Helper()
	var obs []timeseries.Observation
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		v, ok := fn(d)
		obs = append(obs, timeseries.Observation{Date: d, Value: v, Missing: !ok})
	}
	series, err := timeseries.MakeWhole(obs)
	if err != nil {
		t.Fatalf("building series: %v", err)
	}
	return series
}

func TestBuildConstantSeries(t *testing.T) {
	series := buildSeries(t, date(2015, 1, 1), date(2017, 12, 31), func(time.Time) (float64, bool) {
		return 12.5, true
	})

	clim, err := Build(series, DefaultConfig(date(2015, 1, 1), date(2016, 12, 31)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(clim.Points) != len(series) {
		t.Fatalf("climatology covers %d days, series has %d", len(clim.Points), len(series))
	}
	for i, pt := range clim.Points {
		if pt.Missing {
			t.Fatalf("day %d unexpectedly missing", i)
		}
		if math.Abs(pt.Mean-12.5) > 1e-9 {
			t.Fatalf("day %d mean = %g, want 12.5", i, pt.Mean)
		}
		if math.Abs(pt.Threshold-12.5) > 1e-9 {
			t.Fatalf("day %d threshold = %g, want 12.5", i, pt.Threshold)
		}
	}
}

func TestBuildCurveSeasonalContinuity(t *testing.T) {
	// Seasonal sinusoid keyed to day-of-year so the curve must be periodic:
	// the smoothed values at day 366 and day 1 stay continuous across the
	// year wrap.
	series := buildSeries(t, date(2012, 1, 1), date(2016, 12, 31), func(d time.Time) (float64, bool) {
		doy := float64(timeseries.DayOfYear(d))
		return 10 + 5*math.Sin(2*math.Pi*doy/366), true
	})

	curve, err := BuildCurve(series, DefaultConfig(date(2012, 1, 1), date(2016, 12, 31)))
	if err != nil {
		t.Fatalf("BuildCurve: %v", err)
	}

	// Per-day step of the sinusoid is about 0.086; the wrap discontinuity
	// must stay on that order, not jump across the seasonal range.
	if diff := math.Abs(curve.Mean[366] - curve.Mean[1]); diff > 0.5 {
		t.Errorf("mean curve discontinuous at year wrap: |%g - %g| = %g",
			curve.Mean[366], curve.Mean[1], diff)
	}
	if diff := math.Abs(curve.Threshold[366] - curve.Threshold[1]); diff > 0.5 {
		t.Errorf("threshold curve discontinuous at year wrap: |%g - %g| = %g",
			curve.Threshold[366], curve.Threshold[1], diff)
	}

	// The smoothed mean should track the seasonal cycle: summer bucket well
	// above winter bucket.
	if curve.Mean[92] <= curve.Mean[275] {
		t.Errorf("seasonal cycle lost: mean[92]=%g <= mean[275]=%g", curve.Mean[92], curve.Mean[275])
	}
}

func TestBuildCurveThresholdAboveMean(t *testing.T) {
	// With spread in each bucket the 90th percentile must exceed the mean.
	series := buildSeries(t, date(2014, 1, 1), date(2018, 12, 31), func(d time.Time) (float64, bool) {
		// Deterministic within-bucket spread: alternate offsets by year.
		return 10 + float64(d.Year()%5), true
	})

	curve, err := BuildCurve(series, DefaultConfig(date(2014, 1, 1), date(2018, 12, 31)))
	if err != nil {
		t.Fatalf("BuildCurve: %v", err)
	}
	for d := 1; d <= timeseries.DOYMax; d++ {
		if curve.Missing[d] {
			continue
		}
		if curve.Threshold[d] <= curve.Mean[d] {
			t.Fatalf("day %d: threshold %g <= mean %g", d, curve.Threshold[d], curve.Mean[d])
		}
	}
}

func TestBuildCurveEmptyBucketPropagatesMissing(t *testing.T) {
	// One year of baseline with a long missing stretch: buckets whose ±5
	// day window falls entirely inside the stretch have no pooled samples
	// and must come out missing rather than zero.
	gapStart := date(2019, 6, 1)
	gapEnd := date(2019, 6, 30)
	series := buildSeries(t, date(2019, 1, 1), date(2019, 12, 31), func(d time.Time) (float64, bool) {
		if !d.Before(gapStart) && !d.After(gapEnd) {
			return 0, false
		}
		return 15, true
	})

	curve, err := BuildCurve(series, DefaultConfig(date(2019, 1, 1), date(2019, 12, 31)))
	if err != nil {
		t.Fatalf("BuildCurve: %v", err)
	}

	center := timeseries.DayOfYear(date(2019, 6, 15))
	if !curve.Missing[center] {
		t.Errorf("bucket %d inside missing stretch should be missing", center)
	}
	// Buckets near the edge of the stretch still receive pooled samples
	// from the window overlap.
	edge := timeseries.DayOfYear(date(2019, 6, 2))
	if curve.Missing[edge] {
		t.Errorf("bucket %d at stretch edge should have pooled samples", edge)
	}

	// Missing day-of-year propagates through Apply.
	clim := curve.Apply(series)
	pt, ok := clim.At(date(2019, 6, 15))
	if !ok || !pt.Missing {
		t.Errorf("climatology at june 15 = %+v, %v; want missing", pt, ok)
	}
}

func TestBuildInvalidBaseline(t *testing.T) {
	series := buildSeries(t, date(2020, 1, 1), date(2020, 12, 31), func(time.Time) (float64, bool) {
		return 10, true
	})

	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "baseline before series",
			cfg:  DefaultConfig(date(2019, 1, 1), date(2020, 6, 30)),
		},
		{
			name: "baseline after series",
			cfg:  DefaultConfig(date(2020, 6, 1), date(2021, 6, 30)),
		},
		{
			name: "inverted baseline",
			cfg:  DefaultConfig(date(2020, 9, 1), date(2020, 3, 1)),
		},
		{
			name: "baseline shorter than a year",
			cfg:  DefaultConfig(date(2020, 2, 1), date(2020, 10, 31)),
		},
		{
			name: "even window width",
			cfg: Config{
				BaselineStart: date(2020, 1, 1), BaselineEnd: date(2020, 12, 31),
				WindowWidth: 10, Percentile: 90, SmoothingWidth: 31,
			},
		},
		{
			name: "percentile out of range",
			cfg: Config{
				BaselineStart: date(2020, 1, 1), BaselineEnd: date(2020, 12, 31),
				WindowWidth: 11, Percentile: 100, SmoothingWidth: 31,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(series, tt.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidBaseline) {
				t.Fatalf("expected ErrInvalidBaseline, got %v", err)
			}
		})
	}
}

func TestApplyLeapAlignment(t *testing.T) {
	// The curve built from leap and non-leap years must map March 1 of any
	// year to the same bucket, so Apply across a leap boundary keeps values
	// aligned with the seasonal cycle rather than the raw calendar index.
	series := buildSeries(t, date(2019, 1, 1), date(2020, 12, 31), func(d time.Time) (float64, bool) {
		return float64(timeseries.DayOfYear(d)), true
	})

	clim, err := Build(series, DefaultConfig(date(2019, 1, 1), date(2020, 12, 31)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	pt2019, _ := clim.At(date(2019, 3, 1))
	pt2020, _ := clim.At(date(2020, 3, 1))
	if math.Abs(pt2019.Mean-pt2020.Mean) > 1e-9 {
		t.Errorf("March 1 climatology differs across leap boundary: %g vs %g", pt2019.Mean, pt2020.Mean)
	}
}
