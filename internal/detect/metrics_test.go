package detect

import (
	"math"
	"testing"
)

func TestEventMetrics(t *testing.T) {
	start := date(2020, 7, 1)
	// Anomalies against a flat mean of 10 / threshold of 10.5:
	// values 11,12,13,12,11 → anomalies 1,2,3,2,1.
	series := makeSeries(t, start, []float64{10, 11, 12, 13, 12, 11, 10})
	events := runSegmenter(t, series, flatClim(series, 10, 10.5), 5, 0)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]

	if ev.Duration != 5 {
		t.Errorf("duration = %d, want 5", ev.Duration)
	}
	if !ev.Start.Equal(start.AddDate(0, 0, 1)) || !ev.End.Equal(start.AddDate(0, 0, 5)) {
		t.Errorf("event spans %s..%s", ev.Start.Format("2006-01-02"), ev.End.Format("2006-01-02"))
	}
	if !ev.Peak.Equal(start.AddDate(0, 0, 3)) {
		t.Errorf("peak = %s, want day 3", ev.Peak.Format("2006-01-02"))
	}

	const eps = 1e-9
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"intensity mean", ev.IntensityMean, 1.8},
		{"intensity max", ev.IntensityMax, 3},
		{"intensity cumulative", ev.IntensityCumulative, 9},
		{"intensity variance", ev.IntensityVar, 0.7}, // sample variance of 1,2,3,2,1
		{"rate onset", ev.RateOnset, 1},              // (3-1)/2 days
		{"rate decline", ev.RateDecline, 1},          // (3-1)/2 days
		{"intensity mean rel thresh", ev.IntensityMeanRelThresh, 1.3},
		{"intensity max rel thresh", ev.IntensityMaxRelThresh, 2.5},
		{"intensity cumulative rel thresh", ev.IntensityCumulativeRelThresh, 6.5},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > eps {
			t.Errorf("%s = %g, want %g", c.name, c.got, c.want)
		}
	}
}

func TestEventMetricsPeakTieBreak(t *testing.T) {
	start := date(2020, 7, 1)
	// Two days share the maximum anomaly; the earlier one is the peak.
	series := makeSeries(t, start, []float64{0, 2, 3, 3, 2, 2, 0})
	events := runSegmenter(t, series, flatClim(series, 0, 1), 5, 0)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if want := start.AddDate(0, 0, 2); !events[0].Peak.Equal(want) {
		t.Errorf("peak = %s, want %s (earliest of tied days)",
			events[0].Peak.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestEventMetricsDegenerateRates(t *testing.T) {
	start := date(2020, 7, 1)

	// Monotonically declining event: peak is the first day, so the onset
	// rate is undefined while the decline rate is not.
	series := makeSeries(t, start, []float64{0, 5, 4, 3, 2, 2, 0})
	events := runSegmenter(t, series, flatClim(series, 0, 1), 5, 0)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if !math.IsNaN(ev.RateOnset) {
		t.Errorf("rate onset = %g, want NaN when peak == start", ev.RateOnset)
	}
	if math.Abs(ev.RateDecline-0.75) > 1e-9 { // (5-2)/4 days
		t.Errorf("rate decline = %g, want 0.75", ev.RateDecline)
	}

	// Mirrored event: peak is the last day, decline undefined.
	series = makeSeries(t, start, []float64{0, 2, 2, 3, 4, 5, 0})
	events = runSegmenter(t, series, flatClim(series, 0, 1), 5, 0)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev = events[0]
	if !math.IsNaN(ev.RateDecline) {
		t.Errorf("rate decline = %g, want NaN when peak == end", ev.RateDecline)
	}
	if math.Abs(ev.RateOnset-0.75) > 1e-9 {
		t.Errorf("rate onset = %g, want 0.75", ev.RateOnset)
	}
}

func TestEventMetricsVarianceRequiresTwoSamples(t *testing.T) {
	start := date(2020, 7, 1)
	// A single-day event carries one intensity sample, so the sample
	// variance is undefined.
	series := makeSeries(t, start, []float64{0, 3, 0, 0, 0})
	events := runSegmenter(t, series, flatClim(series, 0, 1), 1, 0)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !math.IsNaN(events[0].IntensityVar) {
		t.Errorf("variance = %g, want NaN with a single sample", events[0].IntensityVar)
	}
}

func TestEventPeakWithinSpanAndDominant(t *testing.T) {
	start := date(2020, 7, 1)
	series := makeSeries(t, start, []float64{0, 2, 5, 3, 2, 0, 0, 2, 2, 4, 2, 2, 0})
	events := runSegmenter(t, series, flatClim(series, 0, 1), 4, 0)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	for i, ev := range events {
		if ev.Peak.Before(ev.Start) || ev.Peak.After(ev.End) {
			t.Errorf("event %d: peak %s outside [%s, %s]", i,
				ev.Peak.Format("2006-01-02"), ev.Start.Format("2006-01-02"), ev.End.Format("2006-01-02"))
		}
		var peakMag float64
		for _, day := range ev.Days {
			if day.Date.Equal(ev.Peak) {
				peakMag = math.Abs(day.Anomaly())
			}
		}
		for _, day := range ev.Days {
			if day.Missing {
				continue
			}
			if math.Abs(day.Anomaly()) > peakMag {
				t.Errorf("event %d: day %s anomaly %g exceeds peak magnitude %g", i,
					day.Date.Format("2006-01-02"), day.Anomaly(), peakMag)
			}
		}
	}
}
