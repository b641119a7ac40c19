package detect

import (
	"time"

	"github.com/seastate/heatwave/internal/climatology"
)

// Mode selects which side of the seasonal threshold counts as an exceedance.
type Mode string

const (
	// ModeWarm detects extreme-high episodes: value > threshold.
	ModeWarm Mode = "warm"

	// ModeCold detects extreme-low episodes: value < threshold.
	ModeCold Mode = "cold"
)

// MemberDay is one calendar day belonging to an event, carrying the observed
// value and the seasonal baseline at that date. Bridged marks a day that did
// not itself exceed the threshold but was absorbed when two exceedance runs
// merged across a short gap; its observed value still contributes to event
// statistics. Missing marks a member day with no observation; it counts
// toward duration but contributes nothing to intensity statistics.
type MemberDay struct {
	Date         time.Time
	Value        float64
	SeasonalMean float64
	Threshold    float64
	Bridged      bool
	Missing      bool
}

// Anomaly returns the deviation of the observed value from the seasonal
// mean. Only meaningful when the day is not missing.
func (m MemberDay) Anomaly() float64 {
	return m.Value - m.SeasonalMean
}

// Event is one extreme episode: a merged, duration-filtered run of
// exceedance days, with its intensity statistics filled in. Undefined
// statistics (variance of a single sample, rate over a zero-length interval)
// are NaN.
type Event struct {
	Start    time.Time
	End      time.Time
	Peak     time.Time
	Duration int
	Days     []MemberDay

	// Intensities relative to the seasonal mean.
	IntensityMean       float64
	IntensityMax        float64
	IntensityCumulative float64
	IntensityVar        float64

	// Intensities relative to the seasonal threshold.
	IntensityMeanRelThresh       float64
	IntensityMaxRelThresh        float64
	IntensityCumulativeRelThresh float64

	RateOnset   float64
	RateDecline float64
}

// Result is the full detection output for one pixel's series: the per-date
// seasonal baseline and the chronologically ordered events.
type Result struct {
	Climatology *climatology.Climatology
	Events      []Event
}
