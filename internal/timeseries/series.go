// Package timeseries provides the daily sea-surface-temperature series model
// and the calendar normalizer that turns irregular observations into a
// continuous, gap-filled daily series.
package timeseries

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidInput indicates malformed or insufficient raw observations:
// fewer than two distinct dates, duplicate dates, or unparseable dates.
var ErrInvalidInput = errors.New("invalid input series")

// Observation is a single (date, value) pair. Missing marks a calendar day
// with no usable measurement; Value is meaningless when Missing is set.
type Observation struct {
	Date    time.Time
	Value   float64
	Missing bool
}

// Series is a daily time series: exactly one observation per calendar day,
// strictly chronological, gaps represented as missing observations rather
// than omitted entries. Construct with MakeWhole.
type Series []Observation

// Day normalizes a time to UTC midnight. All series dates are kept in this
// form so that date arithmetic is exact day counts.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// MakeWhole builds a gap-filled daily Series from arbitrary observations.
// The result spans the minimum to maximum observed date inclusive; any date
// absent from the input is marked missing. Input order does not matter; the
// output is strictly chronological. Returns ErrInvalidInput when fewer than
// two distinct dates are supplied or when the same date appears twice.
func MakeWhole(observations []Observation) (Series, error) {
	byDay := make(map[time.Time]Observation, len(observations))
	for _, obs := range observations {
		d := Day(obs.Date)
		if prev, ok := byDay[d]; ok {
			// A re-supplied missing marker for a day we already have is
			// harmless; two values for one day is not.
			if prev.Missing {
				byDay[d] = Observation{Date: d, Value: obs.Value, Missing: obs.Missing}
				continue
			}
			if obs.Missing {
				continue
			}
			return nil, fmt.Errorf("%w: duplicate observation for %s", ErrInvalidInput, d.Format("2006-01-02"))
		}
		byDay[d] = Observation{Date: d, Value: obs.Value, Missing: obs.Missing}
	}

	if len(byDay) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 distinct dates, got %d", ErrInvalidInput, len(byDay))
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	first := days[0]
	last := days[len(days)-1]
	n := DaysBetween(first, last) + 1

	series := make(Series, 0, n)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if obs, ok := byDay[d]; ok {
			series = append(series, obs)
		} else {
			series = append(series, Observation{Date: d, Missing: true})
		}
	}
	return series, nil
}

// Start returns the first date of the series.
func (s Series) Start() time.Time {
	return s[0].Date
}

// End returns the last date of the series.
func (s Series) End() time.Time {
	return s[len(s)-1].Date
}

// Index returns the position of date within the series, or -1 when the date
// lies outside the series span.
func (s Series) Index(date time.Time) int {
	i := DaysBetween(s.Start(), date)
	if i < 0 || i >= len(s) {
		return -1
	}
	return i
}

// At returns the observation for the given date. ok is false when the date
// is outside the series span.
func (s Series) At(date time.Time) (Observation, bool) {
	i := s.Index(date)
	if i < 0 {
		return Observation{}, false
	}
	return s[i], true
}

// Contains reports whether both dates fall within the series span and start
// does not follow end.
func (s Series) Contains(start, end time.Time) bool {
	return s.Index(start) >= 0 && s.Index(end) >= 0 && !Day(start).After(Day(end))
}
