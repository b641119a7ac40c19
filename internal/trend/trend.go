// Package trend aggregates detected events into per-pixel annual counts,
// the quantity the downstream event-frequency regression consumes, and
// computes a descriptive least-squares slope over those counts.
package trend

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/seastate/heatwave/internal/detect"
)

// AnnualCount is the number of events starting in one calendar year for one
// pixel. Events are keyed to years by their start date.
type AnnualCount struct {
	PixelID string
	Year    int
	Count   int
}

// AnnualCounts aggregates an ordered event sequence into per-year counts
// over the given span. Years inside the span with no events are reported
// with a zero count so the series is complete for regression.
func AnnualCounts(pixelID string, events []detect.Event, spanStart, spanEnd time.Time) []AnnualCount {
	firstYear := spanStart.Year()
	lastYear := spanEnd.Year()
	if lastYear < firstYear {
		return nil
	}

	byYear := make(map[int]int)
	for _, ev := range events {
		byYear[ev.Start.Year()]++
	}

	counts := make([]AnnualCount, 0, lastYear-firstYear+1)
	for y := firstYear; y <= lastYear; y++ {
		counts = append(counts, AnnualCount{PixelID: pixelID, Year: y, Count: byYear[y]})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Year < counts[j].Year })
	return counts
}

// Slope fits an ordinary least-squares line to the annual counts and returns
// the change in events per year. Returns NaN with ok=false when fewer than
// two years are available or the fit is degenerate. This is a descriptive
// summary only; formal event-frequency modeling happens downstream.
func Slope(counts []AnnualCount) (perYear float64, ok bool) {
	if len(counts) < 2 {
		return math.NaN(), false
	}
	years := make([]float64, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		years[i] = float64(c.Year)
		values[i] = float64(c.Count)
	}
	_, beta := stat.LinearRegression(years, values, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return math.NaN(), false
	}
	return beta, true
}
