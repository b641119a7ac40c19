package detect

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/seastate/heatwave/internal/timeseries"
)

// computeMetrics fills in the intensity statistics of an event from its
// member days. Days marked missing count toward duration but contribute no
// samples. Statistics that are undefined for the event (sample variance
// with fewer than two samples, onset/decline rates over a zero-length
// interval) come out as NaN.
func computeMetrics(ev *Event, mode Mode) {
	ev.IntensityVar = math.NaN()
	ev.RateOnset = math.NaN()
	ev.RateDecline = math.NaN()

	var anomalies []float64
	var relThresh []float64

	peakIdx := -1
	var peakMag float64
	for i, day := range ev.Days {
		if day.Missing {
			continue
		}
		anom := day.Anomaly()
		anomalies = append(anomalies, anom)
		relThresh = append(relThresh, day.Value-day.Threshold)

		// Peak is the day of maximum anomaly magnitude; the earliest such
		// day wins ties.
		if mag := math.Abs(anom); peakIdx < 0 || mag > peakMag {
			peakIdx = i
			peakMag = mag
		}
	}

	if peakIdx < 0 {
		// Every member day missing: no statistics are defined. The
		// segmenter never produces such an event, but a degenerate input
		// must degrade rather than panic.
		ev.Peak = ev.Start
		ev.IntensityMean = math.NaN()
		ev.IntensityMax = math.NaN()
		ev.IntensityCumulative = math.NaN()
		ev.IntensityMeanRelThresh = math.NaN()
		ev.IntensityMaxRelThresh = math.NaN()
		ev.IntensityCumulativeRelThresh = math.NaN()
		return
	}

	ev.Peak = ev.Days[peakIdx].Date

	ev.IntensityMean = stat.Mean(anomalies, nil)
	ev.IntensityMax = extreme(anomalies, mode)
	ev.IntensityCumulative = sum(anomalies)

	ev.IntensityMeanRelThresh = stat.Mean(relThresh, nil)
	ev.IntensityMaxRelThresh = extreme(relThresh, mode)
	ev.IntensityCumulativeRelThresh = sum(relThresh)

	if len(anomalies) >= 2 {
		ev.IntensityVar = stat.Variance(anomalies, nil)
	}

	peakAnom := ev.Days[peakIdx].Anomaly()
	if days := timeseries.DaysBetween(ev.Start, ev.Peak); days > 0 {
		if first := firstDefined(ev.Days); first != nil {
			ev.RateOnset = (peakAnom - first.Anomaly()) / float64(days)
		}
	}
	if days := timeseries.DaysBetween(ev.Peak, ev.End); days > 0 {
		if last := lastDefined(ev.Days); last != nil {
			ev.RateDecline = (peakAnom - last.Anomaly()) / float64(days)
		}
	}
}

// extreme returns the most extreme deviation in the detection direction:
// the maximum for warm events, the minimum for cold events.
func extreme(xs []float64, mode Mode) float64 {
	out := xs[0]
	for _, x := range xs[1:] {
		if (mode == ModeCold && x < out) || (mode != ModeCold && x > out) {
			out = x
		}
	}
	return out
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

// firstDefined returns the earliest member day carrying a value. The onset
// rate is anchored on it even when the event's first calendar day is a gap.
func firstDefined(days []MemberDay) *MemberDay {
	for i := range days {
		if !days[i].Missing {
			return &days[i]
		}
	}
	return nil
}

func lastDefined(days []MemberDay) *MemberDay {
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].Missing {
			return &days[i]
		}
	}
	return nil
}
