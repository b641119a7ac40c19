package detect

import (
	"github.com/seastate/heatwave/internal/climatology"
	"github.com/seastate/heatwave/internal/timeseries"
)

// run is a candidate event over inclusive series indices [start, end].
type run struct {
	start int
	end   int
}

// flagExceedances marks each series index whose observed value crosses the
// seasonal threshold in the configured direction. Days with a missing
// observation or missing climatology are never flagged.
func flagExceedances(series timeseries.Series, clim *climatology.Climatology, mode Mode) []bool {
	flags := make([]bool, len(series))
	for i, obs := range series {
		if obs.Missing {
			continue
		}
		pt := clim.Points[i]
		if pt.Missing {
			continue
		}
		switch mode {
		case ModeCold:
			flags[i] = obs.Value < pt.Threshold
		default:
			flags[i] = obs.Value > pt.Threshold
		}
	}
	return flags
}

// collectRuns groups consecutive flagged indices into candidate runs.
func collectRuns(flags []bool) []run {
	var runs []run
	i := 0
	for i < len(flags) {
		if !flags[i] {
			i++
			continue
		}
		j := i
		for j+1 < len(flags) && flags[j+1] {
			j++
		}
		runs = append(runs, run{start: i, end: j})
		i = j + 1
	}
	return runs
}

// mergeRuns joins adjacent runs whose calendar gap is at most maxGap days.
// The comparison is inclusive: runs separated by exactly maxGap days merge.
// Gap days are absorbed into the merged run.
func mergeRuns(runs []run, maxGap int) []run {
	if len(runs) == 0 {
		return nil
	}
	merged := []run{runs[0]}
	for _, r := range runs[1:] {
		last := &merged[len(merged)-1]
		gap := r.start - last.end - 1
		if gap <= maxGap {
			last.end = r.end
		} else {
			merged = append(merged, r)
		}
	}
	return merged
}

// segment produces the ordered event sequence for a flagged series: runs are
// collected, merged per the gap rule, filtered by the minimum duration rule
// (strictly shorter runs are discarded), and materialized with their member
// days. Bridged days are members that were absorbed by a merge rather than
// flagged themselves.
func segment(series timeseries.Series, clim *climatology.Climatology, mode Mode, minDuration, maxGap int) []Event {
	flags := flagExceedances(series, clim, mode)
	runs := mergeRuns(collectRuns(flags), maxGap)

	var events []Event
	for _, r := range runs {
		duration := r.end - r.start + 1
		if duration < minDuration {
			continue
		}
		days := make([]MemberDay, 0, duration)
		for i := r.start; i <= r.end; i++ {
			obs := series[i]
			pt := clim.Points[i]
			days = append(days, MemberDay{
				Date:         obs.Date,
				Value:        obs.Value,
				SeasonalMean: pt.Mean,
				Threshold:    pt.Threshold,
				Bridged:      !flags[i],
				Missing:      obs.Missing || pt.Missing,
			})
		}
		ev := Event{
			Start:    series[r.start].Date,
			End:      series[r.end].Date,
			Duration: duration,
			Days:     days,
		}
		computeMetrics(&ev, mode)
		events = append(events, ev)
	}
	return events
}
