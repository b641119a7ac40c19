// Package batch fans detection out across grid pixels. Detection is a pure
// function of (series, options), so pixels run on a worker pool with no
// locking and no ordering dependency; a failure on one pixel is recorded
// and never aborts its siblings.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/seastate/heatwave/internal/climatology"
	"github.com/seastate/heatwave/internal/climcache"
	"github.com/seastate/heatwave/internal/detect"
	"github.com/seastate/heatwave/internal/gridsource"
	"github.com/seastate/heatwave/internal/timeseries"
)

// Outcome is the result of one pixel's detection: either a Result or the
// error that pixel produced.
type Outcome struct {
	PixelID string
	Result  *detect.Result
	Series  timeseries.Series
	Err     error
}

// Report summarizes one batch run. Outcomes appear in input pixel order.
type Report struct {
	JobID      uuid.UUID
	Outcomes   []Outcome
	Succeeded  int
	Failed     int
	Abandoned  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Runner dispatches per-pixel detection tasks onto a shared worker pool.
type Runner struct {
	pool   *ants.Pool
	opts   detect.Options
	cache  *climcache.Cache
	logger *zap.SugaredLogger
}

// NewRunner creates a runner with the given pool size. cache may be nil to
// disable climatology caching.
func NewRunner(workers int, opts detect.Options, cache *climcache.Cache, logger *zap.SugaredLogger) (*Runner, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Runner{pool: pool, opts: opts, cache: cache, logger: logger}, nil
}

// Close releases the worker pool.
func (r *Runner) Close() {
	r.pool.Release()
}

// Run applies detection to every pixel and collects the outcomes. Tasks not
// yet submitted when ctx is cancelled are abandoned; in-flight tasks run to
// completion (they are short and CPU-bound).
func (r *Runner) Run(ctx context.Context, pixels []gridsource.PixelSeries) *Report {
	report := &Report{
		JobID:     uuid.New(),
		Outcomes:  make([]Outcome, len(pixels)),
		StartedAt: time.Now(),
	}
	r.logger.Infof("job %s: dispatching %d pixels on %d workers", report.JobID, len(pixels), r.pool.Cap())

	var wg sync.WaitGroup
	for i := range pixels {
		if ctx.Err() != nil {
			report.Outcomes[i] = Outcome{PixelID: pixels[i].PixelID, Err: ctx.Err()}
			continue
		}

		i := i
		pixel := pixels[i]
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			report.Outcomes[i] = r.detectPixel(pixel)
		})
		if err != nil {
			wg.Done()
			report.Outcomes[i] = Outcome{PixelID: pixel.PixelID, Err: err}
		}
	}
	wg.Wait()

	// Detection itself never returns a context error, so a context error in
	// an outcome always means the task was abandoned before dispatch.
	for _, outcome := range report.Outcomes {
		switch {
		case outcome.Err == nil:
			report.Succeeded++
		case errors.Is(outcome.Err, context.Canceled), errors.Is(outcome.Err, context.DeadlineExceeded):
			report.Abandoned++
		default:
			report.Failed++
		}
	}
	report.FinishedAt = time.Now()

	r.logger.Infof("job %s: %d succeeded, %d failed, %d abandoned in %s",
		report.JobID, report.Succeeded, report.Failed, report.Abandoned,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report
}

// detectPixel runs the full pipeline for one pixel: gap-fill, climatology
// (cached when possible), segmentation, metrics.
func (r *Runner) detectPixel(pixel gridsource.PixelSeries) Outcome {
	series, err := timeseries.MakeWhole(pixel.Observations)
	if err != nil {
		r.logger.Warnf("pixel %s: %v", pixel.PixelID, err)
		return Outcome{PixelID: pixel.PixelID, Err: err}
	}

	climCfg := climatology.Config{
		BaselineStart:  r.opts.BaselineStart,
		BaselineEnd:    r.opts.BaselineEnd,
		WindowWidth:    r.opts.Window,
		Percentile:     r.opts.ThresholdPercentile,
		SmoothingWidth: r.opts.SmoothingWindow,
	}

	var result *detect.Result
	if r.cache != nil {
		result, err = r.detectCached(pixel.PixelID, series, climCfg)
	} else {
		result, err = detect.Detect(series, r.opts)
	}
	if err != nil {
		r.logger.Warnf("pixel %s: %v", pixel.PixelID, err)
		return Outcome{PixelID: pixel.PixelID, Err: err}
	}

	r.logger.Debugf("pixel %s: %d events", pixel.PixelID, len(result.Events))
	return Outcome{PixelID: pixel.PixelID, Result: result, Series: series}
}

func (r *Runner) detectCached(pixelID string, series timeseries.Series, climCfg climatology.Config) (*detect.Result, error) {
	// The cache key does not cover the series span, so a hit must pass the
	// same baseline checks a fresh build would run.
	if err := climatology.Validate(series, climCfg); err != nil {
		return nil, err
	}

	key := climcache.Key(pixelID, climCfg)
	curve, hit := r.cache.Get(key)
	if !hit {
		var err error
		curve, err = climatology.BuildCurve(series, climCfg)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Put(key, curve); err != nil {
			r.logger.Warnf("pixel %s: caching climatology: %v", pixelID, err)
		}
	}
	return detect.DetectWithClimatology(series, curve.Apply(series), r.opts)
}
