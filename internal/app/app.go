// Package app wires configuration, the observation source, the batch
// detection runner, persistence, and the optional REST read API into one
// application lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/seastate/heatwave/internal/batch"
	"github.com/seastate/heatwave/internal/climcache"
	"github.com/seastate/heatwave/internal/controllers/restserver"
	"github.com/seastate/heatwave/internal/database"
	"github.com/seastate/heatwave/internal/detect"
	"github.com/seastate/heatwave/internal/gridsource"
	"github.com/seastate/heatwave/internal/log"
	"github.com/seastate/heatwave/internal/trend"
	"github.com/seastate/heatwave/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run executes one batch detection over the configured source, persists the
// results when storage is configured, and blocks serving the REST API when
// it is enabled.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	opts, err := detectionOptions(&cfg.Detection)
	if err != nil {
		return err
	}

	var db *database.Client
	if cfg.Storage.Database != nil {
		db = database.NewClient(cfg.Storage.Database.ConnectionString, a.logger)
		if err := db.Connect(); err != nil {
			return fmt.Errorf("connecting to results database: %w", err)
		}
	}

	source, err := a.buildSource(cfg, db)
	if err != nil {
		return err
	}

	// Cancel the batch on SIGINT/SIGTERM; queued pixels are abandoned and
	// in-flight pixels run to completion.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-sigs:
			log.Info("shutdown signal received, initiating graceful shutdown...")
			cancel()
		case <-ctx.Done():
		}
	}()

	report, err := a.runBatch(ctx, cfg, opts, source)
	if err != nil {
		cancel()
		wg.Wait()
		return err
	}

	if db != nil {
		if err := a.persist(ctx, db, opts, report); err != nil {
			a.logger.Errorf("persisting results: %v", err)
		}
	}

	if cfg.HTTP.Enabled {
		if db == nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("http api requires storage.database to be configured")
		}
		rest, err := restserver.NewController(ctx, &wg, cfg.HTTP, db, a.logger)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		rest.Start()
		log.Info("application started successfully")
		<-ctx.Done()
	} else {
		cancel()
	}

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")
	return nil
}

func (a *App) buildSource(cfg *config.ConfigData, db *database.Client) (gridsource.Source, error) {
	switch cfg.Source.Type {
	case "csv":
		if cfg.Source.Path == "" {
			return nil, fmt.Errorf("source.path is required for csv sources")
		}
		return gridsource.NewCSVSource(cfg.Source.Path), nil
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database source requires storage.database to be configured")
		}
		return gridsource.NewDatabaseSource(db), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %q. Use 'csv' or 'database'", cfg.Source.Type)
	}
}

func (a *App) runBatch(ctx context.Context, cfg *config.ConfigData, opts detect.Options, source gridsource.Source) (*batch.Report, error) {
	pixels, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading observations: %w", err)
	}
	if len(pixels) == 0 {
		return nil, fmt.Errorf("observation source is empty")
	}

	var cache *climcache.Cache
	if cfg.Cache.Enabled {
		cache, err = climcache.New(cfg.Cache.Dir, a.logger)
		if err != nil {
			return nil, err
		}
	}

	workers := cfg.Batch.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	runner, err := batch.NewRunner(workers, opts, cache, a.logger)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	return runner.Run(ctx, pixels), nil
}

// persist stores the job summary, all detected events, and the per-pixel
// annual counts the downstream trend regression consumes.
func (a *App) persist(ctx context.Context, db *database.Client, opts detect.Options, report *batch.Report) error {
	jobID := report.JobID.String()

	var events []database.EventRecord
	var counts []database.AnnualCountRow
	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			continue
		}
		for _, ev := range outcome.Result.Events {
			events = append(events, database.NewEventRecord(jobID, outcome.PixelID, opts.Mode, ev))
		}
		annual := trend.AnnualCounts(outcome.PixelID, outcome.Result.Events, outcome.Series.Start(), outcome.Series.End())
		counts = append(counts, database.NewAnnualCountRows(jobID, annual)...)
	}

	if err := db.SaveJob(ctx, database.JobRecord{
		ID:          jobID,
		Mode:        string(opts.Mode),
		PixelCount:  len(report.Outcomes),
		FailedCount: report.Failed,
		StartedAt:   report.StartedAt,
		FinishedAt:  report.FinishedAt,
	}); err != nil {
		return err
	}
	if err := db.SaveEvents(ctx, events); err != nil {
		return err
	}
	if err := db.SaveAnnualCounts(ctx, counts); err != nil {
		return err
	}

	a.logger.Infof("job %s: stored %d events and %d annual count rows", jobID, len(events), len(counts))
	return nil
}

// detectionOptions converts the configured detection section into core
// options, applying the standard defaults for unset fields.
func detectionOptions(d *config.DetectionData) (detect.Options, error) {
	start, end, err := d.BaselinePeriod()
	if err != nil {
		return detect.Options{}, fmt.Errorf("parsing baseline period: %w", err)
	}

	opts := detect.DefaultOptions(start, end)
	if d.MinDuration > 0 {
		opts.MinDuration = d.MinDuration
	}
	if d.MaxGap > 0 {
		opts.MaxGap = d.MaxGap
	}
	if d.Window > 0 {
		opts.Window = d.Window
	}
	if d.ThresholdPercentile > 0 {
		opts.ThresholdPercentile = d.ThresholdPercentile
	}
	if d.SmoothingWindow > 0 {
		opts.SmoothingWindow = d.SmoothingWindow
	}
	switch d.Mode {
	case "", string(detect.ModeWarm):
		opts.Mode = detect.ModeWarm
	case string(detect.ModeCold):
		opts.Mode = detect.ModeCold
	default:
		return detect.Options{}, fmt.Errorf("unsupported detection mode: %q. Use 'warm' or 'cold'", d.Mode)
	}
	return opts, nil
}
