// Package database persists detection output (events, annual counts, job
// summaries) and serves raw pixel observations, backed by Postgres through
// GORM.
package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/seastate/heatwave/internal/log"
	"github.com/seastate/heatwave/internal/timeseries"
)

// Client holds the connection to the results database
type Client struct {
	DB     *gorm.DB // Exported so it can be accessed from other packages
	logger *zap.SugaredLogger
	dsn    string
}

// NewClient creates a new database client
func NewClient(dsn string, logger *zap.SugaredLogger) *Client {
	return &Client{
		dsn:    dsn,
		logger: logger,
	}
}

// Connect connects to the database and runs schema migration for the
// detection tables.
func (c *Client) Connect() error {
	dbLogger := gormlogger.New(
		zap.NewStdLog(log.GetZapLogger()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	var err error
	c.DB, err = gorm.Open(postgres.Open(c.dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		c.logger.Warnf("unable to create database connection: %v", err)
		return err
	}

	if err := c.DB.AutoMigrate(&ObservationRow{}, &EventRecord{}, &AnnualCountRow{}, &JobRecord{}); err != nil {
		return fmt.Errorf("migrating detection schema: %w", err)
	}

	c.logger.Info("database connection successful")
	return nil
}

// SaveJob stores the summary row for one batch run.
func (c *Client) SaveJob(ctx context.Context, job JobRecord) error {
	return c.DB.WithContext(ctx).Create(&job).Error
}

// SaveEvents bulk-inserts the event rows from one batch run.
func (c *Client) SaveEvents(ctx context.Context, records []EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	return c.DB.WithContext(ctx).CreateInBatches(records, 500).Error
}

// SaveAnnualCounts bulk-inserts the annual count rows from one batch run.
func (c *Client) SaveAnnualCounts(ctx context.Context, rows []AnnualCountRow) error {
	if len(rows) == 0 {
		return nil
	}
	return c.DB.WithContext(ctx).CreateInBatches(rows, 500).Error
}

// EventsForPixel returns the stored events for one pixel, ordered by start
// date.
func (c *Client) EventsForPixel(ctx context.Context, pixelID string) ([]EventRecord, error) {
	var records []EventRecord
	err := c.DB.WithContext(ctx).
		Where("pixel_id = ?", pixelID).
		Order("start_date").
		Find(&records).Error
	return records, err
}

// CountsForPixel returns the stored annual counts for one pixel, ordered by
// year.
func (c *Client) CountsForPixel(ctx context.Context, pixelID string) ([]AnnualCountRow, error) {
	var rows []AnnualCountRow
	err := c.DB.WithContext(ctx).
		Where("pixel_id = ?", pixelID).
		Order("year").
		Find(&rows).Error
	return rows, err
}

// Job returns the summary row for one batch run.
func (c *Client) Job(ctx context.Context, jobID string) (JobRecord, error) {
	var job JobRecord
	err := c.DB.WithContext(ctx).First(&job, "id = ?", jobID).Error
	return job, err
}

// PixelIDs returns the distinct pixel identifiers present in the raw
// observation table.
func (c *Client) PixelIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.DB.WithContext(ctx).
		Model(&ObservationRow{}).
		Distinct("pixel_id").
		Order("pixel_id").
		Pluck("pixel_id", &ids).Error
	return ids, err
}

// ObservationsForPixel returns a pixel's raw observations in chronological
// order, converted to the core observation type.
func (c *Client) ObservationsForPixel(ctx context.Context, pixelID string) ([]timeseries.Observation, error) {
	var rows []ObservationRow
	err := c.DB.WithContext(ctx).
		Where("pixel_id = ?", pixelID).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	obs := make([]timeseries.Observation, len(rows))
	for i, row := range rows {
		obs[i] = timeseries.Observation{
			Date:    row.Date,
			Value:   row.Value.Float64,
			Missing: !row.Value.Valid,
		}
	}
	return obs, nil
}
