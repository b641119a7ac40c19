package database

import (
	"database/sql"
	"math"
	"time"

	"github.com/seastate/heatwave/internal/detect"
	"github.com/seastate/heatwave/internal/trend"
)

// ObservationRow is one raw daily observation for one pixel. A NULL value
// marks a day the satellite product left unfilled.
type ObservationRow struct {
	ID      uint            `gorm:"primaryKey"`
	PixelID string          `gorm:"index:idx_obs_pixel_date,priority:1;not null"`
	Date    time.Time       `gorm:"index:idx_obs_pixel_date,priority:2;not null"`
	Value   sql.NullFloat64 `gorm:"type:double precision"`
}

// TableName keeps the table name used by the ingest tooling.
func (ObservationRow) TableName() string {
	return "sst_observations"
}

// EventRecord is one detected extreme event for one pixel in one job run.
// Undefined statistics (NaN in the core) are stored as NULL.
type EventRecord struct {
	ID       uint      `gorm:"primaryKey"`
	JobID    string    `gorm:"index;not null"`
	PixelID  string    `gorm:"index;not null"`
	Mode     string    `gorm:"not null"`
	Start    time.Time `gorm:"column:start_date;not null"`
	End      time.Time `gorm:"column:end_date;not null"`
	Peak     time.Time `gorm:"column:peak_date;not null"`
	Duration int       `gorm:"not null"`

	IntensityMean       float64
	IntensityMax        float64
	IntensityCumulative float64
	IntensityVar        sql.NullFloat64
	RateOnset           sql.NullFloat64
	RateDecline         sql.NullFloat64

	CreatedAt time.Time
}

func (EventRecord) TableName() string {
	return "heatwave_events"
}

// AnnualCountRow is the per-pixel, per-year event count consumed by the
// downstream trend regression.
type AnnualCountRow struct {
	ID      uint   `gorm:"primaryKey"`
	JobID   string `gorm:"index;not null"`
	PixelID string `gorm:"index:idx_counts_pixel_year,priority:1;not null"`
	Year    int    `gorm:"index:idx_counts_pixel_year,priority:2;not null"`
	Count   int    `gorm:"not null"`
}

func (AnnualCountRow) TableName() string {
	return "heatwave_annual_counts"
}

// JobRecord summarizes one batch detection run.
type JobRecord struct {
	ID          string    `gorm:"primaryKey"`
	Mode        string    `gorm:"not null"`
	PixelCount  int       `gorm:"not null"`
	FailedCount int       `gorm:"not null"`
	StartedAt   time.Time `gorm:"not null"`
	FinishedAt  time.Time `gorm:"not null"`
}

func (JobRecord) TableName() string {
	return "heatwave_jobs"
}

// nullable converts a possibly-NaN statistic to its SQL representation.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// NewEventRecord converts a detected event into its storage row.
func NewEventRecord(jobID, pixelID string, mode detect.Mode, ev detect.Event) EventRecord {
	return EventRecord{
		JobID:               jobID,
		PixelID:             pixelID,
		Mode:                string(mode),
		Start:               ev.Start,
		End:                 ev.End,
		Peak:                ev.Peak,
		Duration:            ev.Duration,
		IntensityMean:       ev.IntensityMean,
		IntensityMax:        ev.IntensityMax,
		IntensityCumulative: ev.IntensityCumulative,
		IntensityVar:        nullable(ev.IntensityVar),
		RateOnset:           nullable(ev.RateOnset),
		RateDecline:         nullable(ev.RateDecline),
	}
}

// NewAnnualCountRows converts annual counts into their storage rows.
func NewAnnualCountRows(jobID string, counts []trend.AnnualCount) []AnnualCountRow {
	rows := make([]AnnualCountRow, len(counts))
	for i, c := range counts {
		rows[i] = AnnualCountRow{JobID: jobID, PixelID: c.PixelID, Year: c.Year, Count: c.Count}
	}
	return rows
}
