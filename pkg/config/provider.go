// Package config provides the configuration layer for the heatwave
// detection service, with pluggable YAML and SQLite backends.
package config

import "time"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDetection() (*DetectionData, error)
	GetSource() (*SourceData, error)
	GetStorage() (*StorageData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Detection DetectionData `json:"detection"`
	Source    SourceData    `json:"source"`
	Storage   StorageData   `json:"storage,omitempty"`
	Batch     BatchData     `json:"batch,omitempty"`
	Cache     CacheData     `json:"cache,omitempty"`
	HTTP      HTTPData      `json:"http,omitempty"`
}

// DetectionData holds the detection parameters for a run. Zero values fall
// back to the standard marine-heat-wave defaults.
type DetectionData struct {
	BaselineStart       string  `json:"baseline_start"` // YYYY-MM-DD
	BaselineEnd         string  `json:"baseline_end"`   // YYYY-MM-DD
	MinDuration         int     `json:"min_duration,omitempty"`
	MaxGap              int     `json:"max_gap,omitempty"`
	Mode                string  `json:"mode,omitempty"` // "warm" or "cold"
	Window              int     `json:"window,omitempty"`
	ThresholdPercentile float64 `json:"threshold_percentile,omitempty"`
	SmoothingWindow     int     `json:"smoothing_window,omitempty"`
}

// BaselinePeriod parses the configured baseline dates.
func (d *DetectionData) BaselinePeriod() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", d.BaselineStart)
	if err != nil {
		return
	}
	end, err = time.Parse("2006-01-02", d.BaselineEnd)
	return
}

// SourceData selects where per-pixel observations come from.
type SourceData struct {
	Type string `json:"type"`           // "csv" or "database"
	Path string `json:"path,omitempty"` // for csv
}

// StorageData holds the configuration for the results database
type StorageData struct {
	Database *DatabaseData `json:"database,omitempty"`
}

// DatabaseData holds the Postgres connection settings
type DatabaseData struct {
	ConnectionString string `json:"connection_string"`
}

// BatchData holds the worker pool settings
type BatchData struct {
	Workers int `json:"workers,omitempty"` // 0 means GOMAXPROCS
}

// CacheData holds the climatology cache settings
type CacheData struct {
	Enabled bool   `json:"enabled,omitempty"`
	Dir     string `json:"dir,omitempty"`
}

// HTTPData holds the REST read-API settings
type HTTPData struct {
	Enabled    bool   `json:"enabled,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}
