package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening config database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to config database: %w", err)
	}

	return &SQLiteProvider{db: db, dbPath: dbPath}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	detection, err := s.GetDetection()
	if err != nil {
		return nil, err
	}
	source, err := s.GetSource()
	if err != nil {
		return nil, err
	}
	storage, err := s.GetStorage()
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Detection: *detection,
		Source:    *source,
		Storage:   *storage,
	}

	row := s.db.QueryRow(`SELECT workers FROM batch LIMIT 1`)
	if err := row.Scan(&config.Batch.Workers); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("reading batch config: %w", err)
	}

	row = s.db.QueryRow(`SELECT enabled, dir FROM cache LIMIT 1`)
	if err := row.Scan(&config.Cache.Enabled, &config.Cache.Dir); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("reading cache config: %w", err)
	}

	row = s.db.QueryRow(`SELECT enabled, listen_addr FROM http LIMIT 1`)
	if err := row.Scan(&config.HTTP.Enabled, &config.HTTP.ListenAddr); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("reading http config: %w", err)
	}

	return config, nil
}

// GetDetection reads the detection parameter row
func (s *SQLiteProvider) GetDetection() (*DetectionData, error) {
	var d DetectionData
	row := s.db.QueryRow(`
		SELECT baseline_start, baseline_end, min_duration, max_gap, mode,
		       window, threshold_percentile, smoothing_window
		FROM detection LIMIT 1`)
	err := row.Scan(&d.BaselineStart, &d.BaselineEnd, &d.MinDuration, &d.MaxGap,
		&d.Mode, &d.Window, &d.ThresholdPercentile, &d.SmoothingWindow)
	if err != nil {
		return nil, fmt.Errorf("reading detection config: %w", err)
	}
	return &d, nil
}

// GetSource reads the observation source row
func (s *SQLiteProvider) GetSource() (*SourceData, error) {
	var src SourceData
	row := s.db.QueryRow(`SELECT type, path FROM source LIMIT 1`)
	if err := row.Scan(&src.Type, &src.Path); err != nil {
		return nil, fmt.Errorf("reading source config: %w", err)
	}
	return &src, nil
}

// GetStorage reads the storage row; a missing row means storage is disabled
func (s *SQLiteProvider) GetStorage() (*StorageData, error) {
	var connString string
	row := s.db.QueryRow(`SELECT connection_string FROM storage LIMIT 1`)
	err := row.Scan(&connString)
	if err == sql.ErrNoRows {
		return &StorageData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading storage config: %w", err)
	}
	return &StorageData{Database: &DatabaseData{ConnectionString: connString}}, nil
}

// IsReadOnly returns false: SQLite configuration can be updated in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the config database
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
