package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Detection struct {
			BaselineStart       string  `yaml:"baseline_start"`
			BaselineEnd         string  `yaml:"baseline_end"`
			MinDuration         int     `yaml:"min_duration"`
			MaxGap              int     `yaml:"max_gap"`
			Mode                string  `yaml:"mode"`
			Window              int     `yaml:"window"`
			ThresholdPercentile float64 `yaml:"threshold_percentile"`
			SmoothingWindow     int     `yaml:"smoothing_window"`
		} `yaml:"detection"`
		Source struct {
			Type string `yaml:"type"`
			Path string `yaml:"path"`
		} `yaml:"source"`
		Storage struct {
			Database *struct {
				ConnectionString string `yaml:"connection_string"`
			} `yaml:"database"`
		} `yaml:"storage,omitempty"`
		Batch struct {
			Workers int `yaml:"workers"`
		} `yaml:"batch,omitempty"`
		Cache struct {
			Enabled bool   `yaml:"enabled"`
			Dir     string `yaml:"dir"`
		} `yaml:"cache,omitempty"`
		HTTP struct {
			Enabled    bool   `yaml:"enabled"`
			ListenAddr string `yaml:"listen_addr"`
		} `yaml:"http,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Detection: DetectionData{
			BaselineStart:       yamlConfig.Detection.BaselineStart,
			BaselineEnd:         yamlConfig.Detection.BaselineEnd,
			MinDuration:         yamlConfig.Detection.MinDuration,
			MaxGap:              yamlConfig.Detection.MaxGap,
			Mode:                yamlConfig.Detection.Mode,
			Window:              yamlConfig.Detection.Window,
			ThresholdPercentile: yamlConfig.Detection.ThresholdPercentile,
			SmoothingWindow:     yamlConfig.Detection.SmoothingWindow,
		},
		Source: SourceData{
			Type: yamlConfig.Source.Type,
			Path: yamlConfig.Source.Path,
		},
		Batch: BatchData{Workers: yamlConfig.Batch.Workers},
		Cache: CacheData{Enabled: yamlConfig.Cache.Enabled, Dir: yamlConfig.Cache.Dir},
		HTTP:  HTTPData{Enabled: yamlConfig.HTTP.Enabled, ListenAddr: yamlConfig.HTTP.ListenAddr},
	}

	if yamlConfig.Storage.Database != nil {
		config.Storage.Database = &DatabaseData{
			ConnectionString: yamlConfig.Storage.Database.ConnectionString,
		}
	}

	y.config = config
	return config, nil
}

// GetDetection returns the detection parameter section
func (y *YAMLProvider) GetDetection() (*DetectionData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Detection, nil
}

// GetSource returns the observation source section
func (y *YAMLProvider) GetSource() (*SourceData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Source, nil
}

// GetStorage returns the storage section
func (y *YAMLProvider) GetStorage() (*StorageData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// IsReadOnly returns true: YAML files are not modified at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
