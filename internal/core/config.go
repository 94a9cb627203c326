package core

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/wqmon/wqengine/internal/model"
)

// Config is the engine-level configuration loaded from a JSON file
type Config struct {
	MaxWorkers       int               `json:"max_workers"`
	Mode             model.ProcessMode `json:"mode"`
	PluginConfigDirs []string          `json:"plugin_config_dirs"`
	ExtraConfigDirs  []string          `json:"extra_config_dirs"`
	IntervalSeconds  int               `json:"interval_seconds"`
	API              APIConfig         `json:"api"`
}

// APIConfig configures the REST status API
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// DefaultConfig returns the engine configuration defaults
func DefaultConfig() Config {
	return Config{
		MaxWorkers:       DefaultMaxWorkers,
		Mode:             model.PerItemMode,
		PluginConfigDirs: []string{"./configs/plugins"},
		IntervalSeconds:  60,
		API: APIConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    8080,
		},
	}
}

// LoadConfig reads a JSON config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for usable values
func (c Config) Validate() error {
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", c.MaxWorkers)
	}
	if c.Mode != model.PerItemMode && c.Mode != model.BatchMode {
		return fmt.Errorf("unknown processing mode: %s", c.Mode)
	}
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive, got %d", c.IntervalSeconds)
	}
	return nil
}

// Interval returns the cycle interval as a duration
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
