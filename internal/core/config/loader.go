package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vinhng/gatewatch/internal/monitor"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}

	if cfg.Hub.InactivityWindow == 0 {
		cfg.Hub.InactivityWindow = Duration(2 * time.Minute)
	}
	if cfg.Hub.JobTTL == 0 {
		cfg.Hub.JobTTL = Duration(10 * time.Minute)
	}
	// An absent rate_limit section means limiting with stock settings.
	// Enabled stays untouched: nil reads as on, an explicit false must
	// never be flipped back by defaulting.
	if cfg.Hub.RateLimit.MaxRequests == 0 {
		cfg.Hub.RateLimit.MaxRequests = 60
	}
	if cfg.Hub.RateLimit.Window == 0 {
		cfg.Hub.RateLimit.Window = Duration(time.Minute)
	}

	if cfg.Monitor.Interval == 0 {
		cfg.Monitor.Interval = Duration(30 * time.Second)
	}
	defaults := monitor.DefaultThresholds()
	if cfg.Monitor.Thresholds.MaxConnections == 0 {
		cfg.Monitor.Thresholds.MaxConnections = defaults.MaxConnections
	}
	if cfg.Monitor.Thresholds.MaxProcessingJobs == 0 {
		cfg.Monitor.Thresholds.MaxProcessingJobs = defaults.MaxProcessingJobs
	}
	if cfg.Monitor.Thresholds.MaxHeapGrowthPercent == 0 {
		cfg.Monitor.Thresholds.MaxHeapGrowthPercent = defaults.MaxHeapGrowthPercent
	}
	if cfg.Monitor.Thresholds.MaxInactiveRatio == 0 {
		cfg.Monitor.Thresholds.MaxInactiveRatio = defaults.MaxInactiveRatio
	}
}
