package config

import (
	redisclient "github.com/vinhng/gatewatch/internal/infra/redis"
	"github.com/vinhng/gatewatch/internal/monitor"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server      ServerConfig       `yaml:"server"`
	Logging     LoggingConfig      `yaml:"logging"`
	Hub         HubConfig          `yaml:"hub"`
	Monitor     MonitorConfig      `yaml:"monitor"`
	Redis       redisclient.Config `yaml:"redis"`
	Environment string             `yaml:"environment"` // production or development
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// HubConfig holds connection hub settings.
type HubConfig struct {
	InactivityWindow Duration        `yaml:"inactivity_window"`
	JobTTL           Duration        `yaml:"job_ttl"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds per-client rate limit settings. Enabled is a
// pointer so an explicit `enabled: false` survives defaulting; nil means
// the operator said nothing and limiting stays on.
type RateLimitConfig struct {
	Enabled     *bool    `yaml:"enabled"`
	MaxRequests int      `yaml:"max_requests"`
	Window      Duration `yaml:"window"`
}

// IsEnabled reports the effective setting, treating absence as on.
func (c RateLimitConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// MonitorConfig holds resource monitor settings.
type MonitorConfig struct {
	Interval   Duration           `yaml:"interval"`
	Thresholds monitor.Thresholds `yaml:"thresholds"`
}

// Production reports whether verbose error renderings must stay disabled.
func (c *AppConfig) Production() bool {
	return c.Environment != "development"
}
