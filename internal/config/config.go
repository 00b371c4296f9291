package config

import (
	"time"
)

// Config represents the complete application configuration.
// Values come from defaults, an optional YAML file and BSELENS_* environment
// variables, in increasing order of precedence.
type Config struct {
	Exchange ExchangeConfig `mapstructure:"exchange" yaml:"exchange"`
	Throttle ThrottleConfig `mapstructure:"throttle" yaml:"throttle"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// ExchangeConfig points the client at the exchange web API.
type ExchangeConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	APIURL    string        `mapstructure:"api_url" yaml:"api_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// ThrottleConfig holds requests-per-second limits per named bucket.
type ThrottleConfig struct {
	// DefaultRate applies to buckets with no entry in Buckets.
	// Zero or a negative value disables throttling for them.
	DefaultRate int            `mapstructure:"default_rate" yaml:"default_rate"`
	Buckets     map[string]int `mapstructure:"buckets" yaml:"buckets"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver"`
	Path      string `mapstructure:"path" yaml:"path"`
	URL       string `mapstructure:"url" yaml:"url"`
	AuthToken string `mapstructure:"auth_token" yaml:"auth_token,omitempty"`
}

// CacheConfig contains lookup cache TTLs. A zero TTL disables caching.
type CacheConfig struct {
	LookupTTL time.Duration `mapstructure:"lookup_ttl" yaml:"lookup_ttl"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`

	// Valid values: SIMPLE, STRUCTURED
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// MetricsConfig controls the Prometheus exporter started by serve.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port 0 falls back to BSELENS_METRICS_PORT handling in observability.
	Port int `mapstructure:"port" yaml:"port"`
}
