// Package config provides centralized configuration management for bselens.
// Defaults are registered on a viper instance, overlaid by an optional config
// file and BSELENS_* environment variables, then decoded into a typed Config.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/bselens/bselens/internal/throttle"
)

const (
	// AppName names config and data directories.
	AppName = "bselens"

	// EnvPrefix prefixes environment overrides, e.g. BSELENS_EXCHANGE_TIMEOUT.
	EnvPrefix = "BSELENS"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("exchange.base_url", "https://www.bseindia.com/")
	v.SetDefault("exchange.api_url", "https://api.bseindia.com/BseIndiaAPI/api")
	v.SetDefault("exchange.timeout", "10s")
	v.SetDefault("exchange.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:138.0) Gecko/20100101 Firefox/138.0")

	v.SetDefault("throttle.default_rate", 15)
	v.SetDefault("throttle.buckets", map[string]int{
		string(throttle.BucketLookup):  15,
		string(throttle.BucketDefault): 8,
	})

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("cache.lookup_ttl", "24h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 0)
}

// BindEnv enables BSELENS_* overrides for every registered key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the settings held by v into a validated Config and makes it
// the current configuration.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("viper instance is required")
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Exchange.BaseURL) == "" {
		errs = append(errs, errors.New("exchange.base_url is required"))
	}
	if strings.TrimSpace(c.Exchange.APIURL) == "" {
		errs = append(errs, errors.New("exchange.api_url is required"))
	}
	if c.Exchange.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("exchange.timeout must be positive, got %s", c.Exchange.Timeout))
	}
	if c.Throttle.DefaultRate < 0 {
		errs = append(errs, fmt.Errorf("throttle.default_rate must not be negative, got %d", c.Throttle.DefaultRate))
	}
	for name, rate := range c.Throttle.Buckets {
		if rate < 0 {
			errs = append(errs, fmt.Errorf("throttle.buckets.%s must not be negative, got %d", name, rate))
		}
	}
	if c.Cache.LookupTTL < 0 {
		errs = append(errs, errors.New("cache.lookup_ttl must not be negative"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		errs = append(errs, fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port))
	}

	return errors.Join(errs...)
}

// ThrottleSettings converts the throttle section into throttle.Config.
func (c *Config) ThrottleSettings() throttle.Config {
	cfg := throttle.Config{
		DefaultRate: c.Throttle.DefaultRate,
		Buckets:     make(map[throttle.Bucket]int, len(c.Throttle.Buckets)),
	}
	for name, rate := range c.Throttle.Buckets {
		cfg.Buckets[throttle.Bucket(strings.ToLower(strings.TrimSpace(name)))] = rate
	}
	return cfg
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// ConfigDir returns the XDG config directory for bselens, or "" when it
// cannot be resolved.
func ConfigDir() string {
	return gfconfig.GetAppConfigDir(AppName)
}

// DefaultStorePath returns the default libsql database path.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(AppName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}
