package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bselens/bselens/internal/throttle"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load(newViper(t))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "https://api.bseindia.com/BseIndiaAPI/api", cfg.Exchange.APIURL)
		assert.Equal(t, 10*time.Second, cfg.Exchange.Timeout)
		assert.NotEmpty(t, cfg.Exchange.UserAgent)

		assert.Equal(t, 15, cfg.Throttle.DefaultRate)
		assert.Equal(t, 15, cfg.Throttle.Buckets["lookup"])
		assert.Equal(t, 8, cfg.Throttle.Buckets["default"])

		assert.Equal(t, "libsql", cfg.Store.Driver)
		assert.Equal(t, DefaultStorePath(), cfg.Store.Path)
		assert.Equal(t, 24*time.Hour, cfg.Cache.LookupTTL)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 0, cfg.Metrics.Port)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("BSELENS_SERVER_PORT", "3000")
		t.Setenv("BSELENS_LOGGING_LEVEL", "warn")
		t.Setenv("BSELENS_THROTTLE_DEFAULT_RATE", "3")
		t.Setenv("BSELENS_EXCHANGE_TIMEOUT", "45s")

		cfg, err := Load(newViper(t))
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, 3, cfg.Throttle.DefaultRate)
		assert.Equal(t, 45*time.Second, cfg.Exchange.Timeout)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
exchange:
  timeout: 2s
throttle:
  default_rate: 4
  buckets:
    lookup: 2
cache:
  lookup_ttl: 1h
`), 0o600))

		v := newViper(t)
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Exchange.Timeout)
		assert.Equal(t, 4, cfg.Throttle.DefaultRate)
		assert.Equal(t, 2, cfg.Throttle.Buckets["lookup"])
		assert.Equal(t, time.Hour, cfg.Cache.LookupTTL)
	})

	t.Run("Invalid", func(t *testing.T) {
		v := newViper(t)
		v.Set("exchange.timeout", "0s")
		v.Set("throttle.default_rate", -1)

		_, err := Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exchange.timeout")
		assert.Contains(t, err.Error(), "throttle.default_rate")
	})

	t.Run("NilViper", func(t *testing.T) {
		_, err := Load(nil)
		require.Error(t, err)
	})
}

func TestGetConfig(t *testing.T) {
	v := newViper(t)
	v.Set("server.port", 9100)

	cfg, err := Load(v)
	require.NoError(t, err)

	current := GetConfig()
	require.NotNil(t, current)
	assert.Equal(t, cfg.Server.Port, current.Server.Port)
}

func TestValidateBuckets(t *testing.T) {
	cfg := Config{
		Exchange: ExchangeConfig{BaseURL: "https://example.test/", APIURL: "https://example.test/api", Timeout: time.Second},
		Throttle: ThrottleConfig{Buckets: map[string]int{"lookup": -5}},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttle.buckets.lookup")

	cfg.Throttle.Buckets["lookup"] = 0
	require.NoError(t, cfg.Validate())
}

func TestThrottleSettings(t *testing.T) {
	cfg := Config{Throttle: ThrottleConfig{
		DefaultRate: 6,
		Buckets:     map[string]int{" Lookup ": 12, "default": 6},
	}}

	got := cfg.ThrottleSettings()
	assert.Equal(t, 6, got.DefaultRate)
	assert.Equal(t, 12, got.Buckets[throttle.BucketLookup])
	assert.Equal(t, 6, got.Buckets[throttle.BucketDefault])
}
