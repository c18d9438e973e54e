package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goborsa/borsa/internal/core"
)

// Config holds every tunable the library exposes. All values have working
// defaults; a config file is optional.
type Config struct {
	HTTP      HTTPConfig        `mapstructure:"http"`
	TTL       TTLConfig         `mapstructure:"ttl"`
	Stream    StreamConfig      `mapstructure:"stream"`
	Batch     BatchConfig       `mapstructure:"batch"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Log       LogConfig         `mapstructure:"log"`
}

// HTTPConfig configures the shared transport client.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	// InsecureTLS skips certificate verification for upstreams whose
	// chains Go's verifier rejects.
	InsecureTLS bool `mapstructure:"insecure_tls"`
}

// TTLConfig holds the cache TTL classes. The values are policy, not
// protocol: realtime prices go stale in a minute, reference catalogs last
// a day.
type TTLConfig struct {
	Realtime  time.Duration `mapstructure:"realtime"`
	History   time.Duration `mapstructure:"history"`
	Reference time.Duration `mapstructure:"reference"`
	Computed  time.Duration `mapstructure:"computed"`
}

// StreamConfig configures the WebSocket session manager.
type StreamConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	Origin      string        `mapstructure:"origin"`
}

// BatchConfig configures multi-symbol downloads.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// MetricsConfig toggles prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig selects the logger profile.
type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from a file, with environment variable
// overrides and ${VAR} expansion in string values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a config with working defaults.
func Defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		},
		TTL: TTLConfig{
			Realtime:  60 * time.Second,
			History:   time.Hour,
			Reference: 24 * time.Hour,
			Computed:  24 * time.Hour,
		},
		Stream: StreamConfig{
			Timeout:     10 * time.Second,
			SettleDelay: 500 * time.Millisecond,
			Origin:      "https://www.tradingview.com",
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Endpoints: map[string]string{},
		Metrics:   MetricsConfig{Enabled: true},
	}
}

// Endpoint returns the override for a source, or fallback when unset.
func (c *Config) Endpoint(source, fallback string) string {
	if c.Endpoints != nil {
		if v, ok := c.Endpoints[source]; ok && v != "" {
			return v
		}
	}
	return fallback
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.HTTP.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("http timeout must be positive, got %s", c.HTTP.Timeout))
	}
	if c.Stream.Timeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("stream timeout must be positive, got %s", c.Stream.Timeout))
	}
	if c.Batch.Concurrency < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch concurrency must be at least 1, got %d", c.Batch.Concurrency))
	}
	for _, ttl := range []time.Duration{c.TTL.Realtime, c.TTL.History, c.TTL.Reference, c.TTL.Computed} {
		if ttl <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("ttl classes must be positive"))
		}
	}
	return nil
}
