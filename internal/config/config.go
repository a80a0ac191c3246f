package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/newthinker/statarb/internal/backtest"
	"github.com/newthinker/statarb/internal/core"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Collector CollectorConfig `mapstructure:"collector"`
	Backtest  BacktestConfig  `mapstructure:"backtest"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	APIKey      string `mapstructure:"api_key"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

type CacheConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type CollectorConfig struct {
	Provider string `mapstructure:"provider"`
}

// BacktestConfig holds default pair parameters. CLI flags and API
// request fields override these per run.
type BacktestConfig struct {
	Lookback     int     `mapstructure:"lookback"`
	ZIn          float64 `mapstructure:"z_in"`
	ZOut         float64 `mapstructure:"z_out"`
	Stop         float64 `mapstructure:"stop"`
	TakeProfit   float64 `mapstructure:"take_profit"`
	ConfirmDelta float64 `mapstructure:"confirm_delta"`
	CostBps      float64 `mapstructure:"cost_bps"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
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

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	p := backtest.DefaultParams()
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Cache: CacheConfig{
			Type: "localfs",
			Path: "data/cache",
		},
		Collector: CollectorConfig{
			Provider: "yahoo",
		},
		Backtest: BacktestConfig{
			Lookback:     p.Lookback,
			ZIn:          p.ZIn,
			ZOut:         p.ZOut,
			Stop:         p.Stop,
			TakeProfit:   p.TakeProfit,
			ConfirmDelta: p.ConfirmDelta,
			CostBps:      p.CostBps,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Params converts the backtest defaults into engine parameters. A
// positive take_profit enables the take-profit rule.
func (c *Config) Params() backtest.Params {
	return backtest.Params{
		Lookback:          c.Backtest.Lookback,
		ZIn:               c.Backtest.ZIn,
		ZOut:              c.Backtest.ZOut,
		Stop:              c.Backtest.Stop,
		TakeProfit:        c.Backtest.TakeProfit,
		TakeProfitEnabled: c.Backtest.TakeProfit > 0,
		ConfirmDelta:      c.Backtest.ConfirmDelta,
		CostBps:           c.Backtest.CostBps,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxJobs < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_jobs must be positive, got %d", c.Server.MaxJobs))
	}

	switch c.Cache.Type {
	case "localfs":
		if c.Cache.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("cache path required when type is localfs"))
		}
	case "s3":
		if c.Cache.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cache type: %s", c.Cache.Type))
	}

	if c.Collector.Provider != "yahoo" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown collector provider: %s", c.Collector.Provider))
	}

	return c.Params().Validate()
}
