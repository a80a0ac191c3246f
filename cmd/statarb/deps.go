package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/newthinker/statarb/internal/backtest"
	"github.com/newthinker/statarb/internal/collector/yahoo"
	"github.com/newthinker/statarb/internal/config"
	"github.com/newthinker/statarb/internal/storage/cache"
)

// loadConfig reads the config file if one was given, otherwise falls
// back to defaults.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults")
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newPriceSource builds the cached price provider from configuration.
func newPriceSource(cfg *config.Config, log *zap.Logger) (*cache.Prices, error) {
	var store cache.Storage
	var err error

	switch cfg.Cache.Type {
	case "s3":
		store, err = cache.NewS3(cache.S3Config{
			Bucket:    cfg.Cache.S3.Bucket,
			Endpoint:  cfg.Cache.S3.Endpoint,
			Region:    cfg.Cache.S3.Region,
			AccessKey: cfg.Cache.S3.AccessKey,
			SecretKey: cfg.Cache.S3.SecretKey,
			Prefix:    cfg.Cache.S3.Prefix,
		})
	default:
		store, err = cache.NewLocalFS(cfg.Cache.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("creating price cache: %w", err)
	}

	return cache.NewPrices(store, yahoo.New(), log), nil
}

// newBacktester wires the full stack behind a Backtester.
func newBacktester(cfg *config.Config, log *zap.Logger) (*backtest.Backtester, error) {
	prices, err := newPriceSource(cfg, log)
	if err != nil {
		return nil, err
	}
	return backtest.New(prices), nil
}
