package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vantage/internal/api"
	"vantage/internal/backtest"
	"vantage/internal/config"
	"vantage/internal/marketdata"
	"vantage/internal/store"
	"vantage/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/vantage.yaml"
	if p := os.Getenv("VANTAGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	// Price source: Alpaca behind a parquet read-through cache.
	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		logger.Warn("alpaca credentials not configured, upstream fetches will fail")
	}
	alpacaSrc := marketdata.NewAlpacaSource(
		cfg.Alpaca.APIKey, cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL, cfg.Alpaca.BaseURL,
		cfg.Backtest.RateLimitPerMin, cfg.Backtest.RateLimitBurst,
	)
	prices := store.NewParquetStore(cfg.Storage.DataDir)
	source := marketdata.NewCachedSource(alpacaSrc, prices)

	// Run history.
	runs, err := store.NewSQLiteRunStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening run store: %v", err)
	}
	defer runs.Close()

	// Orchestrator.
	runner := backtest.NewRunner(source, alpacaSrc)
	runner.SetFanOut(cfg.Backtest.MaxConcurrentFetches,
		time.Duration(cfg.Backtest.FetchTimeoutSec)*time.Second)

	srv := api.NewServer(runner, marketdata.NewCatalog(), source, alpacaSrc, runs, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
