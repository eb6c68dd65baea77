// Command api is the XI Fantasy API server.
//
// Usage:
//
//	xi-api
//	API_PORT=8080 xi-api

// @title XI Fantasy API
// @version 1.0.0
// @description Scrapes LaLiga expected-start probabilities, reconciles a fantasy roster against them and selects the starting XI.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name XI Fantasy
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/xi-fantasy/internal/api"
	"github.com/albapepper/xi-fantasy/internal/api/handler"
	"github.com/albapepper/xi-fantasy/internal/cache"
	"github.com/albapepper/xi-fantasy/internal/config"
	"github.com/albapepper/xi-fantasy/internal/db"
	"github.com/albapepper/xi-fantasy/internal/listener"
	"github.com/albapepper/xi-fantasy/internal/maintenance"
	"github.com/albapepper/xi-fantasy/internal/metrics"
	"github.com/albapepper/xi-fantasy/internal/scraper"
	"github.com/albapepper/xi-fantasy/internal/snapshot"

	_ "github.com/albapepper/xi-fantasy/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	m := metrics.New(nil)

	// Initialize cache: redis when configured, in-process otherwise
	var store cache.Store
	if cfg.RedisAddress != "" {
		rc, err := cache.NewRedis(cache.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		store = rc
		logger.Info("Cache initialized", "backend", "redis", "address", cfg.RedisAddress)
	} else {
		mc := cache.New(cfg.CacheEnabled)
		defer mc.Close()
		store = mc
		logger.Info("Cache initialized", "backend", "memory", "enabled", cfg.CacheEnabled)
	}

	// Scraper stack: live scrape -> snapshot recorder (with DB) -> cache
	fetcher := scraper.NewHTTPFetcher(cfg.ScrapeTimeout, cfg.ScrapeUA, logger)
	var source scraper.Source = scraper.New(fetcher, scraper.Options{
		Delay:   cfg.ScrapeDelay,
		Workers: cfg.ScrapeWorkers,
	}, m, logger)

	var pool *db.Pool
	var recorder *snapshot.Recorder
	var pruner maintenance.Pruner
	if cfg.HasDatabase() {
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)

		snapshots := snapshot.NewPGStore(pool.Pool, logger)
		recorder = snapshot.NewRecorder(source, snapshots, cfg.SnapshotAutosave, logger)
		source = recorder
		pruner = snapshots
	} else {
		logger.Info("Snapshots disabled (no DATABASE_URL)")
	}

	cached := scraper.NewCached(source, store, cfg.CacheTTL, m, logger)

	// Snapshots saved by other instances make our cached table stale
	if pool != nil {
		go listener.Start(ctx, cfg.DatabaseURL, func(ctx context.Context, snapshotID string) {
			if recorder.Owns(snapshotID) {
				return
			}
			if err := cached.Invalidate(ctx, cfg.Teams); err != nil {
				logger.Warn("Cache invalidation failed", "snapshot", snapshotID, "error", err)
				return
			}
			logger.Info("Cache invalidated by snapshot notification", "snapshot", snapshotID)
		}, logger)
	}

	// Start maintenance tickers (cache refresh, snapshot pruning)
	mcfg := maintenance.DefaultConfig()
	mcfg.RefreshInterval = cfg.RefreshEvery
	mcfg.Retention = cfg.SnapshotRetention
	go maintenance.Start(ctx, maintenance.Tasks{
		Refresh: func(ctx context.Context) {
			if err := cached.Invalidate(ctx, cfg.Teams); err != nil {
				logger.Warn("Cache invalidation failed", "error", err)
			}
			res := cached.Scrape(ctx, cfg.Teams)
			logger.Info("Scrape cache refreshed", "summary", res.Report.Summary())
		},
		Pruner: pruner,
	}, mcfg, logger)

	// Create router
	router := api.NewRouter(handler.Deps{
		Source:  cached,
		Cached:  cached,
		Store:   store,
		Pool:    pool,
		Config:  cfg,
		Metrics: m,
		Logger:  logger,
	})

	// Create HTTP server. Writes allow for a cold scrape of every team.
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting XI Fantasy API",
			"addr", addr,
			"environment", cfg.Environment,
			"teams", len(cfg.Teams),
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
