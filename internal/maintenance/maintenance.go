// Package maintenance runs periodic background tasks as Go tickers: keeping
// the scrape cache warm and trimming old snapshots.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	RefreshInterval time.Duration // Re-scrape and repopulate the cache
	PruneInterval   time.Duration // Delete snapshots beyond Retention
	Retention       int
}

// DefaultConfig returns sensible production defaults. Refresh is off until
// configured since it generates upstream traffic.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 0,
		PruneInterval:   6 * time.Hour,
		Retention:       20,
	}
}

// Tasks are the operations the tickers drive. Nil fields disable the
// matching task.
type Tasks struct {
	Refresh func(ctx context.Context)
	Pruner  Pruner
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, tasks Tasks, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"refresh", cfg.RefreshInterval,
		"prune", cfg.PruneInterval,
		"retention", cfg.Retention)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Refresh: re-scrape so requests keep hitting a warm cache
	if cfg.RefreshInterval > 0 && tasks.Refresh != nil {
		t := time.NewTicker(cfg.RefreshInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { tasks.Refresh(ctx) })
	}

	// Prune: keep only the newest snapshots
	if cfg.PruneInterval > 0 && tasks.Pruner != nil {
		t := time.NewTicker(cfg.PruneInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() {
			_, _ = PruneSnapshots(ctx, tasks.Pruner, cfg.Retention, logger)
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
