package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/albapepper/xi-fantasy/internal/cache"
	"github.com/albapepper/xi-fantasy/internal/metrics"
	"github.com/albapepper/xi-fantasy/internal/provider"
)

// Cached serves scrape results from a cache.Store and falls through to the
// wrapped Source on a miss. Empty results and stale snapshot fallbacks are
// never stored, so an outage is retried on the next call instead of being
// pinned for a full TTL. The wrapped scrape runs detached from the caller's
// cancellation: per-request timeouts in the Fetcher still bound it.
type Cached struct {
	source  Source
	store   cache.Store
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCached wraps source. A non-positive ttl uses cache.TTLScrape.
func NewCached(source Source, store cache.Store, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = cache.TTLScrape
	}
	return &Cached{source: source, store: store, ttl: ttl, metrics: m, logger: logger}
}

// Key is the cache key for a team list. Order matters: it is part of the
// scrape's merge order.
func Key(teams []provider.TeamSource) string {
	h := sha256.New()
	for _, t := range teams {
		h.Write([]byte(t.Team))
		h.Write([]byte{0})
		h.Write([]byte(t.URL))
		h.Write([]byte{0})
	}
	return "scrape:" + hex.EncodeToString(h.Sum(nil))[:16]
}

// Scrape returns a cached result when one is fresh.
func (c *Cached) Scrape(ctx context.Context, teams []provider.TeamSource) Result {
	key := Key(teams)

	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Scrape cache read failed", "key", key, "error", err)
	}
	if ok {
		var res Result
		if err := json.Unmarshal(entry.Data, &res); err == nil {
			c.metrics.CacheLookup(true)
			res.Report.Cached = true
			return res
		}
		c.logger.Warn("Discarding undecodable cache entry", "key", key)
	}
	c.metrics.CacheLookup(false)

	// Shared by every caller for the TTL; one caller leaving must not truncate it.
	detached := context.WithoutCancel(ctx)
	res := c.source.Scrape(detached, teams)
	if len(res.Records) == 0 || res.Report.Stale {
		return res
	}

	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("Scrape cache encode failed", "error", err)
		return res
	}
	if _, err := c.store.Set(detached, key, data, c.ttl); err != nil {
		c.logger.Warn("Scrape cache write failed", "key", key, "error", err)
	}
	return res
}

// Invalidate drops the cached result for teams so the next Scrape goes to
// the source.
func (c *Cached) Invalidate(ctx context.Context, teams []provider.TeamSource) error {
	return c.store.Delete(ctx, Key(teams))
}
