// Package handler provides HTTP handlers for all API endpoints.
// Handlers read probability data through a scraper.Source (normally the
// cache-wrapped, snapshot-backed scraper) and run reconciliation and lineup
// selection in-process.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/xi-fantasy/internal/api/respond"
	"github.com/albapepper/xi-fantasy/internal/cache"
	"github.com/albapepper/xi-fantasy/internal/config"
	"github.com/albapepper/xi-fantasy/internal/db"
	"github.com/albapepper/xi-fantasy/internal/metrics"
	"github.com/albapepper/xi-fantasy/internal/scraper"
)

// Version is reported at / and in the API docs.
const Version = "1.0.0"

// Deps are the handler dependencies. Cached and Pool may be nil when
// caching or the database is not configured.
type Deps struct {
	Source  scraper.Source
	Cached  *scraper.Cached
	Store   cache.Store
	Pool    *db.Pool
	Config  *config.Config
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	source  scraper.Source
	cached  *scraper.Cached
	store   cache.Store
	pool    *db.Pool
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		source:  d.Source,
		cached:  d.Cached,
		store:   d.Store,
		pool:    d.Pool,
		cfg:     d.Config,
		metrics: d.Metrics,
		logger:  d.Logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and enabled features.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	features := []string{"scrape_cache", "etag_support", "gzip_compression", "prometheus_metrics"}
	if h.pool != nil {
		features = append(features, "snapshot_fallback", "snapshot_notify")
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":     "XI Fantasy API",
		"version":  Version,
		"status":   "running",
		"docs":     "/docs",
		"teams":    len(h.cfg.Teams),
		"features": features,
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity. Reports "disabled" when no database is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "disabled",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns scrape cache statistics for the configured backend (memory or redis).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.store.Stats(r.Context()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
