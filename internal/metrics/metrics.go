// Package metrics holds the Prometheus collectors for scraping, matching,
// lineup selection and the HTTP surface. A nil *Metrics is valid and
// records nothing, so library code can take one unconditionally.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "xi"

// Metrics holds all collectors.
type Metrics struct {
	// Scraper
	ScrapeTeamsTotal      *prometheus.CounterVec
	ScrapeRecordsTotal    *prometheus.CounterVec
	ScrapeDurationSeconds prometheus.Histogram
	ScrapeCacheTotal      *prometheus.CounterVec

	// Reconcile / select
	RosterEntriesTotal    *prometheus.CounterVec
	LineupSelectionsTotal *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates and registers all collectors on reg. A nil reg uses a fresh
// private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.ScrapeTeamsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "teams_total",
		Help:      "Team pages processed, by result (ok, failed).",
	}, []string{"result"})
	m.ScrapeRecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "records_total",
		Help:      "Candidate player nodes, by outcome (kept, artifact, incomplete, duplicate).",
	}, []string{"outcome"})
	m.ScrapeDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "duration_seconds",
		Help:      "Wall time of a full scrape across all teams.",
		Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160},
	})
	m.ScrapeCacheTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "scrape",
		Name:      "cache_total",
		Help:      "Scrape cache lookups, by result (hit, miss).",
	}, []string{"result"})

	m.RosterEntriesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "roster",
		Name:      "entries_total",
		Help:      "Roster entries reconciled, by result (matched, unmatched, skipped).",
	}, []string{"result"})
	m.LineupSelectionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "lineup",
		Name:      "selections_total",
		Help:      "Lineup selections, by result (ok, shortage, invalid_policy).",
	}, []string{"result"})

	m.HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests, by method, route and status.",
	}, []string{"method", "route", "status"})
	m.HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// TeamScraped records one team page outcome.
func (m *Metrics) TeamScraped(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.ScrapeTeamsTotal.WithLabelValues(result).Inc()
}

// Records adds n candidate nodes with the given outcome.
func (m *Metrics) Records(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ScrapeRecordsTotal.WithLabelValues(outcome).Add(float64(n))
}

// ScrapeFinished records the duration of a full scrape.
func (m *Metrics) ScrapeFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDurationSeconds.Observe(d.Seconds())
}

// CacheLookup records a scrape cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ScrapeCacheTotal.WithLabelValues(result).Inc()
}

// Reconciled records roster entry outcomes.
func (m *Metrics) Reconciled(matched, unmatched, skipped int) {
	if m == nil {
		return
	}
	m.RosterEntriesTotal.WithLabelValues("matched").Add(float64(matched))
	m.RosterEntriesTotal.WithLabelValues("unmatched").Add(float64(unmatched))
	m.RosterEntriesTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// Selection records a lineup selection result.
func (m *Metrics) Selection(result string) {
	if m == nil {
		return
	}
	m.LineupSelectionsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
