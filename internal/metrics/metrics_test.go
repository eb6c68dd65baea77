package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.TeamScraped(true)
	m.TeamScraped(true)
	m.TeamScraped(false)
	m.Records("kept", 25)
	m.Records("artifact", 0)
	m.CacheLookup(true)
	m.Reconciled(9, 2, 1)
	m.Selection("shortage")

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ScrapeTeamsTotal.WithLabelValues("ok")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ScrapeTeamsTotal.WithLabelValues("failed")), 1e-9)
	assert.InDelta(t, 25.0, testutil.ToFloat64(m.ScrapeRecordsTotal.WithLabelValues("kept")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ScrapeCacheTotal.WithLabelValues("hit")), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.RosterEntriesTotal.WithLabelValues("unmatched")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.LineupSelectionsTotal.WithLabelValues("shortage")), 1e-9)
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.TeamScraped(true)
		m.Records("kept", 1)
		m.ScrapeFinished(time.Second)
		m.CacheLookup(false)
		m.Reconciled(1, 1, 1)
		m.Selection("ok")
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	m := New(nil)
	m.ObserveHTTP(http.MethodGet, "/api/v1/players", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `xi_http_requests_total{method="GET",route="/api/v1/players",status="200"} 1`)
}
