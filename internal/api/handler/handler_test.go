package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/xi-fantasy/internal/api/respond"
	"github.com/albapepper/xi-fantasy/internal/cache"
	"github.com/albapepper/xi-fantasy/internal/config"
	"github.com/albapepper/xi-fantasy/internal/metrics"
	"github.com/albapepper/xi-fantasy/internal/provider"
	"github.com/albapepper/xi-fantasy/internal/scraper"
)

type stubSource struct {
	mu    sync.Mutex
	res   scraper.Result
	calls int
}

func (s *stubSource) Scrape(_ context.Context, _ []provider.TeamSource) scraper.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.res
}

var madrid = []provider.PlayerRecord{
	{Team: "Real Madrid", Name: "Mbappé", StartProbability: 99},
	{Team: "Real Madrid", Name: "Vinícius", StartProbability: 97},
	{Team: "Real Madrid", Name: "Bellingham", StartProbability: 96},
	{Team: "Real Madrid", Name: "Courtois", StartProbability: 95},
	{Team: "Real Madrid", Name: "Valverde", StartProbability: 92},
	{Team: "Real Madrid", Name: "Carvajal", StartProbability: 90},
	{Team: "Real Madrid", Name: "Rüdiger", StartProbability: 85},
	{Team: "Real Madrid", Name: "Militão", StartProbability: 80},
	{Team: "Real Madrid", Name: "Tchouaméni", StartProbability: 75},
	{Team: "Real Madrid", Name: "Mendy", StartProbability: 70},
	{Team: "Real Madrid", Name: "Rodrygo", StartProbability: 65},
	{Team: "Real Madrid", Name: "Modrić", StartProbability: 60},
	{Team: "Barcelona", Name: "Lewandowski", StartProbability: 88},
}

const fullRoster = `[
	{"name": "Courtois", "position": "POR"},
	{"name": "Carvajal", "position": "DEF"},
	{"name": "Rüdiger", "position": "DEF"},
	{"name": "Militão", "position": "DEF"},
	{"name": "Mendy", "position": "DEF"},
	{"name": "Bellingham", "position": "MED"},
	{"name": "Valverde", "position": "MED"},
	{"name": "Tchouaméni", "position": "MED"},
	{"name": "Modrić", "position": "MED"},
	{"name": "Mbappé", "position": "DEL"},
	{"name": "Vinícius", "position": "DEL"},
	{"name": "Rodrygo", "position": "DEL"}
]`

func newTestHandler(t *testing.T, records []provider.PlayerRecord) (*Handler, *stubSource, *metrics.Metrics) {
	t.Helper()
	src := &stubSource{res: scraper.Result{Records: records}}
	m := metrics.New(prometheus.NewRegistry())
	store := cache.New(true)
	t.Cleanup(store.Close)
	h := New(Deps{
		Source: src,
		Store:  store,
		Config: &config.Config{
			Teams: []provider.TeamSource{
				{Team: "Real Madrid", URL: "https://example.test/real-madrid"},
				{Team: "Barcelona", URL: "https://example.test/barcelona"},
			},
			CacheTTL:      time.Minute,
			MatchCutoff:   0.6,
			SuggestCutoff: 0.5,
		},
		Metrics: m,
	})
	return h, src, m
}

func post(t *testing.T, fn http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) respond.ErrorResponse {
	t.Helper()
	var e respond.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestPostLineup(t *testing.T) {
	t.Parallel()

	h, _, m := newTestHandler(t, madrid)
	rec := post(t, h.PostLineup, `{"roster": `+fullRoster+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LineupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var starters []string
	for _, s := range resp.Starters {
		starters = append(starters, s.MatchedName)
	}
	assert.Equal(t, []string{
		"Courtois",
		"Carvajal", "Rüdiger", "Militão", "Mendy",
		"Bellingham", "Valverde", "Tchouaméni",
		"Mbappé", "Vinícius", "Rodrygo",
	}, starters)
	require.Len(t, resp.Bench, 1)
	assert.Equal(t, "Modrić", resp.Bench[0].MatchedName)
	assert.Equal(t, "4-3-3", resp.Formation)
	assert.Equal(t, 12, resp.Matched)
	assert.Empty(t, resp.Unmatched)
	assert.InDelta(t, 0.6, resp.Cutoff, 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.LineupSelectionsTotal.WithLabelValues("ok")), 1e-9)
}

func TestPostLineupShortage(t *testing.T) {
	t.Parallel()

	h, _, m := newTestHandler(t, madrid)
	body := `{"roster": [
		{"name": "Carvajal", "position": "DEF"},
		{"name": "Bellingham", "position": "MID"},
		{"name": "Mbappé", "position": "FWD"}
	]}`
	rec := post(t, h.PostLineup, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	e := decodeError(t, rec)
	assert.Equal(t, "LINEUP_SHORTAGE", e.Error.Code)
	assert.Contains(t, e.Error.Detail, "GK")
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.LineupSelectionsTotal.WithLabelValues("shortage")), 1e-9)
}

func TestPostLineupInvalidPolicy(t *testing.T) {
	t.Parallel()

	h, src, _ := newTestHandler(t, madrid)
	body := `{"roster": ` + fullRoster + `, "policy": {
		"gk": 1, "def": {"min": 5, "max": 3}, "mid": {"min": 3, "max": 5},
		"fwd": {"min": 1, "max": 3}, "total": 11
	}}`
	rec := post(t, h.PostLineup, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_POLICY", decodeError(t, rec).Error.Code)
	assert.Zero(t, src.calls, "policy is checked before scraping")
}

func TestPostLineupCustomPolicy(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, madrid)
	body := `{"roster": ` + fullRoster + `, "policy": {
		"gk": 1, "def": {"min": 4, "max": 4}, "mid": {"min": 4, "max": 4},
		"fwd": {"min": 2, "max": 2}, "total": 11
	}}`
	rec := post(t, h.PostLineup, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LineupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "4-4-2", resp.Formation)
	require.Len(t, resp.Bench, 1)
	assert.Equal(t, "Rodrygo", resp.Bench[0].MatchedName)
}

func TestPostMatch(t *testing.T) {
	t.Parallel()

	h, _, m := newTestHandler(t, madrid)
	body := `{"cutoff": 0.95, "roster": [
		{"name": "Courtois", "position": "GK"},
		{"name": "Bellingam", "position": "MID"},
		{"name": "", "position": "DEF"},
		{"name": "Mendy", "position": "COACH"}
	]}`
	rec := post(t, h.PostMatch, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matched, 1)
	assert.Equal(t, "Courtois", resp.Matched[0].MatchedName)
	assert.Equal(t, "Real Madrid", resp.Matched[0].Team)
	assert.Equal(t, []string{"Bellingam"}, resp.Unmatched)
	assert.Equal(t, "Bellingham", resp.Suggestions["Bellingam"])
	assert.Equal(t, 2, resp.Considered)
	assert.Equal(t, 2, resp.Skipped)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.RosterEntriesTotal.WithLabelValues("unmatched")), 1e-9)
}

func TestPostMatchRejectsBadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"roster": [`, "INVALID_REQUEST"},
		{"empty body", ``, "INVALID_REQUEST"},
		{"unknown field", `{"roster": [{"name": "a", "position": "GK"}], "formation": "4-4-2"}`, "INVALID_REQUEST"},
		{"empty roster", `{"roster": []}`, "EMPTY_ROSTER"},
		{"cutoff too high", `{"roster": [{"name": "a", "position": "GK"}], "cutoff": 1.5}`, "INVALID_CUTOFF"},
		{"negative cutoff", `{"roster": [{"name": "a", "position": "GK"}], "cutoff": -0.1}`, "INVALID_CUTOFF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _, _ := newTestHandler(t, madrid)
			rec := post(t, h.PostMatch, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestNoProbabilityData(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, nil)
	rec := post(t, h.PostLineup, `{"roster": `+fullRoster+`}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NO_PROBABILITY_DATA", decodeError(t, rec).Error.Code)
}

func TestGetPlayers(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, madrid)

	rec := httptest.NewRecorder()
	h.GetPlayers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/players", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var resp PlayersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, len(madrid), resp.Count)

	// Same table, same ETag.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/players", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.GetPlayers(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestGetPlayersTeamFilter(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, madrid)

	rec := httptest.NewRecorder()
	h.GetPlayers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/players?team=barcelona", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PlayersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Lewandowski", resp.Records[0].Name)

	rec = httptest.NewRecorder()
	h.GetPlayers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/players?team=Atlantis", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_TEAM", decodeError(t, rec).Error.Code)
}

func TestGetAutofill(t *testing.T) {
	t.Parallel()

	records := append([]provider.PlayerRecord{}, madrid[:2]...)
	records = append(records, provider.PlayerRecord{Team: "Barcelona", Name: "Mbappé", StartProbability: 5})
	h, _, _ := newTestHandler(t, records)

	rec := httptest.NewRecorder()
	h.GetAutofill(rec, httptest.NewRequest(http.MethodGet, "/api/v1/autofill", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []map[string]string{
		{"name": "Mbappé", "team": "Real Madrid"},
		{"name": "Vinícius", "team": "Real Madrid"},
	}, got)
}

func TestInvalidatePlayers(t *testing.T) {
	t.Parallel()

	h, src, _ := newTestHandler(t, madrid)
	h.cached = scraper.NewCached(src, h.store, time.Minute, nil, nil)

	ctx := context.Background()
	h.cached.Scrape(ctx, h.cfg.Teams)
	h.cached.Scrape(ctx, h.cfg.Teams)
	require.Equal(t, 1, src.calls)

	rec := httptest.NewRecorder()
	h.InvalidatePlayers(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/players/cache", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	h.cached.Scrape(ctx, h.cfg.Teams)
	assert.Equal(t, 2, src.calls)
}

func TestHealthChecks(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t, madrid)

	for _, fn := range []http.HandlerFunc{h.Root, h.HealthCheck, h.HealthCheckDB, h.HealthCheckCache} {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&body))
	}

	rec := httptest.NewRecorder()
	h.HealthCheckDB(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	assert.Contains(t, rec.Body.String(), `"disabled"`)
}
