package handler

import (
	"net/http"

	"github.com/albapepper/xi-fantasy/internal/api/respond"
	"github.com/albapepper/xi-fantasy/internal/provider"
	"github.com/albapepper/xi-fantasy/internal/scraper"
)

// PlayersResponse is the probability table.
type PlayersResponse struct {
	Count   int                     `json:"count"`
	Records []provider.PlayerRecord `json:"records"`
	Report  scraper.Report          `json:"report"`
}

// GetTeams lists the configured team pages.
// @Summary List teams
// @Description Returns the team pages the scraper reads, in merge order.
// @Tags players
// @Produce json
// @Success 200 {array} provider.TeamSource
// @Router /teams [get]
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.cfg.Teams)
}

// GetPlayers returns the scraped start-probability table.
// @Summary Get start probabilities
// @Description Returns every scraped player with start probability, ordered by probability descending. The full scrape is cached; the team filter is applied to the cached table.
// @Tags players
// @Produce json
// @Param team query string false "Team display name (case-insensitive)"
// @Param If-None-Match header string false "ETag from previous response"
// @Success 200 {object} PlayersResponse
// @Success 304 "Not Modified"
// @Failure 404 {object} respond.ErrorResponse
// @Router /players [get]
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	var team provider.TeamSource
	if name := r.URL.Query().Get("team"); name != "" {
		t, ok := h.cfg.FindTeam(name)
		if !ok {
			respond.WriteError(w, http.StatusNotFound, "UNKNOWN_TEAM", "No configured team named "+name)
			return
		}
		team = t
	}

	res := h.source.Scrape(r.Context(), h.cfg.Teams)
	records := res.Records
	if team.Team != "" {
		records = provider.FilterTeam(records, team.Team)
	}

	respond.WriteCacheable(w, r, PlayersResponse{
		Count:   len(records),
		Records: records,
		Report:  res.Report,
	}, h.cfg.CacheTTL, res.Report.Cached)
}

// GetAutofill returns the distinct player names for roster entry
// autocompletion.
// @Summary Get player name autofill list
// @Description Returns each scraped player name with its team, in probability order, for frontend autocompletion.
// @Tags players
// @Produce json
// @Success 200 {array} map[string]string
// @Router /autofill [get]
func (h *Handler) GetAutofill(w http.ResponseWriter, r *http.Request) {
	res := h.source.Scrape(r.Context(), h.cfg.Teams)
	out := make([]map[string]string, 0, len(res.Records))
	seen := make(map[string]bool, len(res.Records))
	for _, rec := range res.Records {
		if seen[rec.Name] {
			continue
		}
		seen[rec.Name] = true
		out = append(out, map[string]string{"name": rec.Name, "team": rec.Team})
	}
	respond.WriteCacheable(w, r, out, h.cfg.CacheTTL, res.Report.Cached)
}

// InvalidatePlayers drops the cached scrape so the next read goes upstream.
// @Summary Invalidate scrape cache
// @Description Drops the cached probability table. The next read triggers a fresh scrape.
// @Tags players
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /players/cache [delete]
func (h *Handler) InvalidatePlayers(w http.ResponseWriter, r *http.Request) {
	if h.cached == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"invalidated": false, "reason": "cache disabled"})
		return
	}
	if err := h.cached.Invalidate(r.Context(), h.cfg.Teams); err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "CACHE_ERROR", "Failed to invalidate cache", err.Error())
		return
	}
	h.logger.Info("Scrape cache invalidated via API")
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"invalidated": true})
}
