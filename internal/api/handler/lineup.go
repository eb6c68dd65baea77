package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/albapepper/xi-fantasy/internal/api/respond"
	"github.com/albapepper/xi-fantasy/internal/lineup"
	"github.com/albapepper/xi-fantasy/internal/roster"
)

// RosterRequest is the body of /match and /lineup.
type RosterRequest struct {
	Roster []roster.Entry           `json:"roster"`
	Cutoff *float64                 `json:"cutoff,omitempty"`
	Policy *lineup.FormationPolicy `json:"policy,omitempty"`
}

// MatchResponse reports how the roster resolved against the scraped names.
type MatchResponse struct {
	Matched     []roster.MatchedCandidate `json:"matched"`
	Unmatched   []string                  `json:"unmatched"`
	Suggestions map[string]string         `json:"suggestions"`
	Considered  int                       `json:"considered"`
	Skipped     int                       `json:"skipped"`
	Cutoff      float64                   `json:"cutoff"`
	Stale       bool                      `json:"stale"`
}

// LineupResponse is a selected lineup plus the match report it came from.
type LineupResponse struct {
	lineup.Lineup
	Unmatched   []string          `json:"unmatched"`
	Suggestions map[string]string `json:"suggestions"`
	Matched     int               `json:"matched"`
	Considered  int               `json:"considered"`
	Cutoff      float64           `json:"cutoff"`
	Stale       bool              `json:"stale"`
}

// PostMatch reconciles a roster against the scraped names.
// @Summary Match roster names
// @Description Resolves each typed roster name to the closest scraped player name. Entries with a blank name or an unknown position are skipped. Unmatched names get a "did you mean" suggestion when one is close.
// @Tags lineup
// @Accept json
// @Produce json
// @Param request body RosterRequest true "Roster and optional cutoff (0..1, default 0.6)"
// @Success 200 {object} MatchResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /match [post]
func (h *Handler) PostMatch(w http.ResponseWriter, r *http.Request) {
	req, cutoff, ok := h.decodeRoster(w, r)
	if !ok {
		return
	}
	rec, stale, ok := h.reconcile(w, r, req.Roster, cutoff)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, MatchResponse{
		Matched:     rec.result.Matched,
		Unmatched:   rec.result.Unmatched,
		Suggestions: rec.suggestions,
		Considered:  rec.result.Considered,
		Skipped:     rec.result.Skipped,
		Cutoff:      cutoff,
		Stale:       stale,
	})
}

// PostLineup reconciles a roster and selects the starting lineup.
// @Summary Build starting lineup
// @Description Matches the roster, then greedily fills each position's minimum by start probability and the remaining slots with the best players under each position's maximum. Returns starters, bench and average probability.
// @Tags lineup
// @Accept json
// @Produce json
// @Param request body RosterRequest true "Roster, optional cutoff and formation policy (default 1 GK, 3-5 DEF, 3-5 MID, 1-3 FWD, 11 total)"
// @Success 200 {object} LineupResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /lineup [post]
func (h *Handler) PostLineup(w http.ResponseWriter, r *http.Request) {
	req, cutoff, ok := h.decodeRoster(w, r)
	if !ok {
		return
	}
	policy := lineup.DefaultPolicy()
	if req.Policy != nil {
		policy = *req.Policy
	}
	if err := policy.Validate(); err != nil {
		h.metrics.Selection("invalid_policy")
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_POLICY", "Formation policy cannot be satisfied", err.Error())
		return
	}

	rec, stale, ok := h.reconcile(w, r, req.Roster, cutoff)
	if !ok {
		return
	}

	l, err := lineup.Pick(rec.result.Matched, policy)
	var shortage *lineup.ShortageError
	switch {
	case errors.As(err, &shortage):
		h.metrics.Selection("shortage")
		respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "LINEUP_SHORTAGE",
			"Not enough matched players to fill the formation", shortage.Error())
		return
	case err != nil:
		h.metrics.Selection("invalid_policy")
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_POLICY", "Formation policy cannot be satisfied", err.Error())
		return
	}
	h.metrics.Selection("ok")

	respond.WriteJSONObject(w, http.StatusOK, LineupResponse{
		Lineup:      l,
		Unmatched:   rec.result.Unmatched,
		Suggestions: rec.suggestions,
		Matched:     len(rec.result.Matched),
		Considered:  rec.result.Considered,
		Cutoff:      cutoff,
		Stale:       stale,
	})
}

func (h *Handler) decodeRoster(w http.ResponseWriter, r *http.Request) (RosterRequest, float64, bool) {
	var req RosterRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_REQUEST", "Malformed request body", err.Error())
		return req, 0, false
	}
	if len(req.Roster) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "EMPTY_ROSTER", "roster must contain at least one player")
		return req, 0, false
	}
	cutoff := h.cfg.MatchCutoff
	if req.Cutoff != nil {
		cutoff = *req.Cutoff
	}
	if cutoff < 0 || cutoff > 1 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_CUTOFF", fmt.Sprintf("cutoff must be within [0, 1], got %v", cutoff))
		return req, 0, false
	}
	return req, cutoff, true
}

type reconciled struct {
	result      roster.Result
	suggestions map[string]string
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request, entries []roster.Entry, cutoff float64) (reconciled, bool, bool) {
	res := h.source.Scrape(r.Context(), h.cfg.Teams)
	if len(res.Records) == 0 {
		respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "NO_PROBABILITY_DATA",
			"No start probabilities available; every team page failed", res.Report.Summary())
		return reconciled{}, false, false
	}

	result := roster.Reconcile(entries, res.Records, cutoff)
	h.metrics.Reconciled(len(result.Matched), len(result.Unmatched), result.Skipped)

	return reconciled{
		result:      result,
		suggestions: roster.Suggestions(result.Unmatched, res.Records, h.cfg.SuggestCutoff),
	}, res.Report.Stale, true
}
