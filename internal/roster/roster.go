// Package roster reconciles a user's squad against the scraped probability
// pool, resolving each typed name to a published record.
package roster

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/albapepper/xi-fantasy/internal/match"
	"github.com/albapepper/xi-fantasy/internal/position"
	"github.com/albapepper/xi-fantasy/internal/provider"
)

// Entry is one player as the user typed it. Position is free text and is
// normalized during reconciliation.
type Entry struct {
	Name     string `json:"name" yaml:"name"`
	Position string `json:"position" yaml:"position"`
	Price    Price  `json:"price,omitempty" yaml:"price,omitempty"`
}

// Price is carried through reconciliation untouched. Rosters write it as a
// number or a string ("12.5", "12,5M"); both keep their literal text.
type Price string

// UnmarshalJSON accepts a JSON string, number or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*p = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("price must be a string or number: %w", err)
		}
		*p = Price(n.String())
	}
	return nil
}

// MatchedCandidate is a roster entry joined to the record it resolved to.
type MatchedCandidate struct {
	UserName         string        `json:"user_name"`
	MatchedName      string        `json:"matched_name"`
	Position         position.Code `json:"position"`
	Team             string        `json:"team"`
	StartProbability float64       `json:"start_probability"`
	Score            float64       `json:"match_score"`
	Price            Price         `json:"price,omitempty"`
	ImageURL         string        `json:"image_url,omitempty"`
	ProfileURL       string        `json:"profile_url,omitempty"`
}

// Result is the outcome of Reconcile.
type Result struct {
	Matched   []MatchedCandidate `json:"matched"`
	Unmatched []string           `json:"unmatched"`
	// Considered counts entries with a usable name and position; Skipped
	// counts the rest, which appear in neither list.
	Considered int `json:"considered"`
	Skipped    int `json:"skipped"`
}

// Reconcile matches every usable roster entry against the names in pool.
//
// Entries with a blank name or an unrecognized position are skipped. The
// remaining entries keep roster order in Matched and Unmatched. When several
// records share the matched name, the first one in pool order supplies the
// team and probability. Unmatched names are data, never an error.
func Reconcile(entries []Entry, pool []provider.PlayerRecord, cutoff float64) Result {
	names := provider.Names(pool)
	first := make(map[string]provider.PlayerRecord, len(names))
	for _, r := range pool {
		if _, ok := first[r.Name]; !ok {
			first[r.Name] = r
		}
	}

	res := Result{
		Matched:   make([]MatchedCandidate, 0, len(entries)),
		Unmatched: make([]string, 0),
	}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		pos, ok := position.Normalize(e.Position)
		if name == "" || !ok {
			res.Skipped++
			continue
		}
		res.Considered++

		m, ok := match.BestMatch(name, names, cutoff)
		if !ok {
			res.Unmatched = append(res.Unmatched, name)
			continue
		}
		rec := first[m.Name]
		res.Matched = append(res.Matched, MatchedCandidate{
			UserName:         name,
			MatchedName:      rec.Name,
			Position:         pos,
			Team:             rec.Team,
			StartProbability: rec.StartProbability,
			Score:            m.Score,
			Price:            e.Price,
			ImageURL:         rec.ImageURL,
			ProfileURL:       rec.ProfileURL,
		})
	}
	return res
}

// Suggestions returns, for each unmatched name, the closest pool name at the
// looser cutoff. Names with nothing close are left out.
func Suggestions(unmatched []string, pool []provider.PlayerRecord, cutoff float64) map[string]string {
	names := provider.Names(pool)
	out := make(map[string]string, len(unmatched))
	for _, u := range unmatched {
		if top := match.Suggest(u, names, cutoff, 1); len(top) > 0 {
			out[u] = top[0].Name
		}
	}
	return out
}
