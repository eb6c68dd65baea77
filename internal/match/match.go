// Package match resolves free-typed player names against the names a source
// published, using the Ratcliff/Obershelp similarity ratio
// 2*M/T (M matched characters, T total characters of both strings).
package match

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultCutoff is the minimum ratio for a name to count as matched.
	DefaultCutoff = 0.6
	// SuggestCutoff is the looser threshold used for "did you mean" hints.
	SuggestCutoff = 0.5
)

// Match is a candidate name with its similarity to the query.
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Ratio returns the similarity of a and b in [0, 1], compared character by
// character (runes, not bytes). Two empty strings are identical.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// BestMatch returns the candidate most similar to query whose ratio is at
// least cutoff. Ties go to the earliest candidate. An empty query or an
// empty candidate list never matches.
func BestMatch(query string, candidates []string, cutoff float64) (Match, bool) {
	ranked := rank(query, candidates, cutoff)
	if len(ranked) == 0 {
		return Match{}, false
	}
	return ranked[0], true
}

// Suggest returns up to n candidates scoring at least cutoff, best first.
func Suggest(query string, candidates []string, cutoff float64, n int) []Match {
	ranked := rank(query, candidates, cutoff)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func rank(query string, candidates []string, cutoff float64) []Match {
	if query == "" || len(candidates) == 0 {
		return nil
	}

	// The query is the fixed sequence; only the candidate side is swapped
	// per iteration so the query's index is built once.
	m := difflib.NewMatcher(nil, chars(query))
	var out []Match
	for _, c := range candidates {
		m.SetSeq1(chars(c))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if score := m.Ratio(); score >= cutoff {
			out = append(out, Match{Name: c, Score: score})
		}
	}
	// Equal scores keep candidate order. difflib.get_close_matches breaks
	// ties toward the lexicographically largest name instead; roster and
	// scrape order are more meaningful here.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func chars(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "")
}
