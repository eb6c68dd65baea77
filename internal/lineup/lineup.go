// Package lineup picks a starting lineup from reconciled candidates under a
// formation policy.
//
// Selection is greedy: each position first takes its mandatory minimum by
// descending start probability, then the remaining slots go to the best
// leftover outfield players that still fit under their position's maximum.
// It never revisits a mandatory pick once locked in and does not search for
// a globally best assignment.
package lineup

import (
	"fmt"
	"sort"

	"github.com/albapepper/xi-fantasy/internal/position"
	"github.com/albapepper/xi-fantasy/internal/roster"
)

// ShortageError reports that the candidates cannot fill the policy. An
// empty Position means the lineup as a whole came up short after the flex
// stage.
type ShortageError struct {
	Position  position.Code
	Required  int
	Available int
}

func (e *ShortageError) Error() string {
	if e.Position == "" {
		return fmt.Sprintf("lineup shortage: need %d players, have %d", e.Required, e.Available)
	}
	return fmt.Sprintf("lineup shortage: %s, need %d, have %d", e.Position, e.Required, e.Available)
}

// Lineup is a selected starting lineup with the players left out of it.
type Lineup struct {
	Starters           []roster.MatchedCandidate `json:"starters"`
	Bench              []roster.MatchedCandidate `json:"bench"`
	AverageProbability float64                   `json:"average_probability"`
	Formation          string                    `json:"formation"`
}

// Select returns the starting lineup ordered GK, DEF, MID, FWD, each group
// by descending probability.
func Select(candidates []roster.MatchedCandidate, policy FormationPolicy) ([]roster.MatchedCandidate, error) {
	l, err := Pick(candidates, policy)
	if err != nil {
		return nil, err
	}
	return l.Starters, nil
}

// Pick runs the selection and also reports the bench (every candidate not
// started, by descending probability), the starters' mean probability and
// the DEF-MID-FWD formation string.
func Pick(candidates []roster.MatchedCandidate, policy FormationPolicy) (Lineup, error) {
	if err := policy.Validate(); err != nil {
		return Lineup{}, err
	}

	// Pools hold indexes into candidates so duplicate entries stay distinct.
	pools := make(map[position.Code][]int, len(position.Order))
	for i, c := range candidates {
		if c.Position.Valid() {
			pools[c.Position] = append(pools[c.Position], i)
		}
	}
	for _, p := range position.Order {
		byProbability(candidates, pools[p])
	}

	for _, p := range position.Order {
		if need, have := policy.Min(p), len(pools[p]); have < need {
			return Lineup{}, &ShortageError{Position: p, Required: need, Available: have}
		}
	}

	picked := make([]int, 0, policy.Total)
	for _, p := range position.Order {
		picked = append(picked, pools[p][:policy.Min(p)]...)
	}

	var flex []int
	for _, p := range []position.Code{position.DEF, position.MID, position.FWD} {
		pool := pools[p]
		lo, hi := policy.Min(p), min(policy.Max(p), len(pool))
		if hi > lo {
			flex = append(flex, pool[lo:hi]...)
		}
	}
	byProbability(candidates, flex)

	remaining := policy.Total - len(picked)
	picked = append(picked, flex[:min(remaining, len(flex))]...)
	if len(picked) < policy.Total {
		return Lineup{}, &ShortageError{Required: policy.Total, Available: len(picked)}
	}

	sort.SliceStable(picked, func(a, b int) bool {
		ca, cb := candidates[picked[a]], candidates[picked[b]]
		if ca.Position != cb.Position {
			return ca.Position.Rank() < cb.Position.Rank()
		}
		return ca.StartProbability > cb.StartProbability
	})

	started := make(map[int]bool, len(picked))
	l := Lineup{Starters: make([]roster.MatchedCandidate, 0, len(picked))}
	counts := make(map[position.Code]int, len(position.Order))
	var sum float64
	for _, i := range picked {
		started[i] = true
		c := candidates[i]
		l.Starters = append(l.Starters, c)
		counts[c.Position]++
		sum += c.StartProbability
	}
	if len(l.Starters) > 0 {
		l.AverageProbability = sum / float64(len(l.Starters))
	}
	l.Formation = fmt.Sprintf("%d-%d-%d", counts[position.DEF], counts[position.MID], counts[position.FWD])

	bench := make([]int, 0, len(candidates)-len(picked))
	for i := range candidates {
		if !started[i] {
			bench = append(bench, i)
		}
	}
	byProbability(candidates, bench)
	l.Bench = make([]roster.MatchedCandidate, 0, len(bench))
	for _, i := range bench {
		l.Bench = append(l.Bench, candidates[i])
	}
	return l, nil
}

func byProbability(candidates []roster.MatchedCandidate, idx []int) {
	sort.SliceStable(idx, func(a, b int) bool {
		return candidates[idx[a]].StartProbability > candidates[idx[b]].StartProbability
	})
}
