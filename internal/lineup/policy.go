package lineup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albapepper/xi-fantasy/internal/position"
)

// ErrInvalidPolicy is returned for a formation policy that no lineup can
// satisfy.
var ErrInvalidPolicy = errors.New("invalid formation policy")

// Range is an inclusive per-position bound.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FormationPolicy constrains the shape of the starting lineup. Goalkeepers
// are always exactly GK; outfield positions get a range.
type FormationPolicy struct {
	GK    int   `json:"gk"`
	DEF   Range `json:"def"`
	MID   Range `json:"mid"`
	FWD   Range `json:"fwd"`
	Total int   `json:"total"`
}

// DefaultPolicy is one keeper, 3-5 defenders, 3-5 midfielders and 1-3
// forwards in an eleven.
func DefaultPolicy() FormationPolicy {
	return FormationPolicy{
		GK:    1,
		DEF:   Range{Min: 3, Max: 5},
		MID:   Range{Min: 3, Max: 5},
		FWD:   Range{Min: 1, Max: 3},
		Total: 11,
	}
}

// Min returns the mandatory count for p.
func (f FormationPolicy) Min(p position.Code) int {
	switch p {
	case position.GK:
		return f.GK
	case position.DEF:
		return f.DEF.Min
	case position.MID:
		return f.MID.Min
	case position.FWD:
		return f.FWD.Min
	}
	return 0
}

// Max returns the upper bound for p.
func (f FormationPolicy) Max(p position.Code) int {
	switch p {
	case position.GK:
		return f.GK
	case position.DEF:
		return f.DEF.Max
	case position.MID:
		return f.MID.Max
	case position.FWD:
		return f.FWD.Max
	}
	return 0
}

// Validate reports every reason the policy is unsatisfiable, joined into a
// single ErrInvalidPolicy. A nil return means some lineup of the right shape
// exists given enough candidates.
func (f FormationPolicy) Validate() error {
	var problems []string
	if f.GK < 0 {
		problems = append(problems, fmt.Sprintf("GK must be >= 0, got %d", f.GK))
	}
	if f.Total <= 0 {
		problems = append(problems, fmt.Sprintf("total must be > 0, got %d", f.Total))
	}
	for _, p := range []position.Code{position.DEF, position.MID, position.FWD} {
		lo, hi := f.Min(p), f.Max(p)
		if lo < 0 {
			problems = append(problems, fmt.Sprintf("%s min must be >= 0, got %d", p, lo))
		}
		if lo > hi {
			problems = append(problems, fmt.Sprintf("%s min %d exceeds max %d", p, lo, hi))
		}
	}

	mandatory := f.GK + f.DEF.Min + f.MID.Min + f.FWD.Min
	if mandatory > f.Total {
		problems = append(problems, fmt.Sprintf("minimums sum to %d, more than total %d", mandatory, f.Total))
	}
	if ceiling := f.GK + f.DEF.Max + f.MID.Max + f.FWD.Max; ceiling < f.Total {
		problems = append(problems, fmt.Sprintf("maximums sum to %d, less than total %d", ceiling, f.Total))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, strings.Join(problems, "; "))
	}
	return nil
}
