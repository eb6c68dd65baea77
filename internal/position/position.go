// Package position defines the four-way positional vocabulary used by the
// lineup selector and maps free-text position labels onto it.
package position

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code is one of the four positional buckets a starting XI is built from.
type Code string

const (
	GK  Code = "GK"
	DEF Code = "DEF"
	MID Code = "MID"
	FWD Code = "FWD"
)

// Order is the presentation order of a lineup.
var Order = []Code{GK, DEF, MID, FWD}

// aliases maps upper-cased labels to their bucket. Covers the Spanish
// abbreviations used by fantasy sites, the common English conventions and
// the per-role codes (CB, CDM, LW, ...) that appear in exported squads.
var aliases = map[string]Code{
	// Goalkeepers
	"GK": GK, "G": GK, "POR": GK, "PT": GK, "GKP": GK, "GOL": GK,
	"PORTERO": GK, "ARQUERO": GK, "GOALKEEPER": GK, "GOALIE": GK, "KEEPER": GK,

	// Defenders
	"DEF": DEF, "DF": DEF, "D": DEF, "DFC": DEF, "LI": DEF, "LD": DEF,
	"CB": DEF, "LB": DEF, "RB": DEF, "LWB": DEF, "RWB": DEF, "SW": DEF,
	"DEFENSA": DEF, "DEFENSOR": DEF, "LATERAL": DEF, "CENTRAL": DEF,
	"DEFENDER": DEF, "DEFENCE": DEF, "DEFENSE": DEF, "BACK": DEF,

	// Midfielders
	"MID": MID, "CEN": MID, "MED": MID, "MC": MID, "M": MID, "MF": MID,
	"MCD": MID, "MCO": MID, "MI": MID, "MD": MID,
	"CM": MID, "CDM": MID, "CAM": MID, "DM": MID, "AM": MID, "LM": MID, "RM": MID,
	"CENTROCAMPISTA": MID, "MEDIOCAMPISTA": MID, "MEDIO": MID, "VOLANTE": MID,
	"MIDFIELDER": MID, "MIDFIELD": MID,

	// Forwards
	"FWD": FWD, "DEL": FWD, "DC": FWD, "FW": FWD, "ST": FWD, "F": FWD,
	"CF": FWD, "LW": FWD, "RW": FWD, "SS": FWD, "EI": FWD, "ED": FWD,
	"ATT": FWD, "ATA": FWD, "DELANTERO": FWD, "EXTREMO": FWD, "ARIETE": FWD,
	"FORWARD": FWD, "STRIKER": FWD, "ATTACKER": FWD, "WINGER": FWD,
}

// Normalize maps a free-text position label to its Code. Matching is case
// insensitive and ignores surrounding whitespace and a trailing dot
// ("Del." -> FWD). Unknown labels report ok=false.
func Normalize(raw string) (Code, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.TrimSuffix(key, ".")
	if key == "" {
		return "", false
	}
	c, ok := aliases[key]
	return c, ok
}

// Valid reports whether c is one of the four buckets.
func (c Code) Valid() bool {
	switch c {
	case GK, DEF, MID, FWD:
		return true
	}
	return false
}

// Rank returns the index of c in Order, or len(Order) for unknown codes.
func (c Code) Rank() int {
	for i, o := range Order {
		if o == c {
			return i
		}
	}
	return len(Order)
}

func (c Code) String() string { return string(c) }

// UnmarshalJSON accepts any label Normalize understands.
func (c *Code) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	code, ok := Normalize(s)
	if !ok {
		return fmt.Errorf("unknown position %q", s)
	}
	*c = code
	return nil
}
