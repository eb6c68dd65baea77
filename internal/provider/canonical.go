// Package provider defines the canonical shapes a probability source
// normalizes into. These structs are the contract between the scraper and
// everything downstream of it: the cache, the snapshot store, the roster
// reconciler and the API all consume PlayerRecord and never the raw page.
//
// Adding a new source means producing these types. Nothing downstream
// changes.
package provider

import "sort"

// TeamSource is one team page to scrape.
type TeamSource struct {
	Team string `json:"team" yaml:"team"`
	URL  string `json:"url" yaml:"url"`
}

// PlayerRecord is one player's expected-start probability for the next
// match, as published on the team page.
type PlayerRecord struct {
	Team             string  `json:"team"`
	Name             string  `json:"name"`
	StartProbability float64 `json:"start_probability"` // 0..100
	ImageURL         string  `json:"image_url,omitempty"`
	ProfileURL       string  `json:"profile_url,omitempty"`
}

type recordKey struct {
	name string
	team string
}

// Dedupe drops records whose (name, team) pair was already seen, keeping the
// first occurrence.
func Dedupe(records []PlayerRecord) []PlayerRecord {
	seen := make(map[recordKey]struct{}, len(records))
	out := make([]PlayerRecord, 0, len(records))
	for _, r := range records {
		k := recordKey{r.Name, r.Team}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortByProbability orders records by descending start probability. Equal
// probabilities keep their input order.
func SortByProbability(records []PlayerRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartProbability > records[j].StartProbability
	})
}

// Names returns the distinct player names in record order.
func Names(records []PlayerRecord) []string {
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.Name]; dup {
			continue
		}
		seen[r.Name] = struct{}{}
		names = append(names, r.Name)
	}
	return names
}

// FilterTeam returns the records belonging to team.
func FilterTeam(records []PlayerRecord, team string) []PlayerRecord {
	out := make([]PlayerRecord, 0)
	for _, r := range records {
		if r.Team == team {
			out = append(out, r)
		}
	}
	return out
}
