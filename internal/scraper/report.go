package scraper

import (
	"fmt"
	"time"
)

// Report tracks what a scrape did, team by team. Per-team failures land in
// Errors and never abort the run.
type Report struct {
	TeamsOK     int `json:"teams_ok"`
	TeamsFailed int `json:"teams_failed"`
	TeamsEmpty  int `json:"teams_empty"`

	Records    int `json:"records"`
	Artifacts  int `json:"artifacts"`
	Incomplete int `json:"incomplete"`
	Duplicates int `json:"duplicates"`

	// Cached is set when the result was served from a cache; Stale when it
	// came from a stored snapshot because the live scrape found nothing.
	Cached     bool      `json:"cached"`
	Stale      bool      `json:"stale"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	TakenAt    time.Time `json:"taken_at"`

	Duration time.Duration `json:"duration_ns"`
	Errors   []string      `json:"errors,omitempty"`
}

// Add merges another Report's counters into this one.
func (r *Report) Add(other Report) {
	r.TeamsOK += other.TeamsOK
	r.TeamsFailed += other.TeamsFailed
	r.TeamsEmpty += other.TeamsEmpty
	r.Records += other.Records
	r.Artifacts += other.Artifacts
	r.Incomplete += other.Incomplete
	r.Duplicates += other.Duplicates
	r.Errors = append(r.Errors, other.Errors...)
}

// AddError records an error message.
func (r *Report) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *Report) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the scrape.
func (r *Report) Summary() string {
	return fmt.Sprintf(
		"teams_ok=%d teams_failed=%d teams_empty=%d records=%d artifacts=%d incomplete=%d duplicates=%d errors=%d",
		r.TeamsOK, r.TeamsFailed, r.TeamsEmpty,
		r.Records, r.Artifacts, r.Incomplete, r.Duplicates,
		len(r.Errors),
	)
}
