package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/albapepper/xi-fantasy/internal/provider"
	"github.com/albapepper/xi-fantasy/internal/scraper"
)

// Recorder wraps a scraper.Source. Non-empty results are saved when
// autosave is on; an empty live result is replaced by the latest stored
// snapshot, restricted to the requested teams and flagged Stale.
type Recorder struct {
	source   scraper.Source
	store    Store
	autosave bool
	logger   *slog.Logger

	mu    sync.Mutex
	saved [ownedIDs]string
	next  int
}

// ownedIDs is how many recent saves Owns remembers. Notifications arrive
// within moments of the save, so only the last few matter.
const ownedIDs = 16

// NewRecorder creates a Recorder.
func NewRecorder(source scraper.Source, store Store, autosave bool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		source:   source,
		store:    store,
		autosave: autosave,
		logger:   logger,
	}
}

// Owns reports whether this Recorder saved the snapshot with the given ID.
// Notification consumers use it to ignore their own writes.
func (r *Recorder) Owns(snapshotID string) bool {
	if snapshotID == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.saved {
		if id == snapshotID {
			return true
		}
	}
	return false
}

func (r *Recorder) remember(id string) {
	r.mu.Lock()
	r.saved[r.next] = id
	r.next = (r.next + 1) % ownedIDs
	r.mu.Unlock()
}

// Scrape implements scraper.Source.
func (r *Recorder) Scrape(ctx context.Context, teams []provider.TeamSource) scraper.Result {
	res := r.source.Scrape(ctx, teams)
	if len(res.Records) > 0 {
		// A cancelled scrape is missing every team after the cancellation.
		if r.autosave && ctx.Err() == nil {
			id, err := r.store.Save(ctx, res)
			if err != nil {
				r.logger.Warn("Snapshot save failed", "error", err)
			} else {
				res.Report.SnapshotID = id
				r.remember(id)
			}
		}
		return res
	}

	latest, err := r.store.Latest(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			r.logger.Warn("Snapshot fallback failed", "error", err)
		}
		return res
	}

	wanted := make(map[string]bool, len(teams))
	for _, t := range teams {
		wanted[t.Team] = true
	}
	kept := make([]provider.PlayerRecord, 0, len(latest.Records))
	for _, rec := range latest.Records {
		if wanted[rec.Team] {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		return res
	}

	r.logger.Warn("Live scrape empty, serving stored snapshot",
		"snapshot", latest.Report.SnapshotID,
		"taken_at", latest.Report.TakenAt,
		"records", len(kept))

	out := res
	out.Records = kept
	out.Report.Records = len(kept)
	out.Report.Stale = true
	out.Report.SnapshotID = latest.Report.SnapshotID
	out.Report.TakenAt = latest.Report.TakenAt
	return out
}
