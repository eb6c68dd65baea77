// Package snapshot persists scrape results to Postgres and serves the last
// good one when a live scrape comes back empty.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/xi-fantasy/internal/provider"
	"github.com/albapepper/xi-fantasy/internal/scraper"
)

// ErrNoSnapshot is returned when nothing has been stored yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store is the persistence contract the Recorder needs.
type Store interface {
	Save(ctx context.Context, res scraper.Result) (string, error)
	Latest(ctx context.Context) (scraper.Result, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// PGStore stores snapshots in the scrape_snapshots and snapshot_players
// tables, using the statements prepared by the db package.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPGStore creates a store over pool.
func NewPGStore(pool *pgxpool.Pool, logger *slog.Logger) *PGStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGStore{pool: pool, logger: logger}
}

// Save writes res in one transaction and notifies listeners with the new
// snapshot ID once it commits.
func (s *PGStore) Save(ctx context.Context, res scraper.Result) (string, error) {
	id := uuid.New()
	takenAt := res.Report.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "snapshot_insert",
		id, takenAt, res.Report.TeamsOK, res.Report.TeamsFailed, res.Report.Summary()); err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	rows := make([][]interface{}, 0, len(res.Records))
	for i, r := range res.Records {
		rows = append(rows, []interface{}{
			id, i, r.Team, r.Name, r.StartProbability, nilEmpty(r.ImageURL), nilEmpty(r.ProfileURL),
		})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"snapshot_players"},
		[]string{"snapshot_id", "rank", "team", "name", "start_probability", "image_url", "profile_url"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return "", fmt.Errorf("copy snapshot players: %w", err)
	}

	// Delivered on commit.
	if _, err := tx.Exec(ctx, "snapshot_notify", id.String()); err != nil {
		return "", fmt.Errorf("notify snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}

	s.logger.Info("Snapshot saved", "id", id, "records", len(res.Records))
	return id.String(), nil
}

// Latest loads the most recent snapshot.
func (s *PGStore) Latest(ctx context.Context) (scraper.Result, error) {
	var (
		id          uuid.UUID
		res         scraper.Result
		teamsOK     int
		teamsFailed int
	)
	err := s.pool.QueryRow(ctx, "snapshot_latest").Scan(&id, &res.Report.TakenAt, &teamsOK, &teamsFailed)
	if errors.Is(err, pgx.ErrNoRows) {
		return scraper.Result{}, ErrNoSnapshot
	}
	if err != nil {
		return scraper.Result{}, fmt.Errorf("query latest snapshot: %w", err)
	}

	rows, err := s.pool.Query(ctx, "snapshot_players", id)
	if err != nil {
		return scraper.Result{}, fmt.Errorf("query snapshot players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r provider.PlayerRecord
		if err := rows.Scan(&r.Team, &r.Name, &r.StartProbability, &r.ImageURL, &r.ProfileURL); err != nil {
			return scraper.Result{}, fmt.Errorf("scan snapshot player: %w", err)
		}
		res.Records = append(res.Records, r)
	}
	if err := rows.Err(); err != nil {
		return scraper.Result{}, err
	}

	res.Report.SnapshotID = id.String()
	res.Report.TeamsOK = teamsOK
	res.Report.TeamsFailed = teamsFailed
	res.Report.Records = len(res.Records)
	return res, nil
}

// Prune deletes all but the newest keep snapshots.
func (s *PGStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	tag, err := s.pool.Exec(ctx, "snapshot_prune", keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
