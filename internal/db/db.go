// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema migration and health checking.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/xi-fantasy/internal/config"
)

//go:embed schema.sql
var schema string

// Channel names used with pg_notify.
const SnapshotSavedChannel = "snapshot_saved"

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New applies the schema, then creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if err := Migrate(ctx, cfg.DatabaseURL); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Migrate applies the idempotent schema over a dedicated connection. It
// runs before the pool exists because pooled connections prepare
// statements against these tables.
func Migrate(ctx context.Context, dbURL string) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Statements lists every prepared statement by name.
var Statements = map[string]string{
	// Health
	"health_check": "SELECT 1",

	// Snapshots
	"snapshot_latest": `SELECT id, taken_at, teams_ok, teams_failed
		FROM scrape_snapshots ORDER BY taken_at DESC LIMIT 1`,
	"snapshot_players": `SELECT team, name, start_probability, COALESCE(image_url, ''), COALESCE(profile_url, '')
		FROM snapshot_players WHERE snapshot_id = $1 ORDER BY rank`,
	"snapshot_insert": `INSERT INTO scrape_snapshots (id, taken_at, teams_ok, teams_failed, summary)
		VALUES ($1, $2, $3, $4, $5)`,
	"snapshot_prune": `DELETE FROM scrape_snapshots WHERE id NOT IN (
		SELECT id FROM scrape_snapshots ORDER BY taken_at DESC LIMIT $1)`,
	"snapshot_notify": "SELECT pg_notify('" + SnapshotSavedChannel + "', $1)",
}

// registerPreparedStatements prepares Statements on every new connection.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range Statements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
