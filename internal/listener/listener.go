// Package listener provides a Postgres LISTEN/NOTIFY consumer for snapshot
// events. It holds a dedicated pgx connection (not from the pool) listening
// on the snapshot_saved channel.
//
// When any process stores a scrape snapshot (the CLI's `scrape --persist`,
// another API replica, the refresh ticker), the store fires pg_notify and
// every listening API instance drops its cached scrape.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/xi-fantasy/internal/db"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Handler is called with the snapshot ID of every notification.
type Handler func(ctx context.Context, snapshotID string)

// Start opens a dedicated connection and listens on the snapshot_saved
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, handle Handler, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, handle, logger)
		if ctx.Err() != nil {
			logger.Info("Snapshot listener stopped (context cancelled)")
			return
		}

		logger.Error("Snapshot listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = nextBackoff(backoff)
		case <-ctx.Done():
			return
		}
	}
}

func nextBackoff(b time.Duration) time.Duration {
	return min(b*2, maxReconnect)
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, handle Handler, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	channel := pgx.Identifier{db.SnapshotSavedChannel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Snapshot listener connected", "channel", db.SnapshotSavedChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		dispatch(ctx, notification.Payload, handle, logger)
	}
}

func dispatch(ctx context.Context, payload string, handle Handler, logger *slog.Logger) {
	id := strings.TrimSpace(payload)
	if id == "" {
		logger.Warn("Ignoring snapshot notification without payload")
		return
	}
	logger.Info("Snapshot event received", "snapshot", id)
	handle(ctx, id)
}
