package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pruner deletes all but the newest keep snapshots.
type Pruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// PruneSnapshots trims stored snapshots to keep. Shared by the prune ticker
// and the `snapshot prune` command.
func PruneSnapshots(ctx context.Context, p Pruner, keep int, logger *slog.Logger) (int64, error) {
	start := time.Now()
	n, err := p.Prune(ctx, keep)
	dur := time.Since(start).Round(time.Millisecond)

	if err != nil {
		logger.Warn("Failed to prune snapshots", "keep", keep, "duration", dur, "error", err)
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	if n > 0 {
		logger.Info("Pruned snapshots", "deleted", n, "keep", keep, "duration", dur)
	}
	return n, nil
}
