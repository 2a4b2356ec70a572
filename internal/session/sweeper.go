package session

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs a background goroutine that periodically resets stale
// sessions. It stops when ctx is cancelled.
func StartSweeper(ctx context.Context, store *Store, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("session sweeper started", "interval", interval, "max_age", maxAge)

		for {
			select {
			case <-ticker.C:
				if n := store.ExpireStale(maxAge); n > 0 {
					slog.Info("reset stale sessions", "count", n)
				}
			case <-ctx.Done():
				slog.Info("session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
