package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultPollInterval = 30 * time.Second

// StartPoller launches a background goroutine that refreshes the board at a
// fixed cadence. It returns immediately.
func StartPoller(ctx context.Context, board *Board, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := board.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("task poll failed")
			} else {
				snap := board.Snapshot()
				log.Debug().Int("tasks", len(snap.Tasks)).Str("backend", string(snap.Backend)).Msg("task poll completed")
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
