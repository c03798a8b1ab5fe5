package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/shelver/internal/abs"
	"github.com/five82/shelver/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// StatusFetcher is the server call the poller depends on.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (*abs.StatusResponse, error)
}

// StartPoller launches a background goroutine that refreshes the store,
// waiting interval between polls and backing off while the server is
// unreachable. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, client StatusFetcher, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			refresh(ctx, store, client, log)
			timer.Reset(calculateBackoff(store.Snapshot().Failures, interval))
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
	}()
}

// calculateBackoff doubles the interval for every consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	wait := interval
	for i := 0; i < failures && wait < maxBackoff; i++ {
		wait *= 2
	}
	return min(wait, maxBackoff)
}

func refresh(ctx context.Context, store *state.Store, client StatusFetcher, log zerolog.Logger) {
	start := time.Now()
	status, err := client.FetchStatus(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		store.Failed(err)
		log.Warn().Err(err).Msg("status poll failed")
		return
	}
	rtt := time.Since(start)
	store.Online(*status, rtt)
	log.Debug().Dur("rtt", rtt).Str("version", status.ServerVersion).Msg("status poll")
}
