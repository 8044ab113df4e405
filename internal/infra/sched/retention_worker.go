package sched

import (
	"context"
	"time"

	"profile-scout/internal/infra/registry"

	"github.com/rs/zerolog"
)

// RetentionWorker periodically evicts terminal jobs from the in-memory
// registry once clients have had a reasonable window to poll the outcome.
// The canonical result lives in the history store; this only bounds the
// registry's memory.
type RetentionWorker struct {
	interval  time.Duration
	retention time.Duration
	registry  *registry.InMemory
	log       *zerolog.Logger
}

func NewRetentionWorker(interval, retention time.Duration, reg *registry.InMemory, logger *zerolog.Logger) *RetentionWorker {
	retLog := logger.With().Str("component", "RetentionWorker").Logger()
	if interval <= 0 {
		interval = time.Minute
	}
	if retention <= 0 {
		retention = time.Hour
	}
	return &RetentionWorker{
		interval:  interval,
		retention: retention,
		registry:  reg,
		log:       &retLog,
	}
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("retention", w.retention).Msg("Starting retention worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retention worker")
			return ctx.Err()
		case <-ticker.C:
			n := w.registry.EvictTerminal(time.Now().UTC().Add(-w.retention))
			if n > 0 {
				w.log.Info().Int("count", n).Msg("terminal jobs evicted from registry")
			}
		}
	}
}
