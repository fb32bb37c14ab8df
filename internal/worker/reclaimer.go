package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/herald/common/logger"
	"basegraph.app/herald/internal/queue"
)

type ReclaimerConfig struct {
	// Consumer is the name claimed entries are reassigned to.
	Consumer  string
	MinIdle   time.Duration
	Interval  time.Duration
	BatchSize int64
}

// Reclaimer takes over entries left pending by a worker that died between
// reading and acknowledging them, and runs them through the same handler as
// fresh entries so retries and dead-lettering still apply.
type Reclaimer struct {
	claimer Claimer
	handle  MessageHandler
	cfg     ReclaimerConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewReclaimer(claimer Claimer, cfg ReclaimerConfig, handle MessageHandler) *Reclaimer {
	return &Reclaimer{
		claimer:   claimer,
		handle:    handle,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run blocks until Stop is called or ctx is done.
func (r *Reclaimer) Run(ctx context.Context) {
	defer close(r.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "herald.worker.reclaimer",
	})
	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			if _, err := r.ReclaimOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "reclaim cycle error", "error", err)
			}
		}
	}
}

func (r *Reclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// ReclaimOnce claims one batch of stale entries and handles each of them.
// It returns how many entries were claimed.
func (r *Reclaimer) ReclaimOnce(ctx context.Context) (int, error) {
	claimed, err := r.claimer.ClaimStale(ctx, r.cfg.Consumer, r.cfg.MinIdle, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claiming stale entries: %w", err)
	}
	if len(claimed) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "claimed stale pending messages", "count", len(claimed))

	for _, raw := range claimed {
		entryID := raw.ID
		entryCtx := logger.WithLogFields(ctx, logger.LogFields{StreamID: &entryID})

		msg, err := queue.ParseMessage(raw)
		if err != nil {
			slog.ErrorContext(entryCtx, "reclaimed message is malformed", "error", err)
			if dlqErr := r.claimer.DeadLetterRaw(entryCtx, raw, err.Error()); dlqErr != nil {
				slog.ErrorContext(entryCtx, "failed to dead-letter malformed message", "error", dlqErr)
			}
			continue
		}

		r.handle(entryCtx, msg)
	}

	return len(claimed), nil
}
