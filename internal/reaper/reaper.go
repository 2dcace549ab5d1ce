// Package reaper runs the background eviction loop for expired edit locks.
// It is pure garbage collection: Acquire and Renew already treat expired
// locks as absent, so the reaper only bounds how long stale rows linger.
package reaper

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type lockSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Reaper periodically deletes expired locks. One instance runs per process.
type Reaper struct {
	store    lockSweeper
	interval time.Duration
	log      *slog.Logger
}

// New creates a reaper sweeping on the given interval.
func New(log *slog.Logger, store lockSweeper, interval time.Duration) *Reaper {
	return &Reaper{
		store:    store,
		interval: interval,
		log:      log.With("component", "reaper"),
	}
}

// Run sweeps until ctx is cancelled. A sweep already in flight when ctx is
// cancelled runs to completion; the sweep itself carries no caller deadline.
// Store errors are logged and the loop continues — a failed sweep never
// terminates the reaper.
func (r *Reaper) Run(ctx context.Context) error {
	r.log.InfoContext(ctx, "reaper started", slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoContext(ctx, "reaper stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Sweep(context.WithoutCancel(ctx))
		}
	}
}

// Sweep deletes every expired lock once. It is safe to call concurrently
// with foreground lock traffic: Release and Renew are holder-checked, and a
// renewal racing the delete fails closed on the missing row.
func (r *Reaper) Sweep(ctx context.Context) {
	reaped, err := r.store.DeleteExpired(ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "lock sweep failed", slog.Any("error", err))
		return
	}
	if reaped > 0 {
		r.log.InfoContext(ctx, "expired locks reaped", slog.Int64("count", reaped))
	}
}

// SweepOnce runs a single sweep and reports the number of locks removed.
// The reap-locks command uses it for one-shot maintenance runs.
func (r *Reaper) SweepOnce(ctx context.Context) (int64, error) {
	reaped, err := r.store.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired locks: %w", err)
	}
	return reaped, nil
}
