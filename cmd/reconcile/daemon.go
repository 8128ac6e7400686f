package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/acquirex/reconcile/pkg/ingest"
)

// nextRunAfter returns the next wall-clock occurrence of an HH:MM mark
// strictly after now.
func nextRunAfter(now time.Time, runAt string) (time.Time, error) {
	mark, err := time.Parse("15:04", runAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid RUN_AT %q, want HH:MM: %w", runAt, err)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), mark.Hour(), mark.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next, nil
}

// runDaemon runs one unfiltered ingestion pass per day at the configured
// time. The busy flag skips a tick when the previous run is somehow
// still going; runs never overlap.
func runDaemon(ctx context.Context, a *app) {
	if a.cfg.Scheduler.Disabled {
		a.log.Warn("scheduler disabled by configuration")
		return
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var busy atomic.Bool
	for {
		next, err := nextRunAfter(time.Now(), a.cfg.Scheduler.RunAt)
		if err != nil {
			a.log.Error("scheduler misconfigured", "error", err)
			os.Exit(1)
		}
		a.log.Info("next ingestion run scheduled", "at", next)

		select {
		case <-ctx.Done():
			a.log.Info("scheduler stopping")
			return
		case <-time.After(time.Until(next)):
		}

		if !busy.CompareAndSwap(false, true) {
			a.log.Warn("previous run still in progress, skipping tick")
			continue
		}
		if _, err := a.pipeline.Run(ctx, ingest.Filter{}); err != nil {
			a.log.Error("scheduled run failed", "error", err)
		}
		busy.Store(false)
	}
}
