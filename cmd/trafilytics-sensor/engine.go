// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/trafilytics/trafilytics/lib/clock"
	"github.com/trafilytics/trafilytics/lib/report"
	"github.com/trafilytics/trafilytics/lib/scan"
	"github.com/trafilytics/trafilytics/lib/store"
)

// errRestartDue signals that the uptime limit lapsed and the process
// should re-exec itself.
var errRestartDue = errors.New("uptime limit reached")

// Engine runs the sensor's polling loop. All measurement state lives
// in the scheduler and is touched only from Run's goroutine; the
// control socket reaches it through the snapshot request channel.
type Engine struct {
	clock     clock.Clock
	logger    *slog.Logger
	scheduler *report.Scheduler
	source    scan.Source

	// completions delivers publish acknowledgments from the store
	// worker. A nil channel (no store worker, as in tests) blocks
	// forever in select, which is exactly the no-op we want.
	completions <-chan store.Completion

	tick         time.Duration
	scanInterval time.Duration
	uptimeLimit  time.Duration

	snapshotRequests chan chan report.Status
	startedAt        time.Time
}

func newEngine(clk clock.Clock, logger *slog.Logger, scheduler *report.Scheduler, source scan.Source,
	completions <-chan store.Completion, tick, scanInterval, uptimeLimit time.Duration) *Engine {
	return &Engine{
		clock:            clk,
		logger:           logger,
		scheduler:        scheduler,
		source:           source,
		completions:      completions,
		tick:             tick,
		scanInterval:     scanInterval,
		uptimeLimit:      uptimeLimit,
		snapshotRequests: make(chan chan report.Status, 4),
		startedAt:        clk.Now(),
	}
}

// Run drives the loop until the context is cancelled (returns nil) or
// the uptime limit lapses (returns errRestartDue). Collaborator calls
// are synchronous from this loop; a slow one delays the next tick but
// never corrupts state.
func (e *Engine) Run(ctx context.Context) error {
	ticker := e.clock.NewTicker(e.tick)
	defer ticker.Stop()

	nextScan := e.startedAt.Add(e.scanInterval)
	for {
		select {
		case <-ctx.Done():
			return nil

		case completion := <-e.completions:
			e.scheduler.HandleCompletion(completion)

		case reply := <-e.snapshotRequests:
			reply <- e.scheduler.Snapshot()

		case <-ticker.C:
			// Decisions use the clock, not the tick's timestamp: the
			// ticker drops ticks when the loop falls behind, and a
			// stale timestamp would delay the scan by another tick.
			now := e.clock.Now()
			if now.Sub(e.startedAt) >= e.uptimeLimit {
				return errRestartDue
			}
			if now.Before(nextScan) {
				continue
			}
			e.poll(ctx)
			nextScan = nextScan.Add(e.scanInterval)
			if nextScan.Before(e.clock.Now()) {
				// A slow collaborator ate one or more scan slots;
				// skip them rather than bursting to catch up.
				nextScan = e.clock.Now().Add(e.scanInterval)
			}
		}
	}
}

// poll runs one observation poll and, on the K-th poll of a cycle,
// the report transition.
func (e *Engine) poll(ctx context.Context) {
	observations, err := e.source.Scan()
	if e.scheduler.RecordPoll(observations, err) {
		e.scheduler.Report(ctx)
	}
}

// Uptime reports how long the engine has been running.
func (e *Engine) Uptime() time.Duration {
	return e.clock.Now().Sub(e.startedAt)
}

// Snapshot obtains the scheduler's status from outside the loop
// goroutine. Used by the restart path after Run has returned, where
// the loop no longer serves requests.
func (e *Engine) finalSnapshot() report.Status {
	return e.scheduler.Snapshot()
}
