// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"time"

	"github.com/trafilytics/trafilytics/lib/ctlsock"
	"github.com/trafilytics/trafilytics/lib/report"
	"github.com/trafilytics/trafilytics/lib/version"
)

// snapshotTimeout bounds how long a status request waits for the
// engine loop to answer. The loop serves requests between ticks, so
// anything near this limit means a wedged collaborator.
const snapshotTimeout = 5 * time.Second

// statusResponse is the wire format of the "status" action.
type statusResponse struct {
	Version       string        `cbor:"version"`
	UptimeSeconds float64       `cbor:"uptime_seconds"`
	Status        report.Status `cbor:"status"`
}

// registerActions registers the sensor's control socket API.
func (e *Engine) registerActions(server *ctlsock.Server) {
	server.Handle("status", e.handleStatus)
}

// handleStatus asks the engine loop for a counter snapshot. Handlers
// run on connection goroutines; the request channel keeps all state
// access on the loop.
func (e *Engine) handleStatus(ctx context.Context, raw []byte) (any, error) {
	reply := make(chan report.Status, 1)
	select {
	case e.snapshotRequests <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.clock.After(snapshotTimeout):
		return nil, errors.New("engine busy")
	}

	select {
	case status := <-reply:
		return &statusResponse{
			Version:       version.Info(),
			UptimeSeconds: e.Uptime().Seconds(),
			Status:        status,
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.clock.After(snapshotTimeout):
		return nil, errors.New("engine busy")
	}
}
