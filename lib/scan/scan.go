// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package scan

import "errors"

// ErrScanFailed reports a radio driver failure. Callers must treat
// this as transient: count it, discard the poll, and continue.
var ErrScanFailed = errors.New("scan: driver failure")

// Observation is one detected beacon. The identifier is the raw
// 6-byte hardware address. It must be fingerprinted by the caller
// before leaving the poll's scope and is never stored or logged.
type Observation struct {
	// Identifier is the raw 6-byte hardware identifier.
	Identifier [6]byte

	// SignalStrength is the received signal strength in dBm
	// (negative; closer to zero is stronger).
	SignalStrength int

	// Label is the human-readable beacon name as broadcast. May be
	// empty. Carried for diagnostics only; never published.
	Label string
}

// Source produces one batch of observations per poll.
//
// A nil error with an empty slice means the environment was quiet.
// ErrScanFailed (possibly wrapped) means the driver itself failed and
// the batch, if any, must be discarded.
type Source interface {
	Scan() ([]Observation, error)
}
