// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package geo tracks the sensor's position.
//
// The sensor is nominally fixed, but its coordinates come from a GNSS
// receiver that may lose its fix for long stretches. The Tracker
// therefore retains the last known coordinates and reports fix status
// separately; a failed refresh never erases a previously good
// position.
package geo

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Position is a pair of decimal-degree coordinate strings as
// published in reports. Strings (not floats) are the wire format: the
// remote store's documents carry them verbatim.
type Position struct {
	Lat  string
	Long string
}

// Receiver is the GNSS collaborator. Fix returns the current position
// or ok=false when no fix is available.
type Receiver interface {
	Fix() (Position, bool)
}

// Unavailable is the Receiver for sensors without a position feed;
// the tracker then publishes the configured fallback coordinates.
type Unavailable struct{}

// Fix implements Receiver. Never has a fix.
func (Unavailable) Fix() (Position, bool) { return Position{}, false }

// FileReceiver reads a position snapshot maintained by an external
// GNSS helper: a single line of raw receiver coordinates,
//
//	4100.9060,N,02858.7700,E
//
// latitude, its hemisphere, longitude, its hemisphere. A missing or
// malformed snapshot is simply no fix.
type FileReceiver struct {
	Path string
}

// Fix implements Receiver.
func (r FileReceiver) Fix() (Position, bool) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return Position{}, false
	}
	fields := strings.Split(strings.TrimSpace(string(data)), ",")
	if len(fields) != 4 {
		return Position{}, false
	}
	lat, err := ParseNMEACoordinate(fields[0], fields[1])
	if err != nil {
		return Position{}, false
	}
	long, err := ParseNMEACoordinate(fields[2], fields[3])
	if err != nil {
		return Position{}, false
	}
	return Position{Lat: lat, Long: long}, true
}

// Tracker retains the last known position across failed refreshes.
// Not safe for concurrent use; owned by the engine loop.
type Tracker struct {
	receiver Receiver
	position Position
	haveFix  bool
}

// NewTracker creates a tracker with fallback coordinates used until
// the first successful fix.
func NewTracker(receiver Receiver, fallback Position) *Tracker {
	return &Tracker{receiver: receiver, position: fallback}
}

// AcquireFix polls the receiver until a fix arrives or the timeout
// lapses, sleeping poll-interval between attempts. Used once at
// startup, where a long wait is acceptable. The sleep function is a
// parameter so callers wire their clock in.
func (t *Tracker) AcquireFix(timeout, pollInterval time.Duration, sleep func(time.Duration)) bool {
	deadline := timeout
	for deadline > 0 {
		if t.Refresh() {
			return true
		}
		sleep(pollInterval)
		deadline -= pollInterval
	}
	return false
}

// Refresh performs one light position update. On failure the last
// known position is retained and false is returned.
func (t *Tracker) Refresh() bool {
	position, ok := t.receiver.Fix()
	if !ok {
		return false
	}
	t.position = position
	t.haveFix = true
	return true
}

// Position returns the current best-known coordinates.
func (t *Tracker) Position() Position { return t.position }

// HaveFix reports whether any fix has ever been acquired. False means
// the position is still the configured fallback and location status
// is unresolved.
func (t *Tracker) HaveFix() bool { return t.haveFix }

// ParseNMEACoordinate converts a GNSS receiver's ddmm.mmmmmm
// coordinate with its hemisphere indicator (N/S/E/W) into a
// decimal-degree string with six fractional digits.
func ParseNMEACoordinate(raw, hemisphere string) (string, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < 0 {
		return "", fmt.Errorf("geo: malformed coordinate %q", raw)
	}

	degrees := float64(int(value / 100))
	minutes := value - degrees*100
	if minutes >= 60 {
		return "", fmt.Errorf("geo: minutes out of range in %q", raw)
	}
	decimal := degrees + minutes/60

	switch strings.TrimSpace(hemisphere) {
	case "N", "E":
	case "S", "W":
		decimal = -decimal
	default:
		return "", fmt.Errorf("geo: unknown hemisphere %q", hemisphere)
	}

	return strconv.FormatFloat(decimal, 'f', 6, 64), nil
}
