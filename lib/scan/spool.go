// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/trafilytics/trafilytics/lib/clock"
)

// SpoolSource reads observation snapshots written by an external
// radio driver process. The driver rewrites the snapshot file
// atomically (write to a temporary file, rename into place) on every
// sweep; each poll here reads the current snapshot.
//
// Snapshot format is one observation per line:
//
//	aa:bb:cc:dd:ee:ff -62 cafe-guest
//
// identifier, signal strength in dBm, then the label (which may
// contain spaces). Blank lines and lines starting with '#' are
// skipped.
type SpoolSource struct {
	path   string
	maxAge time.Duration
	clock  clock.Clock
}

// NewSpoolSource creates a source reading snapshots at path. A
// snapshot whose modification time is older than maxAge counts as an
// empty batch: the driver has stopped sweeping and its last snapshot
// no longer describes what is present. maxAge <= 0 disables the
// staleness check.
func NewSpoolSource(path string, maxAge time.Duration, clk clock.Clock) *SpoolSource {
	return &SpoolSource{path: path, maxAge: maxAge, clock: clk}
}

// Scan implements Source. A missing snapshot file is an empty batch,
// not an error; the driver simply has not written one yet. Unreadable
// or malformed snapshots are driver failures.
func (s *SpoolSource) Scan() ([]Observation, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: stat snapshot: %v", ErrScanFailed, err)
	}
	if s.maxAge > 0 && s.clock.Now().Sub(info.ModTime()) > s.maxAge {
		return nil, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read snapshot: %v", ErrScanFailed, err)
	}

	var observations []Observation
	for lineNumber, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		observation, err := parseSnapshotLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: snapshot line %d: %v", ErrScanFailed, lineNumber+1, err)
		}
		observations = append(observations, observation)
	}
	return observations, nil
}

func parseSnapshotLine(line string) (Observation, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		return Observation{}, fmt.Errorf("want identifier and signal strength, got %q", line)
	}

	hardwareAddress, err := net.ParseMAC(fields[0])
	if err != nil || len(hardwareAddress) != 6 {
		return Observation{}, fmt.Errorf("bad identifier %q", fields[0])
	}

	signalStrength, err := strconv.Atoi(fields[1])
	if err != nil {
		return Observation{}, fmt.Errorf("bad signal strength %q", fields[1])
	}

	observation := Observation{SignalStrength: signalStrength}
	copy(observation.Identifier[:], hardwareAddress)
	if len(fields) == 3 {
		observation.Label = strings.TrimSpace(fields[2])
	}
	return observation, nil
}
