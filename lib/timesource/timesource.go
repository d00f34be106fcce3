// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package timesource abstracts the sensor's wall-clock collaborator.
//
// Deployed sensors read time from the cellular network rather than a
// local RTC, and that read can fail. The interface therefore reports
// availability explicitly instead of returning a zero time: a cycle
// without a trustworthy timestamp must not attribute impressions to a
// guessed date.
package timesource

import (
	"strings"
	"time"

	"github.com/trafilytics/trafilytics/lib/clock"
)

// Layout is the canonical timestamp format published in reports:
// "2026-03-01 14:30:45 UTC".
const Layout = "2006-01-02 15:04:05 UTC"

// Source provides the current formatted timestamp. ok is false when
// time is unavailable this cycle; the returned string is then empty
// and must not be used.
type Source interface {
	Now() (timestamp string, ok bool)
}

// DateOf extracts the YYYY-MM-DD date from a canonical timestamp.
// Returns false for malformed input.
func DateOf(timestamp string) (string, bool) {
	date, _, found := strings.Cut(timestamp, " ")
	if !found || len(date) != 10 {
		return "", false
	}
	return date, true
}

// SystemSource reads time from the injected clock, always in UTC.
// Used on hosts with a trustworthy system clock and in simulation.
type SystemSource struct {
	Clock clock.Clock
}

// Now implements Source. Never unavailable.
func (s SystemSource) Now() (string, bool) {
	return s.Clock.Now().UTC().Format(Layout), true
}

// FormatTime renders a time.Time in the canonical layout, for
// collaborators that obtain time elsewhere.
func FormatTime(t time.Time) string {
	return t.UTC().Format(Layout)
}
