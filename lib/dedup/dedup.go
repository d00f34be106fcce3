// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"github.com/trafilytics/trafilytics/lib/anonymize"
)

// Class is the classification of one fingerprint against the window.
type Class int

const (
	// Repeated: already seen earlier in the current cycle.
	Repeated Class = iota

	// CycleUnique: first sighting this cycle, but present in the
	// previous generation. Counts toward cycle uniques only.
	CycleUnique

	// NewToSystem: absent from both generations. Counts toward cycle
	// uniques and the cumulative unique total.
	NewToSystem
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case Repeated:
		return "repeated"
	case CycleUnique:
		return "cycle-unique"
	case NewToSystem:
		return "new"
	default:
		return "unknown"
	}
}

// Window is the two-generation deduplication structure. Not safe for
// concurrent use: the sensor engine owns it and touches it only from
// its single polling loop.
type Window struct {
	current    map[anonymize.Fingerprint]struct{}
	previous   map[anonymize.Fingerprint]struct{}
	generation uint64
}

// NewWindow returns an empty two-generation window.
func NewWindow() *Window {
	return &Window{
		current:  make(map[anonymize.Fingerprint]struct{}),
		previous: make(map[anonymize.Fingerprint]struct{}),
	}
}

// Classify places a fingerprint into one of the three classes and
// records it in the current generation when it is not a repeat.
// Duplicate fingerprints within one batch collapse naturally: the
// first sighting inserts, the rest classify as Repeated.
func (w *Window) Classify(fp anonymize.Fingerprint) Class {
	if _, seen := w.current[fp]; seen {
		return Repeated
	}

	w.current[fp] = struct{}{}

	if _, seenLastCycle := w.previous[fp]; seenLastCycle {
		return CycleUnique
	}
	return NewToSystem
}

// Advance rolls the window at a report boundary: the current
// generation becomes the previous one and a fresh current generation
// begins. Implemented as an O(1) swap: the old previous map is
// cleared and reused as the new current generation.
// Must be invoked exactly once per report cycle, never mid-cycle.
func (w *Window) Advance() {
	w.current, w.previous = w.previous, w.current
	clear(w.current)
	w.generation++
}

// Generation returns the number of completed rollovers, for status
// reporting.
func (w *Window) Generation() uint64 { return w.generation }

// CurrentSize returns the number of distinct fingerprints accumulated
// this cycle.
func (w *Window) CurrentSize() int { return len(w.current) }

// PreviousSize returns the size of the prior generation.
func (w *Window) PreviousSize() int { return len(w.previous) }
