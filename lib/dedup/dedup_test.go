// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"testing"

	"github.com/trafilytics/trafilytics/lib/anonymize"
)

const (
	fpA = anonymize.Fingerprint(0xA1)
	fpB = anonymize.Fingerprint(0xB2)
)

func TestClassifyWithinCycle(t *testing.T) {
	w := NewWindow()

	// [A, A, B]: A is new, the repeat collapses, B is new.
	cases := []struct {
		fp   anonymize.Fingerprint
		want Class
	}{
		{fpA, NewToSystem},
		{fpA, Repeated},
		{fpB, NewToSystem},
	}
	for i, c := range cases {
		if got := w.Classify(c.fp); got != c.want {
			t.Errorf("Classify #%d = %v, want %v", i, got, c.want)
		}
	}

	if got := w.CurrentSize(); got != 2 {
		t.Errorf("CurrentSize = %d, want 2", got)
	}
}

func TestTwoGenerationMemory(t *testing.T) {
	w := NewWindow()

	// Cycle 1: A is new to the system.
	if got := w.Classify(fpA); got != NewToSystem {
		t.Fatalf("cycle1 Classify(A) = %v, want NewToSystem", got)
	}
	w.Advance()

	// Cycle 2: A is remembered from the previous generation, so it is
	// unique to this cycle but not cumulative.
	if got := w.Classify(fpA); got != CycleUnique {
		t.Errorf("cycle2 Classify(A) = %v, want CycleUnique", got)
	}
}

func TestThreeCycleForgetting(t *testing.T) {
	w := NewWindow()

	// Cycle 1: A.
	w.Classify(fpA)
	w.Advance()

	// Cycle 2: only B. A ages into the previous generation.
	w.Classify(fpB)
	w.Advance()

	// Cycle 3: A has aged out of both generations and counts as new
	// again. Bounded memory of recency, not a permanent registry.
	if got := w.Classify(fpA); got != NewToSystem {
		t.Errorf("cycle3 Classify(A) = %v, want NewToSystem", got)
	}
}

func TestAdvanceResetsCurrent(t *testing.T) {
	w := NewWindow()
	w.Classify(fpA)
	w.Classify(fpB)

	w.Advance()

	if got := w.CurrentSize(); got != 0 {
		t.Errorf("CurrentSize after Advance = %d, want 0", got)
	}
	if got := w.PreviousSize(); got != 2 {
		t.Errorf("PreviousSize after Advance = %d, want 2", got)
	}
	if got := w.Generation(); got != 1 {
		t.Errorf("Generation = %d, want 1", got)
	}
}

func TestRepeatInSameCycleStaysOutOfPrevious(t *testing.T) {
	w := NewWindow()

	w.Classify(fpA)
	if got := w.Classify(fpA); got != Repeated {
		t.Fatalf("Classify(A) second time = %v, want Repeated", got)
	}

	w.Advance()
	// The repeat did not double-insert: previous holds one entry.
	if got := w.PreviousSize(); got != 1 {
		t.Errorf("PreviousSize = %d, want 1", got)
	}
}
