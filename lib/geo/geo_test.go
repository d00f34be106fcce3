// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package geo

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// scriptedReceiver returns a scripted sequence of fix results.
type scriptedReceiver struct {
	results []func() (Position, bool)
	index   int
}

func (r *scriptedReceiver) Fix() (Position, bool) {
	if r.index >= len(r.results) {
		return Position{}, false
	}
	result := r.results[r.index]
	r.index++
	return result()
}

func fix(lat, long string) func() (Position, bool) {
	return func() (Position, bool) { return Position{Lat: lat, Long: long}, true }
}

func noFix() func() (Position, bool) {
	return func() (Position, bool) { return Position{}, false }
}

func TestRefreshRetainsLastKnownOnFailure(t *testing.T) {
	receiver := &scriptedReceiver{results: []func() (Position, bool){
		fix("33.610950", "73.061333"),
		noFix(),
	}}
	tracker := NewTracker(receiver, Position{Lat: "0.0", Long: "0.0"})

	if !tracker.Refresh() {
		t.Fatal("first Refresh failed")
	}
	if tracker.Refresh() {
		t.Fatal("second Refresh unexpectedly succeeded")
	}

	got := tracker.Position()
	if got.Lat != "33.610950" || got.Long != "73.061333" {
		t.Errorf("Position = %+v, want last known fix", got)
	}
	if !tracker.HaveFix() {
		t.Error("HaveFix = false after a successful fix")
	}
}

func TestFallbackUntilFirstFix(t *testing.T) {
	tracker := NewTracker(&scriptedReceiver{}, Position{Lat: "33.610950", Long: "73.061333"})

	if tracker.HaveFix() {
		t.Error("HaveFix = true before any fix")
	}
	got := tracker.Position()
	if got.Lat != "33.610950" {
		t.Errorf("fallback Lat = %q, want 33.610950", got.Lat)
	}
}

func TestAcquireFixTimesOut(t *testing.T) {
	receiver := &scriptedReceiver{} // never fixes
	tracker := NewTracker(receiver, Position{})

	var slept time.Duration
	ok := tracker.AcquireFix(10*time.Second, time.Second, func(d time.Duration) { slept += d })

	if ok {
		t.Fatal("AcquireFix succeeded with no fix available")
	}
	if slept != 10*time.Second {
		t.Errorf("slept %v, want 10s", slept)
	}
}

func TestAcquireFixReturnsEarly(t *testing.T) {
	receiver := &scriptedReceiver{results: []func() (Position, bool){
		noFix(),
		fix("1.000000", "2.000000"),
	}}
	tracker := NewTracker(receiver, Position{})

	var slept time.Duration
	ok := tracker.AcquireFix(90*time.Second, time.Second, func(d time.Duration) { slept += d })

	if !ok {
		t.Fatal("AcquireFix failed")
	}
	if slept != time.Second {
		t.Errorf("slept %v, want 1s", slept)
	}
}

func TestParseNMEACoordinate(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		hemisphere string
		want       string
		wantErr    bool
	}{
		{"north", "3336.6570", "N", "33.610950", false},
		{"east", "7303.6800", "E", "73.061333", false},
		{"south negates", "3336.6570", "S", "-33.610950", false},
		{"west negates", "7303.6800", "W", "-73.061333", false},
		{"empty", "", "N", "", true},
		{"garbage", "abc", "N", "", true},
		{"bad hemisphere", "3336.6570", "X", "", true},
		{"minutes overflow", "3375.0000", "N", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseNMEACoordinate(tc.raw, tc.hemisphere)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseNMEACoordinate(%q) succeeded, want error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNMEACoordinate(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("ParseNMEACoordinate(%q, %q) = %q, want %q", tc.raw, tc.hemisphere, got, tc.want)
			}
		})
	}
}

func TestFileReceiver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "position")

	receiver := FileReceiver{Path: path}
	if _, ok := receiver.Fix(); ok {
		t.Error("Fix() ok with no snapshot file")
	}

	if err := os.WriteFile(path, []byte("4100.9060,N,02858.7700,E\n"), 0644); err != nil {
		t.Fatal(err)
	}
	position, ok := receiver.Fix()
	if !ok {
		t.Fatal("Fix() not ok with a valid snapshot")
	}
	if position.Lat != "41.015100" || position.Long != "28.979500" {
		t.Errorf("Fix() = %+v", position)
	}

	for _, content := range []string{"", "4100.9060,N", "garbage,N,02858.7700,E"} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, ok := receiver.Fix(); ok {
			t.Errorf("Fix() ok with malformed snapshot %q", content)
		}
	}
}
