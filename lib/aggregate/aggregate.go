// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package aggregate

// Classification is the per-batch fold of deduplicator results: how
// many fingerprints in one processed batch fell into each class.
type Classification struct {
	New         int // absent from both generations
	CycleUnique int // first sighting this cycle, known from last cycle
	Repeated    int // already seen this cycle
}

// DailyTally is the resumable per-date impression count. Impressions
// are monotonic non-decreasing within a date; the whole value is
// replaced on day rollover or external resume.
type DailyTally struct {
	Date        string
	Impressions uint32
}

// Counters is the sensor's counter state. Owned by the scheduler and
// mutated only from the engine's single polling loop; no locking by
// construction.
type Counters struct {
	// Cycle-scoped, zeroed by ResetCycle after every report.
	CycleDetections uint32 // raw detections this cycle (impressions)
	CycleUnique     uint32
	CycleRepeated   uint32

	// Cumulative, never reset within a process lifetime.
	UniqueTotal   uint32 // fingerprints first seen outside both generations
	Scans         uint32 // polls attempted, including failed ones
	Reports       uint32 // reports composed
	ScanErrors    uint32 // polls that returned a driver failure
	PublishErrors uint32 // remote writes that failed (never retried)

	// BytesPublished approximates outbound data volume for the
	// operational status surface.
	BytesPublished uint64

	Daily DailyTally
}

// RecordScan folds one successful poll into the counters: detections
// is the raw batch size reported by the driver (before any safety
// cap), and c is the classification fold of the processed subset.
func (s *Counters) RecordScan(detections int, c Classification) {
	s.CycleDetections += uint32(detections)
	s.CycleUnique += uint32(c.New + c.CycleUnique)
	s.CycleRepeated += uint32(c.Repeated)
	s.UniqueTotal += uint32(c.New)
}

// RecordScanAttempt counts one poll of the observation source,
// successful or not.
func (s *Counters) RecordScanAttempt() { s.Scans++ }

// RecordScanError counts a driver failure. The failed poll's batch is
// discarded by the caller; no other state moves.
func (s *Counters) RecordScanError() { s.ScanErrors++ }

// CommitCycle folds the cycle's raw detections into the daily tally
// and counts the report. Called once when a report is composed,
// before the cycle counters are reset.
func (s *Counters) CommitCycle() {
	s.Daily.Impressions += s.CycleDetections
	s.Reports++
}

// ResetCycle zeroes the cycle-scoped counters. Cumulative counters
// and the daily tally are untouched.
func (s *Counters) ResetCycle() {
	s.CycleDetections = 0
	s.CycleUnique = 0
	s.CycleRepeated = 0
}

// RecordPublish counts a confirmed remote write of the given encoded
// size.
func (s *Counters) RecordPublish(bytes int) {
	s.BytesPublished += uint64(bytes)
}

// RecordPublishError counts a failed remote write. The document is
// dropped by the caller; the next cycle publishes fresh.
func (s *Counters) RecordPublishError() { s.PublishErrors++ }

// ResumeDaily replaces the daily tally for the given date. A remote
// value greater than zero resumes the prior count for the date;
// anything else starts the date at zero. Called at process start and
// at each detected day boundary.
func (s *Counters) ResumeDaily(date string, remoteImpressions int) {
	tally := DailyTally{Date: date}
	if remoteImpressions > 0 {
		tally.Impressions = uint32(remoteImpressions)
	}
	s.Daily = tally
}
