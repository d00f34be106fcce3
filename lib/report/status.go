// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package report

// Status is the operational snapshot served over the control socket.
// It carries counters only; fingerprints never leave the process.
type Status struct {
	CombinedID string `json:"combined_id"`

	Date             string `json:"date"`
	DailyImpressions uint32 `json:"daily_impressions"`

	CycleDetections uint32 `json:"cycle_detections"`
	CycleUnique     uint32 `json:"cycle_unique"`
	CycleRepeated   uint32 `json:"cycle_repeated"`
	ScansThisCycle  int    `json:"scans_this_cycle"`

	UniqueTotal    uint32 `json:"unique_total"`
	Scans          uint32 `json:"scans"`
	Reports        uint32 `json:"reports"`
	ScanErrors     uint32 `json:"scan_errors"`
	PublishErrors  uint32 `json:"publish_errors"`
	BytesPublished uint64 `json:"bytes_published"`

	Generation     uint64 `json:"generation"`
	WindowCurrent  int    `json:"window_current"`
	WindowPrevious int    `json:"window_previous"`

	HaveFix bool   `json:"have_fix"`
	Lat     string `json:"lat"`
	Long    string `json:"long"`

	PublishingDisabled bool `json:"publishing_disabled"`
}

// Snapshot copies the current counters into a Status. Like every
// other method it must run on the engine loop; the engine serves
// snapshot requests between ticks.
func (s *Scheduler) Snapshot() Status {
	position := s.location.Position()
	return Status{
		CombinedID:         s.combinedID,
		Date:               s.counters.Daily.Date,
		DailyImpressions:   s.counters.Daily.Impressions,
		CycleDetections:    s.counters.CycleDetections,
		CycleUnique:        s.counters.CycleUnique,
		CycleRepeated:      s.counters.CycleRepeated,
		ScansThisCycle:     s.scansThisCycle,
		UniqueTotal:        s.counters.UniqueTotal,
		Scans:              s.counters.Scans,
		Reports:            s.counters.Reports,
		ScanErrors:         s.counters.ScanErrors,
		PublishErrors:      s.counters.PublishErrors,
		BytesPublished:     s.counters.BytesPublished,
		Generation:         s.window.Generation(),
		WindowCurrent:      s.window.CurrentSize(),
		WindowPrevious:     s.window.PreviousSize(),
		HaveFix:            s.location.HaveFix(),
		Lat:                position.Lat,
		Long:               position.Long,
		PublishingDisabled: s.publisher.Disabled(),
	}
}
