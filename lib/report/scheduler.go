// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trafilytics/trafilytics/lib/aggregate"
	"github.com/trafilytics/trafilytics/lib/anonymize"
	"github.com/trafilytics/trafilytics/lib/dedup"
	"github.com/trafilytics/trafilytics/lib/devlog"
	"github.com/trafilytics/trafilytics/lib/geo"
	"github.com/trafilytics/trafilytics/lib/scan"
	"github.com/trafilytics/trafilytics/lib/store"
	"github.com/trafilytics/trafilytics/lib/timesource"
)

// Publisher is what the scheduler needs from the document store.
// *store.Client implements it; tests substitute a fake.
type Publisher interface {
	GetInt(ctx context.Context, path string) (int, bool, error)
	Set(path string, document any, taskID uint64) bool
	Disabled() bool
}

// Config holds the collaborators and identity of a Scheduler.
type Config struct {
	// CombinedID names this sensor in the remote store.
	CombinedID string

	// DeviceName, Firmware and MACAddress fill the device-info
	// document.
	DeviceName string
	Firmware   string
	MACAddress string

	// ScansPerReport is K: a report is composed after every K
	// polls, successful or not.
	ScansPerReport int

	// MaxPerScan caps how many observations of one batch are
	// processed through the deduplication window. Raw detection
	// counts are taken before the cap.
	MaxPerScan int

	// Salt is the process-lifetime anonymization salt.
	Salt anonymize.Salt

	Publisher Publisher
	Time      timesource.Source
	Location  *geo.Tracker

	// DevLog may be nil; a nil log drops all records.
	DevLog *devlog.Log

	// Logger is used for structured logging. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// Scheduler drives the measurement cycle. All methods must be called
// from a single goroutine.
type Scheduler struct {
	combinedID     string
	deviceName     string
	firmware       string
	macAddress     string
	scansPerReport int
	maxPerScan     int
	salt           anonymize.Salt

	publisher Publisher
	time      timesource.Source
	location  *geo.Tracker
	devlog    *devlog.Log
	logger    *slog.Logger

	window   *dedup.Window
	counters aggregate.Counters

	storedDate     string
	scansThisCycle int
	taskID         uint64
	deviceInfoSent bool
}

// New creates a Scheduler in the accumulating state.
func New(config Config) (*Scheduler, error) {
	if config.CombinedID == "" {
		return nil, fmt.Errorf("report: CombinedID is required")
	}
	if config.ScansPerReport <= 0 {
		return nil, fmt.Errorf("report: ScansPerReport must be positive, got %d", config.ScansPerReport)
	}
	if config.MaxPerScan <= 0 {
		return nil, fmt.Errorf("report: MaxPerScan must be positive, got %d", config.MaxPerScan)
	}
	if config.Publisher == nil {
		return nil, fmt.Errorf("report: Publisher is required")
	}
	if config.Time == nil {
		return nil, fmt.Errorf("report: Time is required")
	}
	if config.Location == nil {
		return nil, fmt.Errorf("report: Location is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		combinedID:     config.CombinedID,
		deviceName:     config.DeviceName,
		firmware:       config.Firmware,
		macAddress:     config.MACAddress,
		scansPerReport: config.ScansPerReport,
		maxPerScan:     config.MaxPerScan,
		salt:           config.Salt,
		publisher:      config.Publisher,
		time:           config.Time,
		location:       config.Location,
		devlog:         config.DevLog,
		logger:         logger,
		window:         dedup.NewWindow(),
	}, nil
}

// Bootstrap resumes the daily tally from the remote store and
// publishes the device-info document. Called once before the polling
// loop starts. When time is unavailable at startup, both steps are
// deferred: the first report cycle with a trustworthy timestamp
// adopts the date, and device info goes out with it.
func (s *Scheduler) Bootstrap(ctx context.Context) {
	timestamp, ok := s.time.Now()
	if !ok {
		s.logger.Warn("time unavailable at startup, daily tally starts at zero until first dated report")
		return
	}
	date, ok := timesource.DateOf(timestamp)
	if !ok {
		s.logger.Warn("malformed startup timestamp", "timestamp", timestamp)
		return
	}

	s.storedDate = date
	s.resumeDaily(ctx, date)
	s.publishDeviceInfo(timestamp)
	s.devlog.Printf(timestamp, "startup: date=%s daily_impressions=%d", date, s.counters.Daily.Impressions)
}

// RecordPoll folds one observation poll into the cycle and reports
// whether the cycle is complete (the caller then invokes Report). A
// non-nil scanErr discards the batch: only the attempt and error
// tallies move.
func (s *Scheduler) RecordPoll(observations []scan.Observation, scanErr error) bool {
	s.counters.RecordScanAttempt()
	s.scansThisCycle++

	if scanErr != nil {
		s.counters.RecordScanError()
		s.logger.Warn("scan failed", "error", scanErr)
		s.devlog.Printf(s.logTimestamp(), "SCAN #%d: error: %v", s.counters.Scans, scanErr)
		return s.scansThisCycle >= s.scansPerReport
	}

	detections := len(observations)
	processed := observations
	if len(processed) > s.maxPerScan {
		processed = processed[:s.maxPerScan]
	}

	var classification aggregate.Classification
	for _, observation := range processed {
		fingerprint := anonymize.Hash(observation.Identifier, s.salt)
		switch s.window.Classify(fingerprint) {
		case dedup.NewToSystem:
			classification.New++
		case dedup.CycleUnique:
			classification.CycleUnique++
		case dedup.Repeated:
			classification.Repeated++
		}
	}
	s.counters.RecordScan(detections, classification)

	s.devlog.Printf(s.logTimestamp(), "SCAN #%d: Found=%d Unique=%d Repeated=%d",
		s.counters.Scans, detections,
		classification.New+classification.CycleUnique, classification.Repeated)

	return s.scansThisCycle >= s.scansPerReport
}

// Report runs one reporting transition: day-boundary check, daily
// tally commit, publish, generation rollover. It always returns the
// scheduler to the accumulating state, whatever happens along the
// way.
func (s *Scheduler) Report(ctx context.Context) {
	defer s.rollCycle()

	timestamp, ok := s.time.Now()
	if !ok {
		// Without a trustworthy date the cycle's impressions cannot
		// be attributed, so the whole publish is suppressed. The
		// rollover in the deferred call still happens.
		s.logger.Warn("time unavailable, report suppressed for this cycle")
		s.devlog.Printf("time unavailable", "report suppressed")
		return
	}
	date, ok := timesource.DateOf(timestamp)
	if !ok {
		s.logger.Warn("malformed timestamp, report suppressed", "timestamp", timestamp)
		return
	}

	switch {
	case s.storedDate == "":
		s.storedDate = date
		s.counters.Daily.Date = date
	case s.storedDate == date:
		// Same day, tally continues.
	default:
		s.logger.Info("day boundary", "previous", s.storedDate, "current", date)
		s.devlog.Printf(timestamp, "day boundary: %s -> %s", s.storedDate, date)
		s.storedDate = date
		s.resumeDaily(ctx, date)
	}

	s.counters.CommitCycle()
	s.location.Refresh()

	if !s.deviceInfoSent {
		s.publishDeviceInfo(timestamp)
	}
	s.publishReport(timestamp, date)

	s.devlog.Printf(timestamp, "REPORT #%d: Impressions=%d Unique=%d Repeated=%d Daily=%d",
		s.counters.Reports, s.counters.CycleDetections,
		s.counters.CycleUnique, s.counters.CycleRepeated,
		s.counters.Daily.Impressions)
}

// HandleCompletion folds one publish acknowledgment into the
// counters. Called from the engine loop as completions arrive; never
// blocks and never triggers a retry.
func (s *Scheduler) HandleCompletion(completion store.Completion) {
	if completion.Err != nil {
		s.counters.RecordPublishError()
		s.logger.Warn("publish failed", "task_id", completion.TaskID, "error", completion.Err)
		return
	}
	s.counters.RecordPublish(completion.Bytes)
}

// rollCycle advances the deduplication window and zeroes the cycle
// counters. Invoked exactly once per report cycle.
func (s *Scheduler) rollCycle() {
	s.window.Advance()
	s.counters.ResetCycle()
	s.scansThisCycle = 0
}

// resumeDaily replaces the daily tally with the remote value for
// date, or zero when the store has nothing (or is unreachable or
// disabled).
func (s *Scheduler) resumeDaily(ctx context.Context, date string) {
	value := 0
	if !s.publisher.Disabled() {
		remote, found, err := s.publisher.GetInt(ctx, dailyImpressionsPath(s.combinedID, date))
		if err != nil {
			s.logger.Warn("daily tally fetch failed, starting at zero", "date", date, "error", err)
		} else if found {
			value = remote
		}
	}
	s.counters.ResumeDaily(date, value)
	s.logger.Info("daily tally resumed", "date", date, "impressions", s.counters.Daily.Impressions)
}

// publishReport queues the per-date data document and the location
// update for this cycle.
func (s *Scheduler) publishReport(timestamp, date string) {
	if s.publisher.Disabled() {
		return
	}

	s.publisher.Set(dailyDataPath(s.combinedID, date), DailyDataDoc{
		BillboardID:      s.combinedID,
		Date:             date,
		DailyImpressions: int(s.counters.Daily.Impressions),
		LastUpdated:      timestamp,
	}, s.nextTaskID())

	position := s.location.Position()
	s.publisher.Set(locationPath(s.combinedID), LocationDoc{
		Lat:  position.Lat,
		Long: position.Long,
	}, s.nextTaskID())
}

// publishDeviceInfo queues the one-time device-info document.
func (s *Scheduler) publishDeviceInfo(timestamp string) {
	if s.publisher.Disabled() {
		return
	}

	status := "active"
	if !s.location.HaveFix() {
		status = "location unresolved"
	}
	position := s.location.Position()
	queued := s.publisher.Set(deviceInfoPath(s.combinedID), DeviceInfoDoc{
		BillboardID: s.combinedID,
		DeviceName:  s.deviceName,
		Firmware:    s.firmware,
		MACAddress:  s.macAddress,
		SetupTime:   timestamp,
		Status:      status,
		Location: LocationDoc{
			Lat:  position.Lat,
			Long: position.Long,
		},
	}, s.nextTaskID())
	if queued {
		s.deviceInfoSent = true
	}
}

// logTimestamp returns the current formatted time for device-log
// records, or a placeholder when time is unavailable. Log records are
// observational; a placeholder is better than dropping the line.
func (s *Scheduler) logTimestamp() string {
	timestamp, ok := s.time.Now()
	if !ok {
		return "time unavailable"
	}
	return timestamp
}

func (s *Scheduler) nextTaskID() uint64 {
	s.taskID++
	return s.taskID
}
