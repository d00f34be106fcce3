// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/trafilytics/trafilytics/lib/anonymize"
	"github.com/trafilytics/trafilytics/lib/clock"
	"github.com/trafilytics/trafilytics/lib/config"
	"github.com/trafilytics/trafilytics/lib/ctlsock"
	"github.com/trafilytics/trafilytics/lib/devlog"
	"github.com/trafilytics/trafilytics/lib/geo"
	"github.com/trafilytics/trafilytics/lib/hwid"
	"github.com/trafilytics/trafilytics/lib/process"
	"github.com/trafilytics/trafilytics/lib/report"
	"github.com/trafilytics/trafilytics/lib/scan"
	"github.com/trafilytics/trafilytics/lib/store"
	"github.com/trafilytics/trafilytics/lib/timesource"
	"github.com/trafilytics/trafilytics/lib/version"
	"github.com/trafilytics/trafilytics/lib/watchdog"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string

	flagSet := pflag.NewFlagSet("trafilytics-sensor", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the sensor config file (or set "+config.EnvVar+")")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("trafilytics-sensor")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	path, err := config.Locate(configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level)
	clk := clock.Real()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A fresh restart state file means the predecessor process
	// re-execed on purpose; surface that so a planned restart is not
	// mistaken for a crash loop.
	if state, found, err := watchdog.Check(cfg.StatePath, time.Hour); err != nil {
		logger.Warn("unreadable restart state file", "path", cfg.StatePath, "error", err)
	} else if found {
		logger.Info("resuming after planned restart",
			"reason", state.Reason,
			"predecessor_pid", state.PID,
			"predecessor_uptime", state.Uptime,
			"predecessor_scans", state.Scans,
			"predecessor_reports", state.Reports,
		)
		if err := watchdog.Clear(cfg.StatePath); err != nil {
			logger.Warn("failed to clear restart state file", "error", err)
		}
	}

	// Identity: the sensor's own hardware identifier is not an
	// audience identifier and is published as-is.
	id, err := hwid.Read()
	if err != nil {
		return fmt.Errorf("reading hardware identifier: %w", err)
	}
	combinedID := hwid.CombinedID(cfg.GroupID, id)

	monotonicNanos := monotonicNow()
	salt, err := anonymize.NewSalt(monotonicNanos)
	if err != nil {
		return fmt.Errorf("generating anonymization salt: %w", err)
	}

	var deviceLog *devlog.Log
	if cfg.Log.DevicePath != "" {
		deviceLog = devlog.Open(cfg.Log.DevicePath, cfg.Log.MaxSegmentBytes)
		defer deviceLog.Close()
		if !deviceLog.Enabled() {
			logger.Warn("device log unavailable, records will be dropped", "path", cfg.Log.DevicePath)
		}
	}

	storeClient, err := store.New(store.Config{
		BaseURL:    cfg.Store.URL,
		Email:      cfg.Store.Email,
		Password:   cfg.Store.Password,
		QueueDepth: cfg.Store.QueueDepth,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	if err := storeClient.Authenticate(ctx); err != nil && !errors.Is(err, store.ErrAuthFailed) {
		// Transient auth trouble: proceed unauthenticated. The store
		// rejects what it rejects; measurement continues regardless.
		logger.Warn("store authentication failed, proceeding without a token", "error", err)
	}
	go storeClient.Run(ctx)

	tracker := geo.NewTracker(locationReceiver(cfg), geo.Position{
		Lat:  cfg.Location.FallbackLat,
		Long: cfg.Location.FallbackLong,
	})
	if cfg.Location.SpoolPath != "" {
		if !tracker.AcquireFix(cfg.Location.AcquireTimeout.Std(), cfg.Location.PollInterval.Std(), clk.Sleep) {
			logger.Warn("no position fix at startup, using fallback coordinates",
				"lat", cfg.Location.FallbackLat, "long", cfg.Location.FallbackLong)
		}
	}

	scheduler, err := report.New(report.Config{
		CombinedID:     combinedID,
		DeviceName:     cfg.DeviceName,
		Firmware:       version.Version,
		MACAddress:     id.Hex(),
		ScansPerReport: cfg.Scan.ScansPerReport,
		MaxPerScan:     cfg.Scan.MaxPerScan,
		Salt:           salt,
		Publisher:      storeClient,
		Time:           timesource.SystemSource{Clock: clk},
		Location:       tracker,
		DevLog:         deviceLog,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	scheduler.Bootstrap(ctx)

	engine := newEngine(clk, logger, scheduler, observationSource(cfg, clk),
		storeClient.Completions(), cfg.Scan.Tick.Std(), cfg.Scan.Interval.Std(), cfg.UptimeLimit.Std())

	server := ctlsock.NewServer(cfg.SocketPath, logger)
	engine.registerActions(server)
	socketDone := make(chan error, 1)
	go func() { socketDone <- server.Serve(ctx) }()

	logger.Info("sensor running",
		"version", version.Info(),
		"combined_id", combinedID,
		"access_key", hwid.AccessKey(combinedID, monotonicNanos),
		"group", cfg.GroupID,
		"scan_interval", cfg.Scan.Interval.Std(),
		"scans_per_report", cfg.Scan.ScansPerReport,
		"uptime_limit", cfg.UptimeLimit.Std(),
		"simulate", cfg.Scan.Simulate,
	)

	runErr := engine.Run(ctx)

	stop()
	if err := <-socketDone; err != nil {
		logger.Error("control socket error", "error", err)
	}

	if errors.Is(runErr, errRestartDue) {
		return restart(engine, cfg.StatePath, deviceLog, logger)
	}

	logger.Info("sensor stopped")
	return runErr
}

// restart records why the process is going away and re-execs the same
// binary. All in-memory measurement state (salt, generation sets,
// cycle counters) is discarded on purpose.
func restart(engine *Engine, statePath string, deviceLog *devlog.Log, logger *slog.Logger) error {
	status := engine.finalSnapshot()
	state := watchdog.State{
		Reason:    "uptime limit",
		PID:       os.Getpid(),
		Uptime:    engine.Uptime().Round(time.Second).String(),
		Scans:     status.Scans,
		Reports:   status.Reports,
		Timestamp: time.Now(),
	}
	if err := watchdog.Write(statePath, state); err != nil {
		logger.Warn("failed to write restart state file", "error", err)
	}

	logger.Info("uptime limit reached, restarting", "uptime", state.Uptime)
	deviceLog.Close()
	return watchdog.Reexec()
}

// observationSource picks the radio driver spool or the synthetic
// source, per config.
func observationSource(cfg *config.Config, clk clock.Clock) scan.Source {
	if cfg.Scan.Simulate {
		seed := cfg.Scan.SimulateSeed
		if seed == 0 {
			seed = clk.Now().UnixNano()
		}
		return scan.NewSimSource(seed, 12)
	}
	return scan.NewSpoolSource(cfg.Scan.SpoolPath, cfg.Scan.SpoolMaxAge.Std(), clk)
}

// locationReceiver returns the GNSS snapshot reader, or Unavailable
// when the sensor has no position feed.
func locationReceiver(cfg *config.Config) geo.Receiver {
	if cfg.Location.SpoolPath == "" {
		return geo.Unavailable{}
	}
	return geo.FileReceiver{Path: cfg.Location.SpoolPath}
}

// newLogger builds the structured logger at the configured level. The
// level string was validated at config load.
func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}

// monotonicNow reads the monotonic clock directly, for salt
// generation and the access key. Unlike the wall clock it cannot be
// influenced from outside the device.
func monotonicNow() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// Fall back to wall time; the salt still mixes random bytes.
		return time.Now().UnixNano()
	}
	return ts.Nano()
}
