// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config
// flag is given.
const EnvVar = "TRAFILYTICS_CONFIG"

// Duration wraps time.Duration for YAML fields written in Go duration
// syntax ("5s", "12h").
type Duration time.Duration

// UnmarshalYAML accepts a duration string scalar.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the top-level sensor configuration.
type Config struct {
	// GroupID is the deployment group this sensor reports under. It
	// prefixes the sensor's combined ID. Required.
	GroupID string `yaml:"group_id"`

	// DeviceName is the operator-facing name published in the
	// device-info document. Defaults to the hostname.
	DeviceName string `yaml:"device_name"`

	Scan     ScanConfig     `yaml:"scan"`
	Store    StoreConfig    `yaml:"store"`
	Location LocationConfig `yaml:"location"`
	Log      LogConfig      `yaml:"log"`

	// SocketPath is the Unix control socket served by the sensor.
	// Defaults to /run/trafilytics/sensor.sock.
	SocketPath string `yaml:"socket_path"`

	// StatePath is the restart state file written before a planned
	// re-exec. Defaults to /var/lib/trafilytics/restart.json.
	StatePath string `yaml:"state_path"`

	// UptimeLimit is the supervisory deadline: when a process has
	// been up this long it re-execs itself, discarding all in-memory
	// measurement state. Defaults to 12h.
	UptimeLimit Duration `yaml:"uptime_limit"`
}

// ScanConfig controls the polling loop.
type ScanConfig struct {
	// Tick is the loop granularity. Defaults to 100ms.
	Tick Duration `yaml:"tick"`

	// Interval is how often the observation source is polled.
	// Defaults to 5s.
	Interval Duration `yaml:"interval"`

	// ScansPerReport is how many polls make one report cycle.
	// Defaults to 10.
	ScansPerReport int `yaml:"scans_per_report"`

	// MaxPerScan caps how many observations of one batch are
	// processed. Defaults to 20.
	MaxPerScan int `yaml:"max_per_scan"`

	// SpoolPath is the observation snapshot file written by the
	// radio driver. Required unless Simulate is set.
	SpoolPath string `yaml:"spool_path"`

	// SpoolMaxAge treats snapshots older than this as empty: the
	// driver has stopped sweeping. Defaults to 30s.
	SpoolMaxAge Duration `yaml:"spool_max_age"`

	// Simulate replaces the radio driver with a synthetic
	// observation source, for bench deployments without hardware.
	Simulate bool `yaml:"simulate"`

	// SimulateSeed seeds the synthetic source; zero derives a seed
	// from the clock.
	SimulateSeed int64 `yaml:"simulate_seed"`
}

// StoreConfig points at the remote document store.
type StoreConfig struct {
	// URL is the root of the store's REST surface. Required.
	URL string `yaml:"url"`

	// Email and Password authenticate the sensor at startup. Both
	// empty means the store accepts unauthenticated writes.
	Email    string `yaml:"email"`
	Password string `yaml:"password"`

	// QueueDepth caps pending writes. Defaults to 16.
	QueueDepth int `yaml:"queue_depth"`
}

// LocationConfig controls position acquisition.
type LocationConfig struct {
	// SpoolPath is the position snapshot file maintained by an
	// external GNSS helper. Empty means no position feed; the
	// fallback coordinates are published for the process lifetime.
	SpoolPath string `yaml:"spool_path"`

	// FallbackLat and FallbackLong are published until the first
	// fix, as decimal-degree strings.
	FallbackLat  string `yaml:"fallback_lat"`
	FallbackLong string `yaml:"fallback_long"`

	// AcquireTimeout bounds the startup fix wait. Defaults to 90s.
	AcquireTimeout Duration `yaml:"acquire_timeout"`

	// PollInterval is the delay between startup fix attempts.
	// Defaults to 2s.
	PollInterval Duration `yaml:"poll_interval"`
}

// LogConfig controls the durable device log and structured logging.
type LogConfig struct {
	// DevicePath is the append-only device log file. Empty disables
	// the device log; the sensor measures identically either way.
	DevicePath string `yaml:"device_path"`

	// MaxSegmentBytes triggers device-log rotation. Zero uses the
	// devlog default.
	MaxSegmentBytes int64 `yaml:"max_segment_bytes"`

	// Level is the slog level: debug, info, warn or error.
	// Defaults to info.
	Level string `yaml:"level"`
}

// Locate resolves the config file path from the --config flag value
// or the TRAFILYTICS_CONFIG environment variable.
func Locate(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if fromEnv := os.Getenv(EnvVar); fromEnv != "" {
		return fromEnv, nil
	}
	return "", fmt.Errorf("no config file: pass --config or set %s", EnvVar)
}

// Load reads, parses, defaults and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.DeviceName == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.DeviceName = hostname
		}
	}
	if c.SocketPath == "" {
		c.SocketPath = "/run/trafilytics/sensor.sock"
	}
	if c.StatePath == "" {
		c.StatePath = "/var/lib/trafilytics/restart.json"
	}
	if c.UptimeLimit == 0 {
		c.UptimeLimit = Duration(12 * time.Hour)
	}
	if c.Scan.Tick == 0 {
		c.Scan.Tick = Duration(100 * time.Millisecond)
	}
	if c.Scan.Interval == 0 {
		c.Scan.Interval = Duration(5 * time.Second)
	}
	if c.Scan.ScansPerReport == 0 {
		c.Scan.ScansPerReport = 10
	}
	if c.Scan.MaxPerScan == 0 {
		c.Scan.MaxPerScan = 20
	}
	if c.Scan.SpoolMaxAge == 0 {
		c.Scan.SpoolMaxAge = Duration(30 * time.Second)
	}
	if c.Store.QueueDepth == 0 {
		c.Store.QueueDepth = 16
	}
	if c.Location.AcquireTimeout == 0 {
		c.Location.AcquireTimeout = Duration(90 * time.Second)
	}
	if c.Location.PollInterval == 0 {
		c.Location.PollInterval = Duration(2 * time.Second)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration for operator mistakes that are
// cheaper to reject at startup than to debug in the field.
func (c *Config) Validate() error {
	if c.GroupID == "" {
		return fmt.Errorf("group_id is required")
	}
	if c.Store.URL == "" {
		return fmt.Errorf("store.url is required")
	}
	if c.Scan.Interval < c.Scan.Tick {
		return fmt.Errorf("scan.interval (%s) must be at least scan.tick (%s)",
			c.Scan.Interval.Std(), c.Scan.Tick.Std())
	}
	if c.Scan.ScansPerReport < 1 {
		return fmt.Errorf("scan.scans_per_report must be at least 1")
	}
	if c.Scan.MaxPerScan < 1 {
		return fmt.Errorf("scan.max_per_scan must be at least 1")
	}
	if !c.Scan.Simulate && c.Scan.SpoolPath == "" {
		return fmt.Errorf("scan.spool_path is required unless scan.simulate is set")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}
