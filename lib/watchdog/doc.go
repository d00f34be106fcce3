// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package watchdog tracks the sensor's planned restarts. The sensor
// re-execs itself when its uptime limit lapses, deliberately
// discarding all in-memory measurement state; this package records
// why, so the successor process can log the restart reason and
// operators can tell a planned restart from a crash loop.
//
// The state file is written atomically (write to temporary file,
// fsync, rename into place, fsync parent directory) so a reader never
// sees a partial or corrupt state. [Check] ignores files older than a
// configurable maximum age, so an ancient leftover from an unrelated
// boot is not mistaken for a fresh restart.
package watchdog
