// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// State records why a restart was initiated. Written just before the
// re-exec, read by the successor process at startup.
type State struct {
	// Reason is a short operator-readable cause, e.g. "uptime limit".
	Reason string `json:"reason"`

	// PID is the process that initiated the restart.
	PID int `json:"pid"`

	// Uptime is how long that process had been running.
	Uptime string `json:"uptime"`

	// Scans and Reports snapshot the lifetime counters at restart,
	// for continuity in operator logs. The measurement state itself
	// is intentionally not persisted.
	Scans   uint32 `json:"scans"`
	Reports uint32 `json:"reports"`

	// Timestamp is when the restart was initiated. Check uses it to
	// discard stale files.
	Timestamp time.Time `json:"timestamp"`
}

// Write atomically writes the restart state file. The file is written
// to a temporary path in the same directory, fsynced, and renamed
// into place, so a crash mid-write leaves either the old state or the
// new, never a torn file.
//
// The file is created with mode 0600. The parent directory must
// already exist.
func Write(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling restart state: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary restart state file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary restart state file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary restart state file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary restart state file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming restart state file into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Read reads and parses a restart state file. When the file does not
// exist, the returned error wraps os.ErrNotExist.
func Read(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parsing restart state file %s: %w", path, err)
	}
	return state, nil
}

// Check reads the restart state file and verifies it is recent.
// Returns the state and true when the file exists and its Timestamp
// is within maxAge of now; a missing or stale file yields a zero
// State and false. Other errors (permissions, corrupt JSON) are
// returned as-is so the caller can distinguish "no restart" from
// "state exists but unreadable".
func Check(path string, maxAge time.Duration) (State, bool, error) {
	state, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, err
	}

	if time.Since(state.Timestamp) > maxAge {
		return State{}, false, nil
	}

	return state, true, nil
}

// Clear removes the restart state file. Idempotent.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing restart state file: %w", err)
	}
	return nil
}

// Reexec replaces the current process image with its own executable,
// preserving arguments and environment. It only returns on failure.
func Reexec() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving own executable: %w", err)
	}
	if err := unix.Exec(executable, os.Args, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", executable, err)
	}
	return nil
}
