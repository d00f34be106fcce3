// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package devlog

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// DefaultMaxSegmentBytes is the rotation threshold for the active
// segment. Sized for small flash media.
const DefaultMaxSegmentBytes = 4 * 1024 * 1024

// Log is the append-only device log. A nil *Log and a *Log whose
// medium failed to open behave identically: every method is a no-op.
// Not safe for concurrent use; owned by the engine loop.
type Log struct {
	path            string
	file            *os.File
	size            int64
	maxSegmentBytes int64
	rotations       int
}

// Open opens (or creates) the device log at path. Open never returns
// an error: an unusable medium yields a disabled log whose writes are
// silently dropped, because the measurement core must function
// identically with logging unavailable.
func Open(path string, maxSegmentBytes int64) *Log {
	if maxSegmentBytes <= 0 {
		maxSegmentBytes = DefaultMaxSegmentBytes
	}
	log := &Log{path: path, maxSegmentBytes: maxSegmentBytes}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return log
	}
	if info, err := file.Stat(); err == nil {
		log.size = info.Size()
	}
	log.file = file
	return log
}

// Enabled reports whether the log medium is usable. Informational
// only; callers never need to branch on it.
func (l *Log) Enabled() bool { return l != nil && l.file != nil }

// Printf appends one timestamped record: "[timestamp] message".
// Failures (including a disabled log) are silently dropped.
func (l *Log) Printf(timestamp, format string, args ...any) {
	if !l.Enabled() {
		return
	}

	record := fmt.Sprintf("["+timestamp+"] "+format+"\n", args...)
	n, err := io.WriteString(l.file, record)
	l.size += int64(n)
	if err != nil {
		// Write failure marks the medium dead for the rest of the
		// process; a flaky card will not stall the loop with retries.
		l.file.Close()
		l.file = nil
		return
	}

	if l.size >= l.maxSegmentBytes {
		l.rotate()
	}
}

// Close flushes and closes the active segment. Idempotent.
func (l *Log) Close() {
	if !l.Enabled() {
		return
	}
	l.file.Close()
	l.file = nil
}

// Rotations returns how many segments have been rotated out, for the
// status surface.
func (l *Log) Rotations() int {
	if l == nil {
		return 0
	}
	return l.rotations
}

// rotate moves the active segment aside, compresses it to
// <path>.<n>.zst, and starts a fresh segment. Any failure along the
// way disables the log rather than erroring.
func (l *Log) rotate() {
	l.file.Close()
	l.file = nil

	rotatedPath := fmt.Sprintf("%s.%d", l.path, l.rotations+1)
	if err := os.Rename(l.path, rotatedPath); err != nil {
		return
	}

	if compressSegment(rotatedPath, rotatedPath+".zst") == nil {
		os.Remove(rotatedPath)
	}

	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	l.file = file
	l.size = 0
	l.rotations++
}

// compressSegment zstd-compresses src into dst.
func compressSegment(src, dst string) error {
	input, err := os.Open(src)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer output.Close()

	encoder, err := zstd.NewWriter(output)
	if err != nil {
		return err
	}
	if _, err := io.Copy(encoder, input); err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}
