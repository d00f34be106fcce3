// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package devlog is the sensor's durable device log: an append-only
// text file of timestamped one-line records, the field-debugging trail
// for a device nobody can attach a debugger to.
//
// The log is strictly best-effort. A missing or failing storage
// medium degrades every operation to a silent no-op; nothing here may
// ever block or fail the measurement core. When the active segment
// exceeds its size limit it is rotated aside and compressed with
// zstd, keeping bounded use of a small storage medium.
package devlog
