// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package report owns the sensor's measurement cycle: it folds each
// observation batch through the anonymizer and the deduplication
// window, accumulates counters, and every K-th batch composes and
// publishes a report.
//
// The scheduler is the sole owner of all mutable measurement state
// (the generation window, the counters, the stored date). Every
// method is called from the engine's single polling loop, so the
// package uses no locking. Publishing is fire-and-forget: a report
// cycle never waits for, or retries, a remote write.
package report
