// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package store is the client for the hierarchical JSON document
// store that holds per-sensor device documents and daily impression
// tallies.
//
// Reads are synchronous. Writes are enqueued and shipped by a
// background worker; the outcome of each write is delivered on a
// completions channel keyed by a caller-supplied task identifier.
// Delivery is at-most-once: a failed write is logged and reported on
// the completions channel, never retried.
//
// Authentication happens once at startup. A rejected credential
// permanently disables publishing for the process lifetime; the
// sensor keeps measuring, it just stops reporting.
package store
