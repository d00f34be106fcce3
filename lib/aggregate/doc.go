// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package aggregate maintains the sensor's impression counters.
//
// Counters come in two lifetimes: cycle-scoped (reset after every
// report) and cumulative (reset only by process restart). The daily
// tally is a third lifetime: it survives restarts by resuming from
// the remote store and is replaced wholesale at day boundaries.
//
// An impression is one raw detection event. The daily tally counts
// impressions, not unique devices: the product measures gaze events,
// and deduplication exists to report audience composition per cycle,
// not to de-duplicate the daily total.
package aggregate
