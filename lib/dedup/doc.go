// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package dedup classifies observation fingerprints against a
// two-generation sliding window.
//
// The window remembers exactly two report cycles of fingerprints: the
// cycle being accumulated and the one before it. Anything older is
// forgotten. This is a privacy property, not a cache-sizing
// compromise: the sensor deliberately has bounded memory of recency
// and never builds a permanent registry of observed devices. A
// fingerprint absent for one full cycle is counted as new again when
// it reappears.
package dedup
