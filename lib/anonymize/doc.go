// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package anonymize converts raw 6-byte wireless hardware identifiers
// into non-reversible 64-bit fingerprints.
//
// Fingerprints mix a process-lifetime ephemeral salt into an FNV-1a
// hash of the identifier. Within one process lifetime the mapping is
// deterministic, which is what makes deduplication possible; across
// restarts the salt changes, so the same physical device produces an
// unlinkable fingerprint and no cross-session tracking is possible.
//
// The raw identifier must never escape the scope of the Hash call.
// Nothing in this package (or the rest of the sensor) stores,
// transmits, or logs raw identifiers.
package anonymize
