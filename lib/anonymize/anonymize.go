// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package anonymize

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// FNV-1a 64-bit parameters.
const (
	fnvOffsetBasis uint64 = 0xcbf29ce484222325
	fnvPrime       uint64 = 0x100000001b3
)

// Fingerprint is the one-way fingerprint of a hardware identifier.
// It is equality-comparable and has no ordering semantics. The
// expected collision rate at 64 bits is negligible for audience
// measurement; the construction is deliberately non-cryptographic and
// makes no claims against adversarial preimage search.
type Fingerprint uint64

// String renders the fingerprint as 16 lowercase hex digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// Salt is the ephemeral per-process salt. It is generated once at
// startup, lives only in memory, and is never persisted or reported.
type Salt uint32

// NewSalt generates a fresh ephemeral salt. Entropy comes from the
// operating system's hardware-backed random source, mixed with a
// monotonic clock reading supplied by the caller (nanoseconds of
// uptime). The mix guards against a degenerate random source at early
// boot, when embedded systems have collected little entropy.
func NewSalt(monotonicNanos int64) (Salt, error) {
	var noise [4]byte
	if _, err := rand.Read(noise[:]); err != nil {
		return 0, fmt.Errorf("reading salt entropy: %w", err)
	}
	salt := binary.LittleEndian.Uint32(noise[:]) ^ uint32(monotonicNanos) ^ uint32(monotonicNanos>>32)
	return Salt(salt), nil
}

// Hash fingerprints a raw 6-byte hardware identifier under the given
// salt: FNV-1a over the 6 identifier bytes followed by the 4 salt
// bytes in little-endian order. Pure and deterministic for a fixed
// salt. The identifier is consumed by value and not retained.
func Hash(identifier [6]byte, salt Salt) Fingerprint {
	hash := fnvOffsetBasis
	for _, b := range identifier {
		hash ^= uint64(b)
		hash *= fnvPrime
	}

	var saltBytes [4]byte
	binary.LittleEndian.PutUint32(saltBytes[:], uint32(salt))
	for _, b := range saltBytes {
		hash ^= uint64(b)
		hash *= fnvPrime
	}

	return Fingerprint(hash)
}
