// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwid establishes the sensor's own identity.
//
// The 6-byte hardware identifier here names the sensor device itself,
// not an audience member, so it is deliberately NOT anonymized: it is
// half of the combined ID under which the device publishes its
// documents. When no physical interface exposes a usable address, a
// stable locally-administered identifier is derived from the
// machine-id so the device keeps the same remote identity across
// restarts.
package hwid
