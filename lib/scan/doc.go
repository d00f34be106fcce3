// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package scan defines the ambient observation source consumed by the
// sensor engine.
//
// The physical radio driver lives outside this repository; the engine
// depends only on the Source interface. A driver failure is a
// distinguishable error (ErrScanFailed), never conflated with an
// empty batch: zero observations is a normal result for a quiet
// environment.
//
// SimSource is a deterministic, seeded generator of plausible
// observation traffic. It backs the sensor's --simulate mode and the
// engine's tests.
package scan
