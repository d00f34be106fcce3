// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// trafilytics-sensor is the audience measurement daemon. It polls an
// observation source on a fixed cadence, anonymizes every observed
// identifier, deduplicates within a two-generation window, and
// publishes impression reports to the remote document store. A
// control socket serves operational counters to trafilytics-status.
package main
