// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package ctlsock implements the sensor's local control socket: a
// CBOR request-response protocol over a Unix socket, one request per
// connection. The sensor serves operational counters on it; the
// status CLI is the client.
//
// The socket is reachable only through the local filesystem, so there
// is no authentication layer. Nothing privacy-relevant crosses it:
// handlers expose counters, never fingerprints or identifiers.
package ctlsock
