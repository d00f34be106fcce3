// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the sensor's YAML configuration. The config
// file is located via the --config flag or the TRAFILYTICS_CONFIG
// environment variable; there is no search path and no built-in
// fallback file.
package config
