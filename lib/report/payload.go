// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package report

// Document paths under the remote store, all rooted at the sensor's
// combined ID. These are the wire contract with the reporting
// backend; field names and casing are fixed.

func deviceInfoPath(combinedID string) string {
	return "/devices/" + combinedID + "/device_info"
}

func locationPath(combinedID string) string {
	return "/devices/" + combinedID + "/device_info/Location"
}

func dailyDataPath(combinedID, date string) string {
	return "/devices/" + combinedID + "/data/" + date
}

func dailyImpressionsPath(combinedID, date string) string {
	return dailyDataPath(combinedID, date) + "/daily_impressions"
}

// LocationDoc is the coordinate pair stored under device_info. The
// capitalized JSON keys are part of the backend contract.
type LocationDoc struct {
	Lat  string `json:"Lat"`
	Long string `json:"Long"`
}

// DeviceInfoDoc is published once per process lifetime, when the
// first trustworthy timestamp is available.
type DeviceInfoDoc struct {
	BillboardID string      `json:"billboard_id"`
	DeviceName  string      `json:"device_name"`
	Firmware    string      `json:"firmware"`
	MACAddress  string      `json:"mac_address"`
	SetupTime   string      `json:"setup_time"`
	Status      string      `json:"status"`
	Location    LocationDoc `json:"Location"`
}

// DailyDataDoc is the per-date impression document, rewritten whole
// on every report so a reader always sees a consistent snapshot.
type DailyDataDoc struct {
	BillboardID      string `json:"billboard_id"`
	Date             string `json:"date"`
	DailyImpressions int    `json:"daily_impressions"`
	LastUpdated      string `json:"last_updated"`
}
