// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package hwid

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestHex(t *testing.T) {
	id := ID{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x42}
	if got := id.Hex(); got != "DEADBEEF0042" {
		t.Errorf("Hex() = %q, want %q", got, "DEADBEEF0042")
	}
}

func TestFromInterfacesSkipsLoopbackAndEmpty(t *testing.T) {
	interfaces := []net.Interface{
		{Name: "lo", Flags: net.FlagLoopback, HardwareAddr: net.HardwareAddr{1, 2, 3, 4, 5, 6}},
		{Name: "tun0"}, // no hardware address
		{Name: "wlan0", HardwareAddr: net.HardwareAddr{0xAA, 0xBB, 0xCC, 1, 2, 3}},
	}

	id, ok := FromInterfaces(interfaces)
	if !ok {
		t.Fatal("FromInterfaces found nothing")
	}
	if id.Hex() != "AABBCC010203" {
		t.Errorf("id = %s, want AABBCC010203", id.Hex())
	}
}

func TestFromInterfacesNoneQualify(t *testing.T) {
	interfaces := []net.Interface{
		{Name: "lo", Flags: net.FlagLoopback, HardwareAddr: net.HardwareAddr{1, 2, 3, 4, 5, 6}},
		{Name: "zero", HardwareAddr: net.HardwareAddr{0, 0, 0, 0, 0, 0}},
	}

	if _, ok := FromInterfaces(interfaces); ok {
		t.Error("FromInterfaces qualified an interface it should have skipped")
	}
}

func TestFromMachineIDStableAndLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine-id")
	if err := os.WriteFile(path, []byte("41c1b1e2a90d4c9f9b2f8d3e5a6b7c8d\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	first, err := fromMachineID(path)
	if err != nil {
		t.Fatalf("fromMachineID: %v", err)
	}
	second, err := fromMachineID(path)
	if err != nil {
		t.Fatalf("fromMachineID: %v", err)
	}

	if first != second {
		t.Errorf("derived identifier not stable: %s vs %s", first.Hex(), second.Hex())
	}
	if first[0]&0x02 == 0 {
		t.Error("derived identifier is not locally administered")
	}
	if first[0]&0x01 != 0 {
		t.Error("derived identifier is multicast")
	}
}

func TestFromMachineIDMissingFile(t *testing.T) {
	if _, err := fromMachineID(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("fromMachineID succeeded with no file")
	}
}

func TestCombinedID(t *testing.T) {
	id := ID{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	if got := CombinedID("BB-NYC-042", id); got != "BB-NYC-042_AABBCCDDEEFF" {
		t.Errorf("CombinedID = %q, want %q", got, "BB-NYC-042_AABBCCDDEEFF")
	}
}

func TestAccessKeyVariesPerBoot(t *testing.T) {
	first := AccessKey("BB-NYC-042_AABBCCDDEEFF", 1000)
	second := AccessKey("BB-NYC-042_AABBCCDDEEFF", 2000)

	if first == second {
		t.Error("access key identical across boot nonces")
	}
	if len(first) != 24 {
		t.Errorf("access key length = %d, want 24 hex digits", len(first))
	}
}
