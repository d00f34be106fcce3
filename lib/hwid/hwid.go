// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package hwid

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

// ID is the sensor's 6-byte hardware identifier.
type ID [6]byte

// Hex renders the identifier as 12 uppercase hex digits with no
// separators, the format used in combined IDs and the device-info
// document.
func (id ID) Hex() string {
	return fmt.Sprintf("%02X%02X%02X%02X%02X%02X", id[0], id[1], id[2], id[3], id[4], id[5])
}

// Read determines the sensor's hardware identifier: the address of
// the first physical non-loopback interface, or a machine-id-derived
// fallback when no interface qualifies.
func Read() (ID, error) {
	interfaces, err := net.Interfaces()
	if err == nil {
		if id, ok := FromInterfaces(interfaces); ok {
			return id, nil
		}
	}
	return fromMachineID("/etc/machine-id")
}

// FromInterfaces picks the identifier from an interface list: the
// first interface that is not loopback and carries a 6-byte
// non-zero hardware address. Returns false when none qualifies.
func FromInterfaces(interfaces []net.Interface) (ID, bool) {
	var zero [6]byte
	for _, networkInterface := range interfaces {
		if networkInterface.Flags&net.FlagLoopback != 0 {
			continue
		}
		address := networkInterface.HardwareAddr
		if len(address) != 6 || bytes.Equal(address, zero[:]) {
			continue
		}
		var id ID
		copy(id[:], address)
		return id, true
	}
	return ID{}, false
}

// fromMachineID derives a stable locally-administered identifier from
// the machine-id file. The derived identifier has the local bit set
// and the multicast bit clear so it can never collide with a real
// burned-in address.
func fromMachineID(path string) (ID, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ID{}, fmt.Errorf("no usable network interface and no machine-id: %w", err)
	}
	digest := blake3.Sum256([]byte("trafilytics-hwid:" + strings.TrimSpace(string(content))))

	var id ID
	copy(id[:], digest[:6])
	id[0] |= 0x02 // locally administered
	id[0] &^= 0x01
	return id, nil
}

// CombinedID joins the configured device-group identifier with the
// hardware identifier: "<group>_<HEX>". This is the key under which
// all of the device's remote documents live.
func CombinedID(group string, id ID) string {
	return group + "_" + id.Hex()
}

// AccessKey derives the device's provisioning access key from its
// combined ID and a per-boot nonce. The key authenticates dashboard
// QR-code access to this device's documents; it does not protect
// audience data (there is none to protect).
func AccessKey(combinedID string, bootNanos int64) string {
	hasher := blake3.New()
	fmt.Fprintf(hasher, "%s:%d", combinedID, bootNanos)
	return fmt.Sprintf("%x", hasher.Sum(nil)[:12])
}
