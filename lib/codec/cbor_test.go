// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{
		"b": 2,
		"a": 1,
		"c": "three",
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding produced different bytes:\n%x\n%x", first, second)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	encoded, err := Marshal(map[string]any{
		"known":   "value",
		"unknown": 42,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded struct {
		Known string `cbor:"known"`
	}
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Known != "value" {
		t.Errorf("Known = %q, want %q", decoded.Known, "value")
	}
}

func TestUnmarshalAnyUsesStringKeys(t *testing.T) {
	encoded, err := Marshal(map[string]any{"key": "value"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	asMap, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if asMap["key"] != "value" {
		t.Errorf("decoded[key] = %v, want %q", asMap["key"], "value")
	}
}

func TestStreamRoundTrip(t *testing.T) {
	type payload struct {
		Name  string `cbor:"name"`
		Count int    `cbor:"count"`
	}

	var buffer bytes.Buffer
	if err := NewEncoder(&buffer).Encode(payload{Name: "sensor", Count: 7}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded payload
	if err := NewDecoder(&buffer).Decode(&decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Name != "sensor" || decoded.Count != 7 {
		t.Errorf("decoded = %+v, want {sensor 7}", decoded)
	}
}
