// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type sample struct {
	Action string `cbor:"action"`
	Count  int    `cbor:"count,omitempty"`
}

func TestMarshalDeterministic(t *testing.T) {
	value := sample{Action: "collect", Count: 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding produced different bytes: %x vs %x", first, second)
	}

	var decoded sample
	if err := Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != value {
		t.Errorf("round trip = %+v, want %+v", decoded, value)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	data, err := Marshal(map[string]any{
		"action": "status",
		"future": "field from a newer daemon",
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if decoded.Action != "status" {
		t.Errorf("Action = %q, want %q", decoded.Action, "status")
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buffer bytes.Buffer

	encoder := NewEncoder(&buffer)
	for _, action := range []string{"status", "collect", "reload"} {
		if err := encoder.Encode(sample{Action: action}); err != nil {
			t.Fatalf("Encode(%q): %v", action, err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, want := range []string{"status", "collect", "reload"} {
		var decoded sample
		if err := decoder.Decode(&decoded); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded.Action != want {
			t.Errorf("Action = %q, want %q", decoded.Action, want)
		}
	}
}
