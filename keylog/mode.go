// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package keylog

import (
	"fmt"
	"strings"
)

// Mode selects which export channels are active. Bits combine: a mode
// can carry both the file and the peer channel.
type Mode uint8

const (
	// ModeEnabled switches secret export on. Channel bits without
	// this bit leave their channels dormant.
	ModeEnabled Mode = 1 << iota
	// ModeFile selects the append-only keylog file channel.
	ModeFile
	// ModePeer selects the UDP peer channel.
	ModePeer
)

// FileActive reports whether the file channel should initialize.
func (m Mode) FileActive() bool {
	return m&ModeEnabled != 0 && m&ModeFile != 0
}

// PeerActive reports whether the peer channel should initialize.
func (m Mode) PeerActive() bool {
	return m&ModeEnabled != 0 && m&ModePeer != 0
}

// ParseMode parses a comma-separated channel list from configuration.
// "file", "peer", and "file,peer" select channels and switch export
// on; empty and "none" disable export entirely.
func ParseMode(value string) (Mode, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return 0, nil
	}

	var mode Mode
	for _, token := range strings.Split(trimmed, ",") {
		switch strings.ToLower(strings.TrimSpace(token)) {
		case "file":
			mode |= ModeEnabled | ModeFile
		case "peer":
			mode |= ModeEnabled | ModePeer
		default:
			return 0, fmt.Errorf("keylog: unknown mode token %q (want \"file\", \"peer\", or \"none\")", token)
		}
	}
	return mode, nil
}
