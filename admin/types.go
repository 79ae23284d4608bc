// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package admin

// Admin actions. Each request names exactly one.
const (
	// ActionStatus reports registry and keylog state.
	ActionStatus = "status"
	// ActionCollect runs one garbage-collection pass over stale
	// configuration generations.
	ActionCollect = "collect"
	// ActionReload reloads the configuration file and installs a new
	// generation, then collects.
	ActionReload = "reload"
)

// Request is one admin command.
type Request struct {
	Action string `cbor:"action"`
}

// Response is the daemon's answer. Error is set only when OK is
// false; the payload fields are set per action.
type Response struct {
	OK    bool   `cbor:"ok"`
	Error string `cbor:"error,omitempty"`

	// Status is set for ActionStatus.
	Status *Status `cbor:"status,omitempty"`

	// Collected is the number of generations destroyed, set for
	// ActionCollect and ActionReload.
	Collected int `cbor:"collected,omitempty"`
}

// Status is a point-in-time summary of the transport layer.
type Status struct {
	// Version is the running daemon's build version.
	Version string `cbor:"version"`

	// Generations is the configuration list length including the
	// active head.
	Generations int `cbor:"generations"`

	// StaleGenerations counts superseded generations still linked.
	StaleGenerations int `cbor:"stale_generations"`

	// HeadRefs is the connection count holding the active generation.
	HeadRefs int64 `cbor:"head_refs"`

	// Domains lists the TLS domains of the active generation.
	Domains []string `cbor:"domains"`

	// KeylogEnabled reports whether any secret-export channel is on.
	KeylogEnabled bool `cbor:"keylog_enabled"`
}
