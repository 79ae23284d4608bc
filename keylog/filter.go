// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package keylog

import "strings"

// exportableLabels is the closed set of NSS key log labels eligible
// for export: the TLS 1.2-era client random marker, the TLS 1.3
// handshake traffic secrets, the exporter secret, and the application
// traffic secrets. Lines with any other label are dropped.
var exportableLabels = []string{
	"CLIENT_RANDOM",
	"CLIENT_HANDSHAKE_TRAFFIC_SECRET",
	"SERVER_HANDSHAKE_TRAFFIC_SECRET",
	"EXPORTER_SECRET",
	"CLIENT_TRAFFIC_SECRET_0",
	"SERVER_TRAFFIC_SECRET_0",
}

// MatchLabel reports whether label names one of the known exportable
// secret categories. The comparison is case-insensitive. Pure
// function: no state, no side effects.
func MatchLabel(label string) bool {
	for _, known := range exportableLabels {
		if strings.EqualFold(label, known) {
			return true
		}
	}
	return false
}

// SplitLine separates a key log line into its leading label token and
// the remainder. The remainder is never parsed further: this package
// treats secret material as opaque text.
func SplitLine(line string) (label, rest string) {
	if space := strings.IndexByte(line, ' '); space >= 0 {
		return line[:space], line[space+1:]
	}
	return line, ""
}
