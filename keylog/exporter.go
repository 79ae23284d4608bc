// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package keylog

import (
	"log/slog"
	"strings"
)

// Config carries the keylog settings from the configuration file.
type Config struct {
	// Mode selects the export channels.
	Mode Mode
	// FilePath is the keylog file, required when Mode has the file
	// bit.
	FilePath string
	// PeerAddress is the UDP collector ("host:port" with optional
	// ";transport=udp"), required when Mode has the peer bit.
	PeerAddress string
}

// Exporter filters key log lines and fans them out to the enabled
// channels. It implements io.Writer so it can be assigned to
// tls.Config.KeyLogWriter; the TLS stack then hands it one
// newline-terminated line per exported secret.
type Exporter struct {
	mode   Mode
	file   *FileChannel
	peer   *PeerChannel
	logger *slog.Logger
}

// NewExporter creates an exporter with both channels constructed but
// not yet initialized.
func NewExporter(config Config, logger *slog.Logger) *Exporter {
	return &Exporter{
		mode:   config.Mode,
		file:   NewFileChannel(config.Mode, config.FilePath, logger),
		peer:   NewPeerChannel(config.Mode, config.PeerAddress, logger),
		logger: logger,
	}
}

// Init initializes the enabled channels. The first channel error is
// returned so the daemon can refuse to start with a half-configured
// export; when export is off entirely, Init is a no-op success.
func (e *Exporter) Init() error {
	if err := e.file.Init(); err != nil {
		return err
	}
	if err := e.peer.Init(); err != nil {
		return err
	}
	return nil
}

// Enabled reports whether any export channel is switched on.
func (e *Exporter) Enabled() bool {
	return e.mode.FileActive() || e.mode.PeerActive()
}

// Export delivers one key log line to every enabled channel, if its
// label is exportable. Channel failures are logged inside the
// channels and do not stop the fan-out: a broken file must not
// silence the peer, and vice versa.
func (e *Exporter) Export(line string) {
	label, _ := SplitLine(line)
	if !MatchLabel(label) {
		return
	}

	e.logger.Debug("exporting keylog line",
		"label", label,
		"digest", Digest(line),
	)

	// Errors are deliberately dropped here: each channel has already
	// logged its own failure, and export is best-effort by contract.
	_ = e.file.Write(line)
	_ = e.peer.Send(line)
}

// Write implements io.Writer for tls.Config.KeyLogWriter. The input
// is split into lines and each is exported. Write always reports full
// success: secret export must never fail a handshake.
func (e *Exporter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			e.Export(line)
		}
	}
	return len(p), nil
}

// Close releases channel resources (the cached peer socket).
func (e *Exporter) Close() error {
	return e.peer.Close()
}
