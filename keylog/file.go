// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package keylog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// ErrNoFilePath is returned by FileChannel.Init when the mode requests
// the file channel but no path is configured. The channel stays
// disabled; this is a configuration error, not a runtime one.
var ErrNoFilePath = errors.New("keylog: file channel requested but no file path configured")

// FileChannel appends key log lines to a local file. It is disabled
// until Init succeeds; a disabled channel accepts writes as silent
// no-ops so callers need no mode checks on the hot path.
//
// Every write opens the file in append mode, writes one line, and
// closes it again. Holding no long-lived handle is deliberate:
// external log rotation (rename or truncate) takes effect
// transparently between writes.
type FileChannel struct {
	mode   Mode
	path   string
	logger *slog.Logger

	// mu serializes writes process-wide and is held only for the
	// duration of one open+write+close.
	mu          sync.Mutex
	initialized bool
}

// NewFileChannel creates a file channel for the given mode and path.
// The channel does nothing until Init is called.
func NewFileChannel(mode Mode, path string, logger *slog.Logger) *FileChannel {
	return &FileChannel{mode: mode, path: path, logger: logger}
}

// Init enables the channel when the mode selects it. No-op success
// when export or the file bit is off, and when already initialized.
// Returns ErrNoFilePath when the file bit is set without a path.
func (c *FileChannel) Init() error {
	if !c.mode.FileActive() {
		return nil
	}
	if c.path == "" {
		return ErrNoFilePath
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = true
	return nil
}

// Write appends one line, newline-terminated, to the keylog file.
// No-op success when the channel is not initialized. An open or write
// failure is logged and returned; the lock is released either way and
// the channel remains usable for later calls.
func (c *FileChannel) Write(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}

	file, err := os.OpenFile(c.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		c.logger.Error("failed to open keylog file", "path", c.path, "error", err)
		return fmt.Errorf("keylog: opening %s: %w", c.path, err)
	}

	_, writeErr := fmt.Fprintf(file, "%s\n", line)
	closeErr := file.Close()
	if writeErr != nil {
		c.logger.Error("failed to write keylog line", "path", c.path, "error", writeErr)
		return fmt.Errorf("keylog: writing to %s: %w", c.path, writeErr)
	}
	if closeErr != nil {
		c.logger.Error("failed to close keylog file", "path", c.path, "error", closeErr)
		return fmt.Errorf("keylog: closing %s: %w", c.path, closeErr)
	}
	return nil
}
