// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package keylog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileWriteBeforeInitIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keylog")
	channel := NewFileChannel(ModeEnabled|ModeFile, path, testLogger())

	if err := channel.Write("CLIENT_RANDOM aa bb"); err != nil {
		t.Fatalf("Write before Init: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("keylog file exists before Init (stat err = %v)", err)
	}
}

func TestFileInitWithoutPath(t *testing.T) {
	channel := NewFileChannel(ModeEnabled|ModeFile, "", testLogger())

	if err := channel.Init(); !errors.Is(err, ErrNoFilePath) {
		t.Fatalf("Init without path = %v, want ErrNoFilePath", err)
	}
	// The channel stays disabled: writes are silent no-ops.
	if err := channel.Write("CLIENT_RANDOM aa bb"); err != nil {
		t.Errorf("Write on disabled channel = %v, want nil", err)
	}
}

func TestFileInitDisabledModes(t *testing.T) {
	// File bit without the enabled bit, and vice versa: both no-op.
	for _, mode := range []Mode{0, ModeFile, ModeEnabled, ModeEnabled | ModePeer} {
		channel := NewFileChannel(mode, "", testLogger())
		if err := channel.Init(); err != nil {
			t.Errorf("Init with mode %b = %v, want nil", mode, err)
		}
	}
}

func TestFileInitIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keylog")
	channel := NewFileChannel(ModeEnabled|ModeFile, path, testLogger())

	if err := channel.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := channel.Init(); err != nil {
		t.Fatalf("second Init: %v", err)
	}
}

func TestFileWriteAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keylog")
	channel := NewFileChannel(ModeEnabled|ModeFile, path, testLogger())
	if err := channel.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := channel.Write("CLIENT_RANDOM aa bb"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := channel.Write("EXPORTER_SECRET cc dd"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "CLIENT_RANDOM aa bb\nEXPORTER_SECRET cc dd\n"
	if string(data) != want {
		t.Errorf("file contents = %q, want %q", data, want)
	}
}

func TestFileWriteUnderContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keylog")
	channel := NewFileChannel(ModeEnabled|ModeFile, path, testLogger())
	if err := channel.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				line := fmt.Sprintf("CLIENT_RANDOM writer%d-%d secret", w, i)
				if err := channel.Write(line); err != nil {
					t.Errorf("Write: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != writers*perWriter {
		t.Fatalf("line count = %d, want %d", len(lines), writers*perWriter)
	}
	// The mutex serializes whole lines: none may be interleaved.
	for _, line := range lines {
		if !strings.HasPrefix(line, "CLIENT_RANDOM writer") || !strings.HasSuffix(line, " secret") {
			t.Fatalf("interleaved or corrupt line: %q", line)
		}
	}
}

// TestFileRotation verifies the reopen-per-write contract: renaming
// the file between writes starts a fresh file at the configured path.
func TestFileRotation(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "keylog")
	channel := NewFileChannel(ModeEnabled|ModeFile, path, testLogger())
	if err := channel.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := channel.Write("CLIENT_RANDOM before rotation"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rotated := filepath.Join(directory, "keylog.1")
	if err := os.Rename(path, rotated); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	if err := channel.Write("CLIENT_RANDOM after rotation"); err != nil {
		t.Fatalf("Write after rotation: %v", err)
	}

	before, err := os.ReadFile(rotated)
	if err != nil {
		t.Fatalf("ReadFile(rotated): %v", err)
	}
	if string(before) != "CLIENT_RANDOM before rotation\n" {
		t.Errorf("rotated contents = %q", before)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(current): %v", err)
	}
	if string(after) != "CLIENT_RANDOM after rotation\n" {
		t.Errorf("current contents = %q", after)
	}
}

func TestFileWriteOpenFailure(t *testing.T) {
	// A directory at the keylog path makes the open fail.
	path := t.TempDir()
	channel := NewFileChannel(ModeEnabled|ModeFile, path, testLogger())
	if err := channel.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := channel.Write("CLIENT_RANDOM aa bb"); err == nil {
		t.Fatal("Write to unopenable path succeeded, want error")
	}

	// The failure is per-call: the channel remains usable.
	if err := channel.Write("CLIENT_RANDOM aa bb"); err == nil {
		t.Fatal("second Write succeeded, want error")
	}
}
