// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package shmem

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrArenaFull is returned when a duplication request does not fit in
// the remaining arena space. The arena is left untouched: no partial
// copy is ever visible.
var ErrArenaFull = errors.New("shmem: arena full")

// Arena is a fixed-size shared memory region with a bump allocator.
// All methods are safe for concurrent use.
type Arena struct {
	mu     sync.Mutex
	data   []byte
	next   int
	closed bool
}

// String is a handle to a NUL-terminated string stored in an Arena.
// The handle stays valid until the arena is closed; the arena never
// frees individual strings.
type String struct {
	data []byte
}

// NewArena maps a shared anonymous region of the given size. The
// region is MAP_SHARED so it remains a single shared mapping across
// fork-based worker handoff in the embedding proxy.
func NewArena(size int) (*Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shmem: arena size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("shmem: mmap failed: %w", err)
	}

	return &Arena{data: data}, nil
}

// DupString copies value into the arena as a byte-exact NUL-terminated
// string and returns a handle to the copy. Returns ErrArenaFull when
// the copy does not fit; nothing is written in that case.
func (a *Arena) DupString(value string) (*String, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, fmt.Errorf("shmem: arena is closed")
	}

	needed := len(value) + 1
	if a.next+needed > len(a.data) {
		return nil, ErrArenaFull
	}

	region := a.data[a.next : a.next+needed]
	copy(region, value)
	region[len(value)] = 0
	a.next += needed

	return &String{data: region}, nil
}

// DupOptional duplicates value when it is present. A nil value is not
// an error: the result is a nil handle and success, matching the
// "absent input, no output" contract of optional configuration
// strings.
func (a *Arena) DupOptional(value *string) (*String, error) {
	if value == nil {
		return nil, nil
	}
	return a.DupString(*value)
}

// Remaining returns the number of unallocated bytes left in the arena.
func (a *Arena) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.data) - a.next
}

// Close unmaps the arena. All handles into it become invalid. Close is
// idempotent.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	data := a.data
	a.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("shmem: munmap failed: %w", err)
	}
	return nil
}

// Bytes returns the stored bytes including the NUL terminator. The
// slice points directly into the shared region; treat it as read-only.
func (s *String) Bytes() []byte {
	return s.data
}

// String returns the stored text without the NUL terminator.
func (s *String) String() string {
	return string(s.data[:len(s.data)-1])
}

// Len returns the string length excluding the NUL terminator.
func (s *String) Len() int {
	return len(s.data) - 1
}
