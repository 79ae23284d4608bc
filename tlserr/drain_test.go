// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package tlserr

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDrainEmptiesQueue(t *testing.T) {
	queue := NewRingQueue(8)
	queue.Push(errors.New("handshake alert from previous connection"))
	queue.Push(errors.New("stale session error"))

	if drained := Drain(queue, testLogger()); drained != 2 {
		t.Errorf("Drain = %d, want 2", drained)
	}
	if queue.Len() != 0 {
		t.Errorf("Len after drain = %d, want 0", queue.Len())
	}
}

func TestDrainEmptyQueueIsNoOp(t *testing.T) {
	queue := NewRingQueue(8)
	if drained := Drain(queue, testLogger()); drained != 0 {
		t.Errorf("Drain on empty queue = %d, want 0", drained)
	}
	// Idempotent.
	if drained := Drain(queue, testLogger()); drained != 0 {
		t.Errorf("repeated Drain = %d, want 0", drained)
	}
}

func TestRingQueueFIFO(t *testing.T) {
	queue := NewRingQueue(8)
	first := errors.New("first")
	second := errors.New("second")
	queue.Push(first)
	queue.Push(second)

	got, ok := queue.PopError()
	if !ok || got != first {
		t.Errorf("PopError = (%v, %t), want (first, true)", got, ok)
	}
	got, ok = queue.PopError()
	if !ok || got != second {
		t.Errorf("PopError = (%v, %t), want (second, true)", got, ok)
	}
	if _, ok := queue.PopError(); ok {
		t.Error("PopError on empty queue reported ok")
	}
}

func TestRingQueueEvictsOldest(t *testing.T) {
	queue := NewRingQueue(2)
	queue.Push(errors.New("oldest"))
	queue.Push(errors.New("middle"))
	queue.Push(errors.New("newest"))

	got, _ := queue.PopError()
	if got == nil || got.Error() != "middle" {
		t.Errorf("first pop = %v, want middle (oldest evicted)", got)
	}
}

func TestRingQueueIgnoresNil(t *testing.T) {
	queue := NewRingQueue(2)
	queue.Push(nil)
	if queue.Len() != 0 {
		t.Errorf("Len after nil push = %d, want 0", queue.Len())
	}
}

func TestConcurrentPushDrain(t *testing.T) {
	queue := NewRingQueue(64)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				queue.Push(errors.New("deferred handshake error"))
			}
		}()
	}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Drain(queue, testLogger())
			}
		}()
	}
	wg.Wait()

	Drain(queue, testLogger())
	if queue.Len() != 0 {
		t.Errorf("Len after final drain = %d, want 0", queue.Len())
	}
}
