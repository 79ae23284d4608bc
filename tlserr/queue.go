// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package tlserr

import "sync"

// RingQueue is a bounded FIFO error queue. When full, the oldest
// entry is dropped to make room — a stale residual error is worth
// less than a fresh one. Safe for concurrent use.
type RingQueue struct {
	mu       sync.Mutex
	entries  []error
	capacity int
}

// NewRingQueue creates a queue holding at most capacity errors.
// Panics if capacity is not positive.
func NewRingQueue(capacity int) *RingQueue {
	if capacity <= 0 {
		panic("tlserr: ring queue capacity must be positive")
	}
	return &RingQueue{capacity: capacity}
}

// Push appends an error to the queue, evicting the oldest entry when
// the queue is full. Nil errors are ignored.
func (q *RingQueue) Push(err error) {
	if err == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == q.capacity {
		q.entries = q.entries[1:]
	}
	q.entries = append(q.entries, err)
}

// PopError removes and returns the oldest pending error. Reports
// false when the queue is empty.
func (q *RingQueue) PopError() (error, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil, false
	}
	oldest := q.entries[0]
	q.entries = q.entries[1:]
	return oldest, true
}

// Len returns the number of pending errors.
func (q *RingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
