// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package tlscfg

import (
	"sync"
	"sync/atomic"
)

// Generation is one versioned configuration snapshot. Connections hold
// a reference to the generation that was active when they were
// accepted, keeping its payload alive across later reloads.
//
// The reference count is the only field mutated outside the registry
// lock, and only through atomic add. The next link is written solely
// by Install and Collect while holding the lock.
type Generation[P any] struct {
	payload P
	refs    atomic.Int64
	next    *Generation[P]
}

// Payload returns the configuration snapshot carried by this
// generation. The registry never inspects it.
func (g *Generation[P]) Payload() P {
	return g.payload
}

// Checkin releases one reference to the generation. It never unlinks
// the node — removal is the collector's job. Each Checkin must pair
// with exactly one prior Checkout.
func (g *Generation[P]) Checkin() {
	g.refs.Add(-1)
}

// Refs returns the current reference count. Meaningful as an exact
// value only for the head generation or during a locked sweep; other
// reads are instantaneous snapshots for diagnostics.
func (g *Generation[P]) Refs() int64 {
	return g.refs.Load()
}

// Registry owns an ordered, singly linked list of generations. The
// first element is the active generation: it is the only checkout
// source and is never collected, even at a zero reference count.
type Registry[P any] struct {
	// mu guards list topology: the next links and the head swap in
	// Install. Reference counts are deliberately not covered.
	mu   sync.Mutex
	head atomic.Pointer[Generation[P]]

	// release is called by Collect for each destroyed generation,
	// with the registry lock held. May be nil.
	release func(P)
}

// NewRegistry creates a registry whose active generation carries
// initial. release, when non-nil, is invoked on the payload of every
// generation the collector destroys.
func NewRegistry[P any](initial P, release func(P)) *Registry[P] {
	registry := &Registry[P]{release: release}
	registry.head.Store(&Generation[P]{payload: initial})
	return registry
}

// Checkout acquires a reference to the active generation and returns
// it. It never blocks.
//
// The load-increment-verify loop closes the window between reading the
// head and incrementing its count: if a reload swapped the head in
// between, the stale increment is undone and the checkout retried
// against the new head. A generation can therefore never gain a
// reference after ceasing to be head, which is what lets Collect trust
// a zero count observed during its locked sweep. A head pointer, once
// replaced, is never reinstalled, so the verify cannot be fooled.
func (r *Registry[P]) Checkout() *Generation[P] {
	for {
		generation := r.head.Load()
		generation.refs.Add(1)
		if r.head.Load() == generation {
			return generation
		}
		generation.refs.Add(-1)
	}
}

// Install links a new generation carrying payload at the head of the
// list. The previous head becomes collectable once its last reference
// is checked in.
func (r *Registry[P]) Install(payload P) {
	r.mu.Lock()
	defer r.mu.Unlock()

	generation := &Generation[P]{payload: payload}
	generation.next = r.head.Load()
	r.head.Store(generation)
}

// Collect walks the list after the head and destroys every generation
// whose reference count reads zero at the moment of inspection,
// preserving the relative order of survivors. Returns the number of
// generations destroyed.
//
// A zero count observed here is stable: non-head generations cannot
// gain references (see Checkout), and a concurrent Checkin only ever
// decreases a count. Concurrent Collect calls serialize on the
// registry lock; each pass is individually correct and idempotent. The
// head is always skipped regardless of its count. Collect cannot fail.
func (r *Registry[P]) Collect() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	collected := 0
	previous := r.head.Load()
	current := previous.next
	for current != nil {
		next := current.next
		if current.refs.Load() == 0 {
			// No connection references this snapshot anymore.
			previous.next = next
			current.next = nil
			if r.release != nil {
				r.release(current.payload)
			}
			collected++
		} else {
			previous = current
		}
		current = next
	}
	return collected
}

// Stats is a point-in-time summary of the registry for the admin
// surface.
type Stats struct {
	// Generations is the total list length including the head.
	Generations int
	// Stale is the number of superseded (non-head) generations still
	// linked, referenced or not.
	Stale int
	// HeadRefs is the reference count of the active generation.
	HeadRefs int64
}

// Stats returns a consistent snapshot of list shape, taken under the
// registry lock.
func (r *Registry[P]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	head := r.head.Load()
	stats := Stats{HeadRefs: head.refs.Load()}
	for generation := head; generation != nil; generation = generation.next {
		stats.Generations++
	}
	stats.Stale = stats.Generations - 1
	return stats
}
