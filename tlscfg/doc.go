// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package tlscfg manages the lifecycle of hot-swappable TLS domain
// configuration snapshots shared by many concurrent connections.
//
// Configuration reloads install a new generation at the head of a
// registry; connections check out the head for their lifetime and
// check it back in on teardown. Superseded generations linger until no
// connection references them, then a collector unlinks and releases
// them. Checkout and checkin are lock-free atomic operations on the
// connection hot path; only topology changes (install, collect) take
// the registry lock.
package tlscfg
