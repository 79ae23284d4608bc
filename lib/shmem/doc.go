// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package shmem provides a shared-memory string arena for
// configuration data that must outlive any single worker and stay
// visible across fork-style process handoff.
//
// The arena is one anonymous MAP_SHARED mmap region allocated at
// startup, carved out by a bump allocator. Strings copied into it are
// NUL-terminated byte-exact copies, so C-side consumers of the region
// (the embedding proxy core) can read them without length prefixes.
// The region lives outside the Go heap: the garbage collector never
// sees, moves, or frees it.
package shmem
