// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds small helpers shared by tests across the
// repository, mostly channel operations with built-in timeouts so a
// broken concurrent test fails instead of hanging.
package testutil
