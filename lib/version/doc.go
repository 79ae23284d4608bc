// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version stamped into voxlane
// binaries at link time.
package version
