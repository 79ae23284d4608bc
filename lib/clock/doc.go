// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for components that schedule periodic
// work, so tests can drive them deterministically. Production code
// injects Real(); tests inject Fake() and call Advance.
package clock
