// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single point of CBOR configuration for the
// admin socket protocol. Consumers import this package rather than
// fxamacker/cbor directly so the encoder options stay uniform across
// the daemon and the control CLI.
package codec
