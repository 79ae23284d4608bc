// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport terminates TLS for SIP connections and relays the
// decrypted byte stream to the upstream proxy core.
//
// Each accepted connection checks out the active configuration
// generation and holds it for its whole lifetime: certificate lookups,
// the handshake, and secret export all read the snapshot that was
// current at accept time. A reload installs a new generation for
// future connections without disturbing established ones; superseded
// generations are destroyed by the registry's collector once their
// last connection checks in.
package transport
