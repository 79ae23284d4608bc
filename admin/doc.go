// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package admin is the control surface of the secure-transport layer:
// a Unix socket speaking CBOR-encoded request/response pairs, one
// request per connection. voxlanectl is the client; the daemon hosts
// the server. The socket lives outside any sandbox, so no
// authentication is layered on top of filesystem permissions.
package admin
