// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package keylog exports per-session TLS handshake secrets in NSS key
// log format for offline traffic decryption and debugging.
//
// Export is best-effort and diagnostic only: lines are appended to a
// local file, sent as unframed UDP datagrams to a remote collector, or
// both, and every failure is logged and swallowed — a broken export
// channel must never affect connection establishment or teardown.
// The Exporter implements io.Writer so it plugs directly into
// tls.Config.KeyLogWriter.
package keylog
