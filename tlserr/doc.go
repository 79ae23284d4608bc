// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package tlserr drains residual errors left behind by the secure
// transport library before new calls are issued against it.
//
// Some TLS backends report failures through a process-global error
// queue rather than on the failing call. Any error still queued when
// the next operation starts would be misattributed to it, so the
// transport layer drains (pops and logs) the queue defensively before
// handshake-path calls. Draining an empty queue is a no-op.
package tlserr
