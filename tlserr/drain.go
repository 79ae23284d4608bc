// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package tlserr

import "log/slog"

// Queue is the residual error queue of a secure-transport backend.
// Implementations must be safe for concurrent use.
type Queue interface {
	// PopError removes and returns the oldest pending error.
	// Reports false when the queue is empty.
	PopError() (error, bool)
}

// Drain pops and logs every pending error until the queue is empty,
// returning the number drained. Idempotent and safe to call on an
// already-empty queue. Call it immediately before operations whose
// error reporting would otherwise be contaminated by unrelated
// earlier failures.
func Drain(queue Queue, logger *slog.Logger) int {
	drained := 0
	for {
		err, ok := queue.PopError()
		if !ok {
			return drained
		}
		logger.Info("clearing leftover transport error before new calls", "error", err)
		drained++
	}
}
