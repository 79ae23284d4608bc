// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package tlscfg

import (
	"context"
	"log/slog"
	"time"

	"github.com/voxlane/voxlane/lib/clock"
)

// RunSweeper collects unreferenced generations on a fixed interval
// until ctx is cancelled. Reload paths still call Collect directly so
// a burst of reloads does not have to wait a full interval; the
// sweeper exists to reap generations whose last connection drained
// after the reload-triggered pass.
//
// Lock hold time per pass is linear in the number of stale
// generations, which stays small between reloads, so ticking does not
// disturb the connection hot path.
func RunSweeper[P any](ctx context.Context, registry *Registry[P], clk clock.Clock, interval time.Duration, logger *slog.Logger) {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if collected := registry.Collect(); collected > 0 {
				logger.Debug("collected stale configuration generations",
					"collected", collected,
				)
			}
		}
	}
}
