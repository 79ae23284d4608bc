// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package version

import "runtime/debug"

// Version is the release version. Overridden at build time with:
//
//	-ldflags "-X github.com/voxlane/voxlane/lib/version.Version=v1.2.3"
var Version = "dev"

// Info returns the version string for --version output and startup
// logs. Falls back to the module version recorded by the Go toolchain
// when no explicit version was linked in.
func Info() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
