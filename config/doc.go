// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the secure-transport layer configuration from
// a single file. There are no fallbacks, environment overrides, or
// automatic discovery: the file is the whole truth, which keeps
// deployed configuration auditable.
//
// Files ending in .json or .jsonc are parsed as JSONC (JSON with
// comments and trailing commas), the format emitted by the ops
// provisioning tooling; everything else is YAML.
package config
