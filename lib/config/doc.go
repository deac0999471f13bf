// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for bridgecheck.
//
// Configuration is loaded from a single file specified by either the
// BRIDGECHECK_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). [Resolve] picks between them and falls back
// to [Default] when neither is given, so the harness runs with no
// configuration at all. There is no ~/.config discovery and no
// automatic file search.
//
// Files ending in .json or .jsonc are parsed as JSON with comments and
// trailing commas; everything else is YAML. Unset fields keep their
// defaults.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values; command-line flags
// are applied by the caller after loading.
//
// Key exports:
//
//   - [Config] -- master struct with Bridge, Run, Scratch, Payload, Report
//   - [Default] -- the harness constants
//   - [Load], [LoadFile], and [Resolve] -- the entry points for loading
package config
