// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package report records the outcome of a conformance run.
//
// A [Report] holds one [Result] per scenario execution: global
// scenarios contribute a single result, per-device scenarios one per
// device. Reports are written with [Write] in the encoding named by the
// file extension (.json, .yaml, .cbor), optionally wrapped in zstd
// (.zst) or LZ4 frame (.lz4) compression, and read back with [Read].
//
// [WriteSummary] renders the human-readable table the CLI prints at
// the end of a run.
package report
