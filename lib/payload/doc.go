// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package payload creates the host-side random data that conformance
// scenarios move across the bridge: single temp files for push and
// pull, and staged directory trees for sync.
//
// A [Generator] draws sizes from a PCG seeded with the run's seed, so
// the same seed always produces the same sequence of sizes. Content
// comes from crypto/rand by default; with deterministic content
// enabled it comes from a ChaCha8 stream under the same seed, which
// makes a failing run byte-for-byte reproducible.
//
// Every created file carries its digest, computed once from the bytes
// written. Callers own cleanup: [File.Close] and [Tree.Close] remove
// everything the package created.
package payload
