// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for bridgecheck
// packages.
//
// [FakeBridge] installs a POSIX sh emulation of the device bridge in
// a temp directory. Each fake device is a directory tree; shell
// commands, push, pull, and sync operate on it, so the whole harness
// can be exercised without hardware. [BridgeBinary] locates the real
// tool for live-device tests and skips when it is absent.
//
// [RequireReceive] bounds a channel receive with a timeout.
// [UniqueID] generates monotonically increasing identifiers.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
