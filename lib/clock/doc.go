// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the wall clock so run timestamps and
// per-scenario durations can be tested deterministically.
//
// Production code injects [Real]; tests inject [Fake] and move time
// with [FakeClock.Advance], [FakeClock.Set], or an automatic step
// applied on every read.
package clock
