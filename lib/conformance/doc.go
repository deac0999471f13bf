// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package conformance runs the bridge conformance scenarios against
// every attached device and records the outcome in a report.
//
// A [Scenario] is either global (run once: help, version) or
// per-device (run once for each online device: uptime, push, pull,
// sync). Scenarios run strictly one at a time; a failure in one never
// prevents the next from running.
//
// Errors returned by a scenario are classified into report statuses:
//
//   - nil -- pass
//   - [*AssertionError] -- fail: a digest mismatch or malformed output
//   - [*SkipError] -- skip: the environment cannot run the scenario
//   - anything else -- error: usually a [*process.ProcessError] from a
//     bridge invocation that exited nonzero
//
// Scenarios that touch device scratch paths remove them before they
// start and again when they finish, pass or fail. Final cleanup runs
// on a context detached from the run's cancellation, so interrupting a
// run still cleans up the scenario in flight. Cleanup failures are
// logged, never reported as scenario failures.
//
// When enumeration finds no devices at all, [Runner.Run] returns
// [ErrNoDevices] alongside a report whose status is skip. Callers
// treat that as "nothing to test", not as a failure.
package conformance
