// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Bridgecheck is a conformance harness for a device-bridge command-line
// tool such as adb. It treats the tool as a black box: every check
// spawns the executable, captures its output, and compares what came
// back with what was expected.
//
// Subcommands:
//
//   - run: execute the scenarios against every attached device and
//     print a summary (or JSON), optionally writing a report file
//   - devices: enumerate attached devices
//   - scenarios: list scenarios in execution order
//   - report show, report convert: inspect and re-encode saved reports
//   - config: print the effective configuration
//   - version: print build information
//
// Exit status is 0 when every scenario passed or was skipped
// (including when no device is attached), 1 when a scenario failed or
// the harness itself could not run.
package main
