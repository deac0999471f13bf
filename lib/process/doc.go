// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package process runs external commands and reports their output and
// exit status. Every subprocess bridgecheck spawns goes through
// [Invoker.Run], a single primitive parameterized by a [Mode]:
//
//   - [Checked] merges stdout and stderr and turns a nonzero exit into
//     a [*ProcessError] carrying the combined output. The caller never
//     sees a partial [Result].
//   - [Combined] merges the streams and returns the exit code without
//     judging it. Used for best-effort cleanup.
//   - [Separate] captures stdout and stderr independently and returns
//     the exit code without judging it.
//
// A spawn failure (missing binary, permission denied) is an ordinary
// wrapped error in every mode, never a ProcessError, so callers can
// distinguish "the tool said no" from "the tool never ran".
//
// Calls block until the child exits. There is no retry and, unless
// [Invoker.Timeout] is set, no deadline: a hung tool hangs the run.
// Cancelling the context kills the child's whole process group.
//
// The package also provides [Fatal], the entrypoint error handler used
// by main() before or after the structured logger exists.
package process
