// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge drives an external device-bridge tool (adb or a
// compatible binary) over process boundaries. Nothing here speaks the
// bridge's wire protocol: every operation is one invocation of the
// tool through [process.Invoker], and results come from parsing its
// text output.
//
// [ListDevices] runs "devices" and [ParseDevices] turns its output into
// [Device] values, dropping daemon banner lines ("* daemon started
// successfully *"), the "List of devices attached" header, and blank
// lines. Order is preserved as reported and duplicates are kept. Zero
// attached devices yields an empty slice, not an error.
//
// [Client] binds an optional device serial (passed as -s) and an
// optional alternate product-out root (passed as -p, the source tree
// for "sync") to convenience operations. [Client.Shell], [Client.Push],
// [Client.Pull], and [Client.Sync] are checked: a nonzero exit becomes
// a *process.ProcessError. [Client.ShellNoCheck] never fails on exit
// status and is meant for best-effort cleanup. [Client.ShellStatus]
// appends an exit-status probe for bridge versions that do not
// propagate the remote command's status.
package bridge
