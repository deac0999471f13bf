// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package process

import "os/exec"

// configureProcessGroup keeps exec's default cancellation (kill the
// direct child) on platforms without POSIX process groups.
func configureProcessGroup(cmd *exec.Cmd) {}
