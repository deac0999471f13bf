// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package process

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcessGroup puts the child in its own process group so
// that cancellation reaches the bridge tool and anything it spawned.
// Without Setpgid only the direct child receives the signal, and
// grandchildren holding the inherited output pipes keep Wait blocked.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		if err == unix.ESRCH {
			// The group is already gone; fall back to the direct child.
			return cmd.Process.Kill()
		}
		return err
	}
}
