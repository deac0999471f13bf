// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// statusProbe follows a shell command to print its exit status on a
// line of its own. The leading newline keeps "printf 1; echo $?" from
// printing an ambiguous "10".
const statusProbe = "; echo \"\n$?\""

// RemoteCommandError reports a nonzero status from a command run on
// the device through [Client.ShellChecked].
type RemoteCommandError struct {
	Command string
	Status  int
	Output  string
}

func (e *RemoteCommandError) Error() string {
	output := strings.TrimSpace(e.Output)
	if output == "" {
		return fmt.Sprintf("remote command %q: status %d", e.Command, e.Status)
	}
	return fmt.Sprintf("remote command %q: status %d\n%s", e.Command, e.Status, output)
}

// ShellStatus runs command on the device and reports the remote exit
// status, recovered from a probe appended to the command. This works
// with bridge versions whose own exit code is always zero. Only a
// failure of the bridge itself returns an error.
func (c *Client) ShellStatus(ctx context.Context, command string) (string, int, error) {
	output, _, err := c.ShellNoCheck(ctx, command+statusProbe)
	if err != nil {
		return "", -1, err
	}
	return parseShellStatus(output)
}

// ShellChecked is ShellStatus with a nonzero remote status turned into
// *RemoteCommandError.
func (c *Client) ShellChecked(ctx context.Context, command string) (string, error) {
	output, status, err := c.ShellStatus(ctx, command)
	if err != nil {
		return "", err
	}
	if status != 0 {
		return output, &RemoteCommandError{Command: command, Status: status, Output: output}
	}
	return output, nil
}

var errNoStatus = errors.New("could not find exit status in shell output")

// parseShellStatus splits probe output into the command's own output
// and the trailing status line. Device line endings may be \n or
// \r\n.
func parseShellStatus(output string) (string, int, error) {
	trimmed := strings.TrimRight(output, "\r\n")
	newline := strings.LastIndexByte(trimmed, '\n')
	if newline < 0 {
		return "", -1, errNoStatus
	}

	status, err := strconv.Atoi(strings.TrimSpace(trimmed[newline+1:]))
	if err != nil || status < 0 || status > 255 {
		return "", -1, fmt.Errorf("%w: %q", errNoStatus, lastLine(trimmed))
	}

	body := strings.TrimSuffix(trimmed[:newline], "\r")
	return body, status, nil
}

func lastLine(s string) string {
	if index := strings.LastIndexByte(s, '\n'); index >= 0 {
		return s[index+1:]
	}
	return s
}
