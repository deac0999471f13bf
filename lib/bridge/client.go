// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/bridgecheck/bridgecheck/lib/process"
)

// DefaultBinary is the bridge tool looked up on PATH when none is
// configured.
const DefaultBinary = "adb"

// Client invokes the bridge tool on behalf of one device. The zero
// Serial targets "the one attached device" and lets the tool reject
// the call when there are several.
type Client struct {
	// Binary is the bridge executable, a path or a name on PATH.
	Binary string

	// Serial selects the device (-s). Empty means the only attached
	// device.
	Serial string

	// ProductOut is the alternate root that "sync" mirrors onto the
	// device (-p). Empty means the tool's own default.
	ProductOut string

	// Invoker spawns the tool.
	Invoker *process.Invoker
}

// NewClient returns a client for binary with no device selected.
func NewClient(binary string, invoker *process.Invoker) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if invoker == nil {
		invoker = &process.Invoker{}
	}
	return &Client{Binary: binary, Invoker: invoker}
}

// ForDevice returns a copy of c bound to serial.
func (c *Client) ForDevice(serial string) *Client {
	bound := *c
	bound.Serial = serial
	return &bound
}

// WithProductOut returns a copy of c whose sync root is directory.
func (c *Client) WithProductOut(directory string) *Client {
	bound := *c
	bound.ProductOut = directory
	return &bound
}

// Argv returns the full command line for a bridge subcommand,
// including the device-selector and sync-root flags.
func (c *Client) Argv(args ...string) []string {
	argv := []string{c.Binary}
	if c.Serial != "" {
		argv = append(argv, "-s", c.Serial)
	}
	if c.ProductOut != "" {
		argv = append(argv, "-p", c.ProductOut)
	}
	return append(argv, args...)
}

func (c *Client) run(ctx context.Context, mode process.Mode, args ...string) (process.Result, error) {
	return c.Invoker.Run(ctx, mode, c.Argv(args...)...)
}

// call runs a checked subcommand and returns its combined output.
func (c *Client) call(ctx context.Context, args ...string) (string, error) {
	result, err := c.run(ctx, process.Checked, args...)
	if err != nil {
		return "", err
	}
	return result.Output(), nil
}

// Shell runs command on the device and returns its output. A nonzero
// exit from the bridge fails with *process.ProcessError.
func (c *Client) Shell(ctx context.Context, command string) (string, error) {
	return c.call(ctx, "shell", command)
}

// ShellNoCheck runs command on the device and returns its output and
// the bridge's exit code without judging it. Only a spawn failure
// returns an error.
func (c *Client) ShellNoCheck(ctx context.Context, command string) (string, int, error) {
	result, err := c.run(ctx, process.Combined, "shell", command)
	if err != nil {
		return "", result.ExitCode, err
	}
	return result.Output(), result.ExitCode, nil
}

// Push copies a host file to the device.
func (c *Client) Push(ctx context.Context, local, remote string) (string, error) {
	return c.call(ctx, "push", local, remote)
}

// Pull copies a device file to the host.
func (c *Client) Pull(ctx context.Context, remote, local string) (string, error) {
	return c.call(ctx, "pull", remote, local)
}

// Sync mirrors the staged tree for partition (for example "data")
// from ProductOut onto the device. An empty partition syncs every
// partition the tool knows about.
func (c *Client) Sync(ctx context.Context, partition string) (string, error) {
	if partition == "" {
		return c.call(ctx, "sync")
	}
	return c.call(ctx, "sync", partition)
}

// Help returns the tool's help text.
func (c *Client) Help(ctx context.Context) (string, error) {
	return c.call(ctx, "help")
}

// Version returns the tool's version banner.
func (c *Client) Version(ctx context.Context) (string, error) {
	return c.call(ctx, "version")
}

// Install installs a package file on the device.
func (c *Client) Install(ctx context.Context, path string) (string, error) {
	return c.call(ctx, "install", path)
}

// Root restarts the device daemon with root privileges.
func (c *Client) Root(ctx context.Context) (string, error) {
	return c.call(ctx, "root")
}

// Unroot restarts the device daemon without root privileges.
func (c *Client) Unroot(ctx context.Context) (string, error) {
	return c.call(ctx, "unroot")
}

// WaitForDevice blocks until the device is reachable.
func (c *Client) WaitForDevice(ctx context.Context) error {
	_, err := c.call(ctx, "wait-for-device")
	return err
}

// Forward forwards a host socket to a device socket.
func (c *Client) Forward(ctx context.Context, local, remote string) error {
	_, err := c.call(ctx, "forward", local, remote)
	return err
}

// ForwardRemove removes one forward by its host socket.
func (c *Client) ForwardRemove(ctx context.Context, local string) error {
	_, err := c.call(ctx, "forward", "--remove", local)
	return err
}

// ForwardRemoveAll removes every forward.
func (c *Client) ForwardRemoveAll(ctx context.Context) error {
	_, err := c.call(ctx, "forward", "--remove-all")
	return err
}

// Reverse forwards a device socket to a host socket.
func (c *Client) Reverse(ctx context.Context, remote, local string) error {
	_, err := c.call(ctx, "reverse", remote, local)
	return err
}

// ReverseRemove removes one reverse forward by its device socket.
func (c *Client) ReverseRemove(ctx context.Context, remote string) error {
	_, err := c.call(ctx, "reverse", "--remove", remote)
	return err
}

// ReverseRemoveAll removes every reverse forward.
func (c *Client) ReverseRemoveAll(ctx context.Context) error {
	_, err := c.call(ctx, "reverse", "--remove-all")
	return err
}

// Connect attaches a device over TCP/IP.
func (c *Client) Connect(ctx context.Context, host string) (string, error) {
	return c.call(ctx, "connect", host)
}

// Disconnect detaches a TCP/IP device.
func (c *Client) Disconnect(ctx context.Context, host string) (string, error) {
	return c.call(ctx, "disconnect", host)
}

// GetProp reads a system property. An unset property returns "".
func (c *Client) GetProp(ctx context.Context, name string) (string, error) {
	output, err := c.Shell(ctx, "getprop "+name)
	if err != nil {
		return "", err
	}
	value := strings.TrimRight(output, "\r\n")
	if strings.Contains(value, "\n") {
		return "", fmt.Errorf("getprop %s: expected one line, got:\n%s", name, value)
	}
	return strings.TrimSpace(value), nil
}

// SetProp writes a system property.
func (c *Client) SetProp(ctx context.Context, name, value string) error {
	_, err := c.Shell(ctx, "setprop "+name+" "+value)
	return err
}
