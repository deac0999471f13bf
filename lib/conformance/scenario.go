// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bridgecheck/bridgecheck/lib/binhash"
	"github.com/bridgecheck/bridgecheck/lib/bridge"
	"github.com/bridgecheck/bridgecheck/lib/config"
	"github.com/bridgecheck/bridgecheck/lib/payload"
	"github.com/bridgecheck/bridgecheck/lib/process"
)

// cleanupTimeout bounds each cleanup command run after the run's own
// context has been cancelled.
const cleanupTimeout = 30 * time.Second

// Scenario is one conformance check.
type Scenario struct {
	Name    string
	Summary string

	// PerDevice scenarios run once for each online device; the others
	// run once per suite with an unbound client.
	PerDevice bool

	Run func(ctx context.Context, env *Env, target Target) error
}

// Target is what a scenario runs against.
type Target struct {
	// Device is the zero value for global scenarios.
	Device bridge.Device

	// Client is bound to Device for per-device scenarios.
	Client *bridge.Client
}

// Env is the shared state scenarios draw on.
type Env struct {
	Config    *config.Config
	Invoker   *process.Invoker
	Generator *payload.Generator
	Algorithm binhash.Algorithm
	Logger    *slog.Logger

	// Client is the unbound client for the configured binary.
	Client *bridge.Client

	// moved accumulates payload bytes for the scenario in progress.
	moved int64
}

func (e *Env) addBytes(n int) {
	e.moved += int64(n)
}

// discard runs command on the device before a scenario, ignoring the
// outcome. A missing scratch file is the normal case.
func (e *Env) discard(ctx context.Context, target Target, command string) {
	output, exitCode, err := target.Client.ShellNoCheck(ctx, command)
	if err != nil {
		e.Logger.Warn("pre-clean failed", "serial", target.Device.Serial, "command", command, "error", err)
		return
	}
	if exitCode != 0 {
		e.Logger.Debug("pre-clean found nothing to remove",
			"serial", target.Device.Serial, "command", command,
			"exit_code", exitCode, "output", strings.TrimSpace(output))
	}
}

// cleanup runs command on the device after a scenario. It survives
// cancellation of ctx so an interrupted run still removes its scratch
// files.
func (e *Env) cleanup(ctx context.Context, target Target, command string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	output, exitCode, err := target.Client.ShellNoCheck(ctx, command)
	if err != nil || exitCode != 0 {
		e.Logger.Warn("cleanup failed",
			"serial", target.Device.Serial, "command", command,
			"exit_code", exitCode, "output", strings.TrimSpace(output), "error", err)
	}
}

// closeHost releases a host-side payload, logging failures.
func (e *Env) closeHost(what string, release func() error) {
	if err := release(); err != nil {
		e.Logger.Warn("host cleanup failed", "payload", what, "error", err)
	}
}

// remoteDigest runs the algorithm's device tool on remotePath and
// parses its output.
func (e *Env) remoteDigest(ctx context.Context, target Target, remotePath string) (binhash.Digest, error) {
	output, err := target.Client.Shell(ctx, e.Algorithm.DeviceCommand()+" "+remotePath)
	if err != nil {
		return "", err
	}
	digest, err := binhash.ParseDeviceOutput(e.Algorithm, output)
	if err != nil {
		return "", &AssertionError{
			Check:    fmt.Sprintf("%s output for %s", e.Algorithm.DeviceCommand(), remotePath),
			Expected: fmt.Sprintf("a %s digest", e.Algorithm),
			Actual:   fmt.Sprintf("%q", strings.TrimSpace(output)),
		}
	}
	return digest, nil
}
