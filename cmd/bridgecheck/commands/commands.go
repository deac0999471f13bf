// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the bridgecheck command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bridgecheck/bridgecheck/cmd/bridgecheck/cli"
	"github.com/bridgecheck/bridgecheck/lib/version"
)

// Root builds and returns the complete bridgecheck command tree,
// writing command output to stdout.
func Root() *cli.Command {
	return root(os.Stdout)
}

func root(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name: "bridgecheck",
		Description: `bridgecheck: conformance harness for a device bridge CLI.

Drives the bridge executable (adb by default) as a black box against
every attached device: enumeration, shell, help and version output,
push, pull, and sync, with digest checks on every byte moved. Scratch
files are removed from the device and the host whether a scenario
passes, fails, or is interrupted.`,
		Subcommands: []*cli.Command{
			runCommand(stdout),
			devicesCommand(stdout),
			scenariosCommand(stdout),
			reportCommand(stdout),
			configCommand(stdout),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Fprintf(stdout, "bridgecheck %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Run every scenario against every attached device",
				Command:     "bridgecheck run",
			},
			{
				Description: "Test a freshly built bridge on one device",
				Command:     "bridgecheck run --bridge out/host/linux-x86/bin/adb --serial emulator-5554",
			},
			{
				Description: "Only the transfer scenarios, with a compressed report",
				Command:     "bridgecheck run --scenario push,pull,sync --report run.cbor.zst",
			},
			{
				Description: "See what the harness would run against",
				Command:     "bridgecheck devices --long",
			},
			{
				Description: "Summarize a saved report",
				Command:     "bridgecheck report show run.cbor.zst",
			},
		},
	}
}
