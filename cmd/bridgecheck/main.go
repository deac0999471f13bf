// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bridgecheck/bridgecheck/cmd/bridgecheck/commands"
	"github.com/bridgecheck/bridgecheck/lib/process"
)

func main() {
	if err := run(); err != nil {
		// "run" prints its own summary and returns an ExitError when a
		// scenario failed. Don't print a redundant "error:" line for
		// those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root().Execute(ctx, os.Args[1:])
}
