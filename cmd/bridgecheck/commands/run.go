// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bridgecheck/bridgecheck/cmd/bridgecheck/cli"
	"github.com/bridgecheck/bridgecheck/lib/conformance"
	"github.com/bridgecheck/bridgecheck/lib/config"
	"github.com/bridgecheck/bridgecheck/lib/report"
)

type runParams struct {
	cli.JSONOutput
	Source sourceFlags

	Serials       []string      `flag:"serial,s" desc:"run only against this device (repeatable)"`
	Scenarios     []string      `flag:"scenario" desc:"run only this scenario (repeatable; see 'bridgecheck scenarios')"`
	Seed          uint64        `flag:"seed" desc:"payload seed (overrides run.seed)"`
	Algorithm     string        `flag:"algorithm" desc:"digest algorithm: md5, sha1, sha256, blake2b, blake3"`
	Report        string        `flag:"report,o" desc:"write the run report here (.json, .yaml, .cbor, optionally .zst or .lz4)"`
	Timeout       time.Duration `flag:"timeout" desc:"bound each bridge invocation (overrides bridge.command_timeout)"`
	Deterministic bool          `flag:"deterministic" desc:"derive payload content from the seed"`
	Verbose       bool          `flag:"verbose,v" desc:"log every bridge invocation"`
}

// apply layers the command line over cfg. changed reports whether a
// flag was given explicitly.
func (p *runParams) apply(cfg *config.Config, changed func(string) bool) {
	if len(p.Serials) > 0 {
		cfg.Run.Serials = p.Serials
	}
	if len(p.Scenarios) > 0 {
		cfg.Run.Scenarios = p.Scenarios
	}
	if changed("seed") {
		cfg.Run.Seed = p.Seed
	}
	if p.Algorithm != "" {
		cfg.Run.Algorithm = p.Algorithm
	}
	if p.Report != "" {
		cfg.Report.Path = p.Report
	}
	if p.Timeout > 0 {
		cfg.Bridge.CommandTimeout = p.Timeout.String()
	}
	if p.Deterministic {
		cfg.Payload.DeterministicContent = true
	}
}

func runCommand(stdout io.Writer) *cli.Command {
	var params runParams
	var flagSet *pflag.FlagSet

	return &cli.Command{
		Name:    "run",
		Summary: "Run the conformance suite",
		Description: `Run the conformance scenarios against every attached device.

Scenarios run one at a time in a fixed order. Per-device scenarios run
once for each online device; help and version run once. Devices that
are offline or unauthorized get a skip result, and devices locked by
another bridgecheck process are skipped rather than shared.

With no devices attached the suite prints a notice and exits 0. The
exit status is 1 when any scenario failed or errored.

Interrupting the run (Ctrl-C) stops before the next scenario; the
scenario in progress still removes its scratch files.`,
		Usage: "bridgecheck run [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet = cli.FlagsFromParams("run", &params)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Everything, everywhere",
				Command:     "bridgecheck run",
			},
			{
				Description: "Reproduce a sync run's file sizes and contents",
				Command:     "bridgecheck run --scenario sync --seed 42 --deterministic",
			},
			{
				Description: "CI: JSON on stdout, YAML report on disk",
				Command:     "bridgecheck run --json --report artifacts/bridgecheck.yaml",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}

			cfg, err := params.Source.load()
			if err != nil {
				return err
			}
			params.apply(cfg, flagSet.Changed)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if params.Verbose {
				logger = cli.NewCommandLogger(os.Stderr, slog.LevelDebug)
			}
			logger = logger.With("command", "run", "bridge", cfg.Bridge.Binary)

			runner := &conformance.Runner{
				Config:  cfg,
				Invoker: newInvoker(cfg, logger),
				Logger:  logger,
			}
			result, err := runner.Run(ctx)
			if errors.Is(err, conformance.ErrNoDevices) {
				fmt.Fprintln(stdout, conformance.NoDevicesMessage)
				return saveReport(cfg.Report.Path, result, logger)
			}
			if err != nil {
				return err
			}
			if err := saveReport(cfg.Report.Path, result, logger); err != nil {
				return err
			}

			if done, err := params.EmitJSON(stdout, result); done {
				if err != nil {
					return err
				}
			} else if err := report.WriteSummary(stdout, result, cli.IsTerminal(stdout)); err != nil {
				return err
			}

			if result.Failed() {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// saveReport writes result to path when a path is configured.
func saveReport(path string, result *report.Report, logger *slog.Logger) error {
	if path == "" || result == nil {
		return nil
	}
	if err := report.Write(path, result); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("report written", "path", path, "run_id", result.RunID)
	return nil
}
