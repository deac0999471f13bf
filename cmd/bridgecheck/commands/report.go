// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bridgecheck/bridgecheck/cmd/bridgecheck/cli"
	"github.com/bridgecheck/bridgecheck/lib/codec"
	"github.com/bridgecheck/bridgecheck/lib/report"
)

func reportCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "report",
		Summary: "Inspect and convert saved run reports",
		Description: `Work with reports written by "bridgecheck run --report".

The encoding is chosen by extension (.json, .yaml, .cbor) with an
optional compression suffix (.zst, .lz4), for example run.cbor.zst.`,
		Subcommands: []*cli.Command{
			reportShowCommand(stdout),
			reportConvertCommand(),
		},
	}
}

type reportShowParams struct {
	cli.JSONOutput
	Diag bool `flag:"diag" desc:"print CBOR diagnostic notation (CBOR reports only)"`
}

func reportShowCommand(stdout io.Writer) *cli.Command {
	var params reportShowParams

	return &cli.Command{
		Name:    "show",
		Summary: "Summarize a saved report",
		Usage:   "bridgecheck report show <path> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Summary table",
				Command:     "bridgecheck report show run.yaml",
			},
			{
				Description: "Inspect the raw CBOR encoding",
				Command:     "bridgecheck report show --diag run.cbor.zst",
			},
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one report path, got %d arguments", len(args))
			}
			path := args[0]

			if params.Diag {
				data, format, err := report.ReadRaw(path)
				if err != nil {
					return err
				}
				if format != report.FormatCBOR {
					return fmt.Errorf("--diag needs a CBOR report, %s is %s", path, format)
				}
				notation, err := codec.Diagnose(data)
				if err != nil {
					return fmt.Errorf("diagnosing %s: %w", path, err)
				}
				_, err = fmt.Fprintln(stdout, notation)
				return err
			}

			result, err := report.Read(path)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			return report.WriteSummary(stdout, result, cli.IsTerminal(stdout))
		},
	}
}

func reportConvertCommand() *cli.Command {
	return &cli.Command{
		Name:    "convert",
		Summary: "Re-encode a report",
		Usage:   "bridgecheck report convert <input> <output>",
		Examples: []cli.Example{
			{
				Description: "Compress a JSON report as CBOR",
				Command:     "bridgecheck report convert run.json run.cbor.zst",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <input> <output>, got %d arguments", len(args))
			}
			result, err := report.Read(args[0])
			if err != nil {
				return err
			}
			if err := report.Write(args[1], result); err != nil {
				return err
			}
			logger.Info("report converted", "from", args[0], "to", args[1], "run_id", result.RunID)
			return nil
		},
	}
}
