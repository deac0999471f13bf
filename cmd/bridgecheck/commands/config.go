// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bridgecheck/bridgecheck/cmd/bridgecheck/cli"
)

type configParams struct {
	cli.JSONOutput
	Source sourceFlags
}

func configCommand(stdout io.Writer) *cli.Command {
	var params configParams

	return &cli.Command{
		Name:    "config",
		Summary: "Print the effective configuration",
		Description: `Print the configuration a run would use, after defaults, the config
file, variable expansion, and --bridge are applied. The output is valid
input for --config.`,
		Usage: "bridgecheck config [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("config", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			cfg, err := params.Source.loadValid()
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(stdout, cfg); done {
				return err
			}
			encoder := yaml.NewEncoder(stdout)
			encoder.SetIndent(2)
			if err := encoder.Encode(cfg); err != nil {
				return err
			}
			return encoder.Close()
		},
	}
}
