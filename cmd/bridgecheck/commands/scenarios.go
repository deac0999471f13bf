// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bridgecheck/bridgecheck/cmd/bridgecheck/cli"
	"github.com/bridgecheck/bridgecheck/lib/conformance"
)

type scenarioInfo struct {
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	PerDevice bool   `json:"per_device"`
}

type scenariosParams struct {
	cli.JSONOutput
}

func scenariosCommand(stdout io.Writer) *cli.Command {
	var params scenariosParams

	return &cli.Command{
		Name:    "scenarios",
		Summary: "List scenarios in execution order",
		Usage:   "bridgecheck scenarios [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("scenarios", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			var infos []scenarioInfo
			for _, scenario := range conformance.All() {
				infos = append(infos, scenarioInfo{
					Name:      scenario.Name,
					Summary:   scenario.Summary,
					PerDevice: scenario.PerDevice,
				})
			}
			if done, err := params.EmitJSON(stdout, infos); done {
				return err
			}

			tw := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "NAME\tRUNS\tSUMMARY")
			for _, info := range infos {
				runs := "once"
				if info.PerDevice {
					runs = "per device"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, runs, info.Summary)
			}
			return tw.Flush()
		},
	}
}
