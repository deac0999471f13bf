// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bridgecheck/bridgecheck/cmd/bridgecheck/cli"
	"github.com/bridgecheck/bridgecheck/lib/bridge"
	"github.com/bridgecheck/bridgecheck/lib/conformance"
)

type devicesParams struct {
	cli.JSONOutput
	Source sourceFlags

	Long bool `flag:"long,l" desc:"include transport, product, and model qualifiers"`
}

func devicesCommand(stdout io.Writer) *cli.Command {
	var params devicesParams

	return &cli.Command{
		Name:    "devices",
		Summary: "List the devices a run would use",
		Description: `Enumerate attached devices through the bridge, exactly as "run"
does before its first scenario.`,
		Usage: "bridgecheck devices [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("devices", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			cfg, err := params.Source.loadValid()
			if err != nil {
				return err
			}

			devices, err := bridge.ListDevices(ctx, newInvoker(cfg, logger), cfg.Bridge.Binary, params.Long)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(stdout, devices); done {
				return err
			}
			if len(devices) == 0 {
				fmt.Fprintln(stdout, conformance.NoDevicesMessage)
				return nil
			}
			return writeDeviceTable(stdout, devices, params.Long)
		},
	}
}

func writeDeviceTable(w io.Writer, devices []bridge.Device, long bool) error {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	if long {
		fmt.Fprintln(tw, "SERIAL\tSTATE\tQUALIFIERS")
	} else {
		fmt.Fprintln(tw, "SERIAL\tSTATE")
	}
	for _, device := range devices {
		if !long {
			fmt.Fprintf(tw, "%s\t%s\n", device.Serial, device.State)
			continue
		}
		var qualifiers []string
		for _, key := range slices.Sorted(maps.Keys(device.Qualifiers)) {
			qualifiers = append(qualifiers, key+":"+device.Qualifiers[key])
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", device.Serial, device.State, strings.Join(qualifiers, " "))
	}
	return tw.Flush()
}
