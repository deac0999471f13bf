// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bridgecheck/bridgecheck/lib/bridge"
	"github.com/bridgecheck/bridgecheck/lib/payload"
)

// All returns every scenario in execution order.
func All() []Scenario {
	return []Scenario{
		{
			Name:      "devices",
			Summary:   "read /proc/uptime from each device",
			PerDevice: true,
			Run:       runUptime,
		},
		{
			Name:      "devices-long",
			Summary:   "list devices with qualifiers, then read /proc/uptime",
			PerDevice: true,
			Run:       runDevicesLong,
		},
		{
			Name:    "help",
			Summary: "help prints something",
			Run:     runHelp,
		},
		{
			Name:    "version",
			Summary: "version output contains a version number",
			Run:     runVersion,
		},
		{
			Name:      "shell-exit-status",
			Summary:   "remote exit status of true and false is recoverable",
			PerDevice: true,
			Run:       runShellExitStatus,
		},
		{
			Name:      "push",
			Summary:   "push a random file and compare digests",
			PerDevice: true,
			Run:       runPush,
		},
		{
			Name:      "pull",
			Summary:   "pull a random device file and compare digests",
			PerDevice: true,
			Run:       runPull,
		},
		{
			Name:      "sync",
			Summary:   "sync a staged tree of random files and compare digests",
			PerDevice: true,
			Run:       runSync,
		},
	}
}

// Names lists the names of scenarios, in order.
func Names(scenarios []Scenario) []string {
	names := make([]string, len(scenarios))
	for i, scenario := range scenarios {
		names[i] = scenario.Name
	}
	return names
}

// Select returns the scenarios named, in the order of available. No
// names selects everything.
func Select(available []Scenario, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return available, nil
	}

	valid := Names(available)
	for _, name := range names {
		if !slices.Contains(valid, name) {
			return nil, fmt.Errorf("unknown scenario %q (valid: %s)", name, strings.Join(valid, ", "))
		}
	}

	var selected []Scenario
	for _, scenario := range available {
		if slices.Contains(names, scenario.Name) {
			selected = append(selected, scenario)
		}
	}
	return selected, nil
}

func runUptime(ctx context.Context, env *Env, target Target) error {
	output, err := target.Client.Shell(ctx, "cat /proc/uptime")
	if err != nil {
		return err
	}
	return checkUptime(output)
}

// checkUptime verifies /proc/uptime output: exactly two numbers, both
// positive (seconds up, seconds idle).
func checkUptime(output string) error {
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return &AssertionError{
			Check:    "/proc/uptime field count",
			Expected: "2",
			Actual:   fmt.Sprintf("%d in %q", len(fields), strings.TrimSpace(output)),
		}
	}
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil || value <= 0 {
			return &AssertionError{
				Check:    fmt.Sprintf("/proc/uptime field %d", i+1),
				Expected: "a positive number",
				Actual:   strconv.Quote(field),
			}
		}
	}
	return nil
}

func runDevicesLong(ctx context.Context, env *Env, target Target) error {
	devices, err := bridge.ListDevices(ctx, env.Invoker, env.Config.Bridge.Binary, true)
	if err != nil {
		return err
	}

	index := slices.IndexFunc(devices, func(device bridge.Device) bool {
		return device.Serial == target.Device.Serial
	})
	if index < 0 {
		return &AssertionError{
			Check:    "devices -l lists " + target.Device.Serial,
			Expected: "present",
			Actual:   fmt.Sprintf("serials %v", bridge.Serials(devices)),
		}
	}
	listed := devices[index]
	if listed.State != target.Device.State {
		return &AssertionError{
			Check:    "devices -l state of " + target.Device.Serial,
			Expected: target.Device.State,
			Actual:   listed.State,
		}
	}
	if len(listed.Qualifiers) == 0 {
		return &AssertionError{
			Check:    "devices -l qualifiers of " + target.Device.Serial,
			Expected: "at least one key:value qualifier",
			Actual:   "none",
		}
	}

	return runUptime(ctx, env, target)
}

func runHelp(ctx context.Context, env *Env, target Target) error {
	output, err := target.Client.Help(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(output) == "" {
		return &AssertionError{Check: "help output", Expected: "non-empty", Actual: "empty"}
	}
	return nil
}

// versionToken matches a whitespace-separated token that starts with
// a version number, such as "1.0.41" or "35.0.2-12147458".
var versionToken = regexp.MustCompile(`^[\d+.]*\d`)

func runVersion(ctx context.Context, env *Env, target Target) error {
	output, err := target.Client.Version(ctx)
	if err != nil {
		return err
	}
	if !hasVersionNumber(output) {
		return &AssertionError{
			Check:    "version output",
			Expected: "a token starting with a version number",
			Actual:   strconv.Quote(strings.TrimSpace(output)),
		}
	}
	return nil
}

func hasVersionNumber(output string) bool {
	return slices.ContainsFunc(strings.Fields(output), versionToken.MatchString)
}

func runShellExitStatus(ctx context.Context, env *Env, target Target) error {
	_, status, err := target.Client.ShellStatus(ctx, "true")
	if err != nil {
		return err
	}
	if status != 0 {
		return &AssertionError{Check: "exit status of true", Expected: "0", Actual: strconv.Itoa(status)}
	}

	_, status, err = target.Client.ShellStatus(ctx, "false")
	if err != nil {
		return err
	}
	if status == 0 {
		return &AssertionError{Check: "exit status of false", Expected: "nonzero", Actual: "0"}
	}
	return nil
}

func runPush(ctx context.Context, env *Env, target Target) error {
	cfg := env.Config
	file, err := env.Generator.NewFile(cfg.Run.HostTempDir, cfg.Payload.PushSize, env.Algorithm)
	if err != nil {
		return err
	}
	defer env.closeHost(file.Path, file.Close)

	remote := cfg.Scratch.FilePath()
	env.discard(ctx, target, "rm -r "+remote)
	defer env.cleanup(ctx, target, "rm "+remote)

	if _, err := target.Client.Push(ctx, file.Path, remote); err != nil {
		return err
	}
	env.addBytes(file.Size)

	deviceDigest, err := env.remoteDigest(ctx, target, remote)
	if err != nil {
		return err
	}
	if deviceDigest != file.Digest {
		return &AssertionError{
			Check:    "push digest of " + remote,
			Expected: file.Digest.String(),
			Actual:   deviceDigest.String(),
		}
	}
	return nil
}

func runPull(ctx context.Context, env *Env, target Target) error {
	cfg := env.Config
	remote := cfg.Scratch.FilePath()
	env.discard(ctx, target, "rm -r "+remote)
	defer env.cleanup(ctx, target, "rm "+remote)

	create := fmt.Sprintf("dd if=/dev/urandom of=%s bs=1024 count=%d", remote, cfg.Payload.PullKiB)
	if _, err := target.Client.Shell(ctx, create); err != nil {
		return err
	}
	deviceDigest, err := env.remoteDigest(ctx, target, remote)
	if err != nil {
		return err
	}

	local, err := os.CreateTemp(cfg.Run.HostTempDir, "bridgecheck-pull-*")
	if err != nil {
		return fmt.Errorf("creating pull destination: %w", err)
	}
	local.Close()
	defer env.closeHost(local.Name(), func() error {
		err := os.Remove(local.Name())
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	})

	if _, err := target.Client.Pull(ctx, remote, local.Name()); err != nil {
		return err
	}
	pulled, err := payload.Pulled(local.Name(), env.Algorithm)
	if err != nil {
		return err
	}
	env.addBytes(pulled.Size)

	if want := cfg.Payload.PullKiB * 1024; pulled.Size != want {
		return &AssertionError{
			Check:    "pulled size of " + remote,
			Expected: strconv.Itoa(want),
			Actual:   strconv.Itoa(pulled.Size),
		}
	}
	if pulled.Digest != deviceDigest {
		return &AssertionError{
			Check:    "pull digest of " + remote,
			Expected: deviceDigest.String(),
			Actual:   pulled.Digest.String(),
		}
	}
	return nil
}

func runSync(ctx context.Context, env *Env, target Target) error {
	cfg := env.Config
	remoteDir := cfg.Scratch.SyncPath()

	tree, err := env.Generator.StageTree(cfg.Run.HostTempDir, remoteDir,
		cfg.Payload.SyncFiles, cfg.Payload.SyncSizes, env.Algorithm)
	if err != nil {
		return err
	}
	defer env.closeHost(tree.Base, tree.Close)

	env.discard(ctx, target, "rm -r "+remoteDir)
	defer env.cleanup(ctx, target, "rm -r "+remoteDir)

	if _, err := target.Client.WithProductOut(tree.Base).Sync(ctx, cfg.Scratch.SyncPartition); err != nil {
		return err
	}

	var mismatches []error
	for _, file := range tree.Files {
		remote := tree.RemotePath(file)
		deviceDigest, err := env.remoteDigest(ctx, target, remote)
		if err != nil {
			return err
		}
		env.addBytes(file.Size)
		if deviceDigest != file.Digest {
			mismatches = append(mismatches, &AssertionError{
				Check:    "sync digest of " + remote,
				Expected: file.Digest.String(),
				Actual:   deviceDigest.String(),
			})
		}
	}
	return errors.Join(mismatches...)
}
