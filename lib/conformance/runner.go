// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bridgecheck/bridgecheck/lib/binhash"
	"github.com/bridgecheck/bridgecheck/lib/bridge"
	"github.com/bridgecheck/bridgecheck/lib/clock"
	"github.com/bridgecheck/bridgecheck/lib/config"
	"github.com/bridgecheck/bridgecheck/lib/devicelock"
	"github.com/bridgecheck/bridgecheck/lib/payload"
	"github.com/bridgecheck/bridgecheck/lib/process"
	"github.com/bridgecheck/bridgecheck/lib/report"
	"github.com/bridgecheck/bridgecheck/lib/version"
)

// Runner executes scenarios against the attached devices, one at a
// time.
type Runner struct {
	Config *config.Config

	// Invoker runs the bridge. Nil builds one from Config and Logger.
	Invoker *process.Invoker

	Logger *slog.Logger

	// Clock times results. Nil uses the wall clock.
	Clock clock.Clock

	// Locker guards devices against concurrent runs. Nil builds one in
	// Config.Run.LockDir.
	Locker *devicelock.Locker

	// Scenarios overrides the catalog. Nil uses [All]; Config.Run.Scenarios
	// then selects from it.
	Scenarios []Scenario
}

// Run enumerates devices and runs the selected scenarios. The report
// is returned whenever enumeration got far enough to produce one,
// including alongside [ErrNoDevices]. Scenario failures are recorded
// in the report, not returned.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	cfg := r.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := r.Clock
	if clk == nil {
		clk = clock.Real()
	}
	invoker := r.Invoker
	if invoker == nil {
		invoker = &process.Invoker{Logger: logger, Timeout: cfg.Bridge.Timeout()}
	}
	locker := r.Locker
	if locker == nil {
		locker = devicelock.New(cfg.Run.LockDir)
	}
	catalog := r.Scenarios
	if catalog == nil {
		catalog = All()
	}

	algorithm, err := binhash.ParseAlgorithm(cfg.Run.Algorithm)
	if err != nil {
		return nil, err
	}
	scenarios, err := Select(catalog, cfg.Run.Scenarios)
	if err != nil {
		return nil, err
	}

	result := &report.Report{
		RunID:          report.NewRunID(),
		HarnessVersion: version.Short(),
		Bridge:         cfg.Bridge.Binary,
		Seed:           cfg.Run.Seed,
		Algorithm:      string(algorithm),
		StartedAt:      clk.Now(),
	}
	logger = logger.With("run_id", result.RunID)

	devices, err := bridge.ListDevices(ctx, invoker, cfg.Bridge.Binary, false)
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		result.Finish(clk.Now())
		return result, ErrNoDevices
	}
	devices, err = filterSerials(devices, cfg.Run.Serials)
	if err != nil {
		return nil, err
	}
	result.Devices = devices
	logger.Info("devices enumerated", "count", len(devices), "serials", bridge.Serials(devices))

	client := bridge.NewClient(cfg.Bridge.Binary, invoker)
	if output, err := client.Version(ctx); err == nil {
		result.BridgeVersion = firstLine(output)
	} else {
		logger.Warn("bridge version unavailable", "error", err)
	}

	env := &Env{
		Config:    cfg,
		Invoker:   invoker,
		Generator: payload.NewGenerator(cfg.Run.Seed, cfg.Payload.DeterministicContent),
		Algorithm: algorithm,
		Logger:    logger,
		Client:    client,
	}

	// Lock everything before the first scenario so a run never gives
	// up a device halfway through.
	unusable := make(map[string]report.Result)
	defer locker.UnlockAll()
	for _, device := range devices {
		if !device.Online() {
			continue
		}
		ok, err := locker.TryLock(device.Serial)
		switch {
		case err != nil:
			unusable[device.Serial] = report.Result{
				Status: report.StatusError,
				Error:  fmt.Sprintf("locking %s: %v", device.Serial, err),
			}
		case !ok:
			unusable[device.Serial] = report.Result{
				Status: report.StatusSkip,
				Error:  fmt.Sprintf("device %s is in use by another run (%s)", device.Serial, locker.Path(device.Serial)),
			}
		}
	}

	for _, scenario := range scenarios {
		if !scenario.PerDevice {
			if err := ctx.Err(); err != nil {
				result.Add(interrupted(scenario, "", err))
				continue
			}
			result.Add(r.runOne(ctx, env, clk, scenario, Target{Client: client}))
			continue
		}

		for _, device := range devices {
			switch blocked, isBlocked := unusable[device.Serial]; {
			case !device.Online():
				result.Add(report.Result{
					Scenario: scenario.Name,
					Serial:   device.Serial,
					Status:   report.StatusSkip,
					Error:    fmt.Sprintf("device is %s", device.State),
				})
			case isBlocked:
				blocked.Scenario = scenario.Name
				blocked.Serial = device.Serial
				result.Add(blocked)
			case ctx.Err() != nil:
				result.Add(interrupted(scenario, device.Serial, ctx.Err()))
			default:
				target := Target{Device: device, Client: client.ForDevice(device.Serial)}
				result.Add(r.runOne(ctx, env, clk, scenario, target))
			}
		}
	}

	result.Finish(clk.Now())
	counts := result.Counts()
	logger.Info("run finished",
		"status", result.Status,
		"passed", counts.Pass, "failed", counts.Fail,
		"errors", counts.Error, "skipped", counts.Skip,
		"elapsed", result.Elapsed())
	return result, nil
}

// runOne executes a single scenario against target and records the
// outcome.
func (r *Runner) runOne(ctx context.Context, env *Env, clk clock.Clock, scenario Scenario, target Target) report.Result {
	logger := env.Logger.With("scenario", scenario.Name)
	if target.Device.Serial != "" {
		logger = logger.With("serial", target.Device.Serial)
	}
	logger.Debug("scenario starting")

	env.moved = 0
	start := clk.Now()
	err := scenario.Run(ctx, env, target)
	result := report.Result{
		Scenario: scenario.Name,
		Serial:   target.Device.Serial,
		Status:   classify(err),
		Bytes:    env.moved,
		Duration: clock.Since(clk, start),
	}
	if err != nil {
		result.Error = err.Error()
	}

	switch result.Status {
	case report.StatusPass:
		logger.Info("scenario passed", "duration", result.Duration, "bytes", result.Bytes)
	case report.StatusSkip:
		logger.Info("scenario skipped", "reason", result.Error)
	default:
		logger.Error("scenario "+string(result.Status), "duration", result.Duration, "error", err)
	}
	return result
}

func interrupted(scenario Scenario, serial string, err error) report.Result {
	return report.Result{
		Scenario: scenario.Name,
		Serial:   serial,
		Status:   report.StatusError,
		Error:    "not started: " + err.Error(),
	}
}

// filterSerials restricts devices to the requested serials. Every
// requested serial must be attached.
func filterSerials(devices []bridge.Device, serials []string) ([]bridge.Device, error) {
	if len(serials) == 0 {
		return devices, nil
	}
	attached := bridge.Serials(devices)
	var missing []error
	for _, serial := range serials {
		if !slices.Contains(attached, serial) {
			missing = append(missing, fmt.Errorf("requested device %q is not attached (attached: %s)",
				serial, strings.Join(attached, ", ")))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return slices.DeleteFunc(slices.Clone(devices), func(device bridge.Device) bool {
		return !slices.Contains(serials, device.Serial)
	}), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
