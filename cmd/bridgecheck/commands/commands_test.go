// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bridgecheck/bridgecheck/cmd/bridgecheck/cli"
	"github.com/bridgecheck/bridgecheck/lib/bridge"
	"github.com/bridgecheck/bridgecheck/lib/config"
	"github.com/bridgecheck/bridgecheck/lib/conformance"
	"github.com/bridgecheck/bridgecheck/lib/report"
	"github.com/bridgecheck/bridgecheck/lib/testutil"
)

// execute runs the command tree with args and returns what it wrote
// to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	command := root(&stdout)
	command.Logger = func() *slog.Logger { return slog.New(slog.DiscardHandler) }
	command.HelpOutput = io.Discard
	err := command.Execute(t.Context(), args)
	return stdout.String(), err
}

// writeConfig writes a small-payload config that keeps locks and host
// payloads inside the test's temp directories, and returns its path.
func writeConfig(t *testing.T) (path, hostTemp string) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	directory := t.TempDir()
	hostTemp = t.TempDir()
	path = filepath.Join(directory, "bridgecheck.yaml")
	content := `run:
  lock_dir: ` + directory + `
  host_temp_dir: ` + hostTemp + `
payload:
  push_size: 2048
  pull_kib: 4
  sync_files: 3
  sync_sizes:
    min: 1024
    max: 4096
    step: 1024
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path, hostTemp
}

func TestRunCommandPasses(t *testing.T) {
	serial := testutil.UniqueID("emulator")
	fake := testutil.FakeBridge(t, testutil.FakeDevice{Serial: serial})
	configPath, hostTemp := writeConfig(t)
	reportPath := filepath.Join(t.TempDir(), "run.json")

	output, err := execute(t, "run", "--config", configPath, "--bridge", fake.Path, "--report", reportPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, output)
	}

	for _, want := range []string{"8 passed, 0 failed, 0 errors, 0 skipped", "push", serial, "Android Debug Bridge version 1.0.41"} {
		if !strings.Contains(output, want) {
			t.Errorf("summary missing %q:\n%s", want, output)
		}
	}

	saved, err := report.Read(reportPath)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if saved.Status != report.StatusPass || len(saved.Results) != 8 {
		t.Errorf("saved report: status %s, %d results", saved.Status, len(saved.Results))
	}
	if saved.Bridge != fake.Path {
		t.Errorf("saved bridge = %q, want %q", saved.Bridge, fake.Path)
	}

	entries, err := os.ReadDir(hostTemp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("host payloads left behind: %d entries", len(entries))
	}
}

func TestRunCommandNoDevices(t *testing.T) {
	fake := testutil.FakeBridge(t)
	configPath, _ := writeConfig(t)
	reportPath := filepath.Join(t.TempDir(), "run.yaml")

	output, err := execute(t, "run", "-c", configPath, "--bridge", fake.Path, "-o", reportPath)
	if err != nil {
		t.Fatalf("run with no devices should succeed, got %v", err)
	}
	if output != conformance.NoDevicesMessage+"\n" {
		t.Errorf("output = %q, want the no-devices notice", output)
	}

	saved, err := report.Read(reportPath)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if saved.Status != report.StatusSkip {
		t.Errorf("saved status = %s, want skip", saved.Status)
	}
}

func TestRunCommandFailureExitCode(t *testing.T) {
	serial := testutil.UniqueID("emulator")
	fake := testutil.FakeBridge(t, testutil.FakeDevice{Serial: serial})
	t.Setenv("FAKE_UPTIME", "0 0")
	configPath, _ := writeConfig(t)

	output, err := execute(t, "run", "-c", configPath, "--bridge", fake.Path, "--scenario", "devices")

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("run error = %v, want exit code 1", err)
	}
	if !strings.Contains(output, "0 passed, 1 failed") {
		t.Errorf("summary should still be printed:\n%s", output)
	}
	if !strings.Contains(output, "/proc/uptime") {
		t.Errorf("summary should include the failure detail:\n%s", output)
	}
}

func TestRunCommandJSON(t *testing.T) {
	serial := testutil.UniqueID("emulator")
	fake := testutil.FakeBridge(t, testutil.FakeDevice{Serial: serial})
	configPath, _ := writeConfig(t)

	output, err := execute(t, "run", "-c", configPath, "--bridge", fake.Path,
		"--scenario", "help,version", "--seed", "42", "--algorithm", "sha1", "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var result report.Report
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("decoding JSON output: %v\n%s", err, output)
	}
	if result.Seed != 42 || result.Algorithm != "sha1" {
		t.Errorf("seed/algorithm = %d/%s, want 42/sha1", result.Seed, result.Algorithm)
	}
	if len(result.Results) != 2 || result.Status != report.StatusPass {
		t.Errorf("results = %+v, status %s", result.Results, result.Status)
	}
}

func TestRunCommandInvalidConfiguration(t *testing.T) {
	fake := testutil.FakeBridge(t, testutil.FakeDevice{Serial: "emulator-5554"})
	configPath, _ := writeConfig(t)

	_, err := execute(t, "run", "-c", configPath, "--bridge", fake.Path, "--algorithm", "md4")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("run error = %v, want invalid configuration", err)
	}

	_, err = execute(t, "run", "-c", configPath, "--bridge", fake.Path, "extra")
	if err == nil || !strings.Contains(err.Error(), `unexpected argument "extra"`) {
		t.Errorf("run error = %v, want unexpected argument", err)
	}
}

func TestDevicesCommand(t *testing.T) {
	fake := testutil.FakeBridge(t,
		testutil.FakeDevice{Serial: "emulator-5554"},
		testutil.FakeDevice{Serial: "R58M12", State: "unauthorized"},
	)
	t.Setenv(config.EnvVar, "")

	output, err := execute(t, "devices", "--bridge", fake.Path)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	for _, want := range []string{"SERIAL", "emulator-5554", "R58M12", "unauthorized"} {
		if !strings.Contains(output, want) {
			t.Errorf("devices output missing %q:\n%s", want, output)
		}
	}

	output, err = execute(t, "devices", "--bridge", fake.Path, "--long")
	if err != nil {
		t.Fatalf("devices --long: %v", err)
	}
	if !strings.Contains(output, "model:Fake_Device") {
		t.Errorf("long output should list qualifiers:\n%s", output)
	}

	output, err = execute(t, "devices", "--bridge", fake.Path, "--json")
	if err != nil {
		t.Fatalf("devices --json: %v", err)
	}
	var devices []bridge.Device
	if err := json.Unmarshal([]byte(output), &devices); err != nil {
		t.Fatalf("decoding: %v\n%s", err, output)
	}
	if len(devices) != 2 || devices[0].Serial != "emulator-5554" {
		t.Errorf("devices = %+v", devices)
	}
}

func TestDevicesCommandNone(t *testing.T) {
	fake := testutil.FakeBridge(t)
	t.Setenv(config.EnvVar, "")

	output, err := execute(t, "devices", "--bridge", fake.Path)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if output != conformance.NoDevicesMessage+"\n" {
		t.Errorf("output = %q", output)
	}

	output, err = execute(t, "devices", "--bridge", fake.Path, "--json")
	if err != nil {
		t.Fatalf("devices --json: %v", err)
	}
	if strings.TrimSpace(output) != "[]" {
		t.Errorf("JSON output = %q, want []", output)
	}
}

func TestScenariosCommand(t *testing.T) {
	output, err := execute(t, "scenarios")
	if err != nil {
		t.Fatalf("scenarios: %v", err)
	}
	if !strings.Contains(output, "shell-exit-status") || !strings.Contains(output, "per device") {
		t.Errorf("scenarios output:\n%s", output)
	}
	if strings.Index(output, "push") > strings.Index(output, "sync") {
		t.Errorf("scenarios should be listed in execution order:\n%s", output)
	}

	output, err = execute(t, "scenarios", "--json")
	if err != nil {
		t.Fatalf("scenarios --json: %v", err)
	}
	var infos []scenarioInfo
	if err := json.Unmarshal([]byte(output), &infos); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(infos) != len(conformance.All()) || infos[2].Name != "help" || infos[2].PerDevice {
		t.Errorf("infos = %+v", infos)
	}
}

func sampleReport() *report.Report {
	started := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	result := &report.Report{
		RunID:     "0b8f5a4e-5d5c-4f3e-9a57-2f4a3c1e7d10",
		Bridge:    "adb",
		Seed:      3,
		Algorithm: "md5",
		StartedAt: started,
		Devices:   []bridge.Device{{Serial: "emulator-5554", State: "device"}},
	}
	result.Add(report.Result{Scenario: "push", Serial: "emulator-5554", Status: report.StatusPass, Bytes: 524288, Duration: time.Second})
	result.Add(report.Result{Scenario: "pull", Serial: "emulator-5554", Status: report.StatusFail, Error: "pull digest: expected a, got b"})
	result.Finish(started.Add(3 * time.Second))
	return result
}

func TestReportShow(t *testing.T) {
	directory := t.TempDir()
	cborPath := filepath.Join(directory, "run.cbor.zst")
	if err := report.Write(cborPath, sampleReport()); err != nil {
		t.Fatalf("writing report: %v", err)
	}

	output, err := execute(t, "report", "show", cborPath)
	if err != nil {
		t.Fatalf("report show: %v", err)
	}
	for _, want := range []string{"0b8f5a4e", "1 passed, 1 failed", "pull digest: expected a, got b", "512 KiB"} {
		if !strings.Contains(output, want) {
			t.Errorf("summary missing %q:\n%s", want, output)
		}
	}

	output, err = execute(t, "report", "show", "--diag", cborPath)
	if err != nil {
		t.Fatalf("report show --diag: %v", err)
	}
	if !strings.Contains(output, `"run_id"`) {
		t.Errorf("diagnostic notation should show map keys:\n%s", output)
	}

	output, err = execute(t, "report", "show", "--json", cborPath)
	if err != nil {
		t.Fatalf("report show --json: %v", err)
	}
	var decoded report.Report
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if decoded.RunID != sampleReport().RunID || len(decoded.Results) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestReportShowErrors(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "run.json")
	if err := report.Write(jsonPath, sampleReport()); err != nil {
		t.Fatalf("writing report: %v", err)
	}

	if _, err := execute(t, "report", "show", "--diag", jsonPath); err == nil || !strings.Contains(err.Error(), "CBOR") {
		t.Errorf("--diag on JSON: error = %v", err)
	}
	if _, err := execute(t, "report", "show"); err == nil {
		t.Error("report show without a path should fail")
	}
	if _, err := execute(t, "report", "show", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("report show of a missing file should fail")
	}
}

func TestReportConvert(t *testing.T) {
	directory := t.TempDir()
	input := filepath.Join(directory, "run.json")
	output := filepath.Join(directory, "run.yaml.lz4")
	if err := report.Write(input, sampleReport()); err != nil {
		t.Fatalf("writing report: %v", err)
	}

	if _, err := execute(t, "report", "convert", input, output); err != nil {
		t.Fatalf("report convert: %v", err)
	}
	converted, err := report.Read(output)
	if err != nil {
		t.Fatalf("reading converted report: %v", err)
	}
	if converted.RunID != sampleReport().RunID || converted.Status != report.StatusFail {
		t.Errorf("converted = %+v", converted)
	}
}

func TestConfigCommand(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	path := filepath.Join(t.TempDir(), "bridgecheck.jsonc")
	content := `{
  // CI device farm
  "bridge": {"binary": "/opt/platform-tools/adb", "command_timeout": "2m"},
  "run": {"seed": 99,},
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := execute(t, "config", "--config", path)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"binary: /opt/platform-tools/adb", "command_timeout: 2m", "seed: 99", "sync_dir: adb_test_dir"} {
		if !strings.Contains(output, want) {
			t.Errorf("config output missing %q:\n%s", want, output)
		}
	}

	output, err = execute(t, "config", "--config", path, "--bridge", "adb-next", "--json")
	if err != nil {
		t.Fatalf("config --json: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(output), &cfg); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if cfg.Bridge.Binary != "adb-next" || cfg.Run.Seed != 99 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(output, "bridgecheck ") || !strings.Contains(output, "Go: ") {
		t.Errorf("version output = %q", output)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "scenarois")
	if err == nil || !strings.Contains(err.Error(), `did you mean "scenarios"`) {
		t.Errorf("error = %v, want a suggestion", err)
	}
}
