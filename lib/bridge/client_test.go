// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bridgecheck/bridgecheck/lib/process"
	"github.com/bridgecheck/bridgecheck/lib/testutil"
)

const testSerial = "emulator-5554"

func newTestClient(t *testing.T) (*Client, *testutil.Bridge) {
	t.Helper()
	fake := testutil.FakeBridge(t, testutil.FakeDevice{Serial: testSerial})
	return NewClient(fake.Path, nil).ForDevice(testSerial), fake
}

func TestArgv(t *testing.T) {
	base := NewClient("", nil)
	tests := []struct {
		name   string
		client *Client
		args   []string
		want   []string
	}{
		{"no selector", base, []string{"devices"}, []string{"adb", "devices"}},
		{"serial", base.ForDevice("ZX1G22"), []string{"shell", "ls"}, []string{"adb", "-s", "ZX1G22", "shell", "ls"}},
		{"product out", base.WithProductOut("/tmp/out"), []string{"sync", "data"}, []string{"adb", "-p", "/tmp/out", "sync", "data"}},
		{
			"serial and product out",
			base.ForDevice("ZX1G22").WithProductOut("/tmp/out"),
			[]string{"sync"},
			[]string{"adb", "-s", "ZX1G22", "-p", "/tmp/out", "sync"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.client.Argv(test.args...); !reflect.DeepEqual(got, test.want) {
				t.Errorf("Argv = %q, want %q", got, test.want)
			}
		})
	}

	if base.Serial != "" || base.ProductOut != "" {
		t.Errorf("ForDevice/WithProductOut mutated the receiver: %+v", base)
	}
}

func TestShell(t *testing.T) {
	client, _ := newTestClient(t)

	output, err := client.Shell(t.Context(), "cat /proc/uptime")
	if err != nil {
		t.Fatalf("Shell: %v", err)
	}
	if got := strings.TrimSpace(output); got != "4242.17 8123.55" {
		t.Errorf("uptime = %q", got)
	}
}

func TestShellFailureIsProcessError(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Shell(t.Context(), "rm /data/local/tmp/missing")
	var processError *process.ProcessError
	if !errors.As(err, &processError) {
		t.Fatalf("error %T is not *process.ProcessError: %v", err, err)
	}
	if !strings.Contains(string(processError.Output), "No such file") {
		t.Errorf("ProcessError output = %q, want the device's message", processError.Output)
	}
}

func TestShellNoCheck(t *testing.T) {
	client, _ := newTestClient(t)

	output, exitCode, err := client.ShellNoCheck(t.Context(), "rm -r /data/local/tmp/missing")
	if err != nil {
		t.Fatalf("ShellNoCheck: %v", err)
	}
	if exitCode == 0 {
		t.Error("exit code should be nonzero for a failed rm")
	}
	if !strings.Contains(output, "No such file") {
		t.Errorf("output = %q, want the device's message", output)
	}
}

func TestShellNoCheckUnknownDevice(t *testing.T) {
	client, _ := newTestClient(t)

	_, exitCode, err := client.ForDevice("absent").ShellNoCheck(t.Context(), "true")
	if err != nil {
		t.Fatalf("ShellNoCheck should not fail on exit status: %v", err)
	}
	if exitCode == 0 {
		t.Error("exit code should be nonzero for an unknown device")
	}
}

func TestShellStatus(t *testing.T) {
	client, _ := newTestClient(t)

	tests := []struct {
		command    string
		wantStatus int
		wantOutput string
	}{
		{"true", 0, ""},
		{"false", 1, ""},
		{"echo hello", 0, "hello"},
		{"no-such-tool", 127, "/system/bin/sh: no-such-tool: not found"},
	}
	for _, test := range tests {
		t.Run(test.command, func(t *testing.T) {
			output, status, err := client.ShellStatus(t.Context(), test.command)
			if err != nil {
				t.Fatalf("ShellStatus: %v", err)
			}
			if status != test.wantStatus {
				t.Errorf("status = %d, want %d", status, test.wantStatus)
			}
			if got := strings.TrimSpace(output); got != test.wantOutput {
				t.Errorf("output = %q, want %q", got, test.wantOutput)
			}
		})
	}
}

func TestShellChecked(t *testing.T) {
	client, _ := newTestClient(t)

	if _, err := client.ShellChecked(t.Context(), "true"); err != nil {
		t.Errorf("ShellChecked(true): %v", err)
	}

	_, err := client.ShellChecked(t.Context(), "false")
	var remoteError *RemoteCommandError
	if !errors.As(err, &remoteError) {
		t.Fatalf("error %T is not *RemoteCommandError: %v", err, err)
	}
	if remoteError.Status != 1 || remoteError.Command != "false" {
		t.Errorf("RemoteCommandError = %+v", remoteError)
	}
}

func TestParseShellStatus(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantBody   string
		wantStatus int
		wantErr    bool
	}{
		{"unix line endings", "hello\n\n0\n", "hello\n", 0, false},
		{"crlf line endings", "hello\r\n\r\n3\r\n", "hello\r\n", 3, false},
		{"no output", "\n1\n", "", 1, false},
		{"output without newline", "10", "", -1, true},
		{"not a number", "hello\nworld\n", "", -1, true},
		{"status out of range", "x\n300\n", "", -1, true},
		{"empty", "", "", -1, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			body, status, err := parseShellStatus(test.output)
			if test.wantErr {
				if err == nil {
					t.Fatalf("parseShellStatus(%q) should fail", test.output)
				}
				if !errors.Is(err, errNoStatus) {
					t.Errorf("error = %v, want errNoStatus", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseShellStatus(%q): %v", test.output, err)
			}
			if body != test.wantBody || status != test.wantStatus {
				t.Errorf("parseShellStatus(%q) = (%q, %d), want (%q, %d)",
					test.output, body, status, test.wantBody, test.wantStatus)
			}
		})
	}
}

func TestPushPullRoundTrip(t *testing.T) {
	client, fake := newTestClient(t)

	content := bytes.Repeat([]byte("payload-"), 4096)
	local := filepath.Join(t.TempDir(), "upload")
	if err := os.WriteFile(local, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	const remote = "/data/local/tmp/adb_test_file"
	if _, err := client.Push(t.Context(), local, remote); err != nil {
		t.Fatalf("Push: %v", err)
	}
	onDevice, err := os.ReadFile(fake.DevicePath(testSerial, remote))
	if err != nil {
		t.Fatalf("reading pushed file: %v", err)
	}
	if !bytes.Equal(onDevice, content) {
		t.Error("pushed file differs from the source")
	}

	pulled := filepath.Join(t.TempDir(), "download")
	if _, err := client.Pull(t.Context(), remote, pulled); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	back, err := os.ReadFile(pulled)
	if err != nil {
		t.Fatalf("reading pulled file: %v", err)
	}
	if !bytes.Equal(back, content) {
		t.Error("pulled file differs from the source")
	}
}

func TestPullMissingRemote(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Pull(t.Context(), "/data/local/tmp/missing", filepath.Join(t.TempDir(), "x"))
	var processError *process.ProcessError
	if !errors.As(err, &processError) {
		t.Fatalf("error %T is not *process.ProcessError: %v", err, err)
	}
}

func TestSync(t *testing.T) {
	client, fake := newTestClient(t)

	productOut := t.TempDir()
	staged := filepath.Join(productOut, "data", "local", "tmp", "adb_test_dir")
	if err := os.MkdirAll(staged, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staged, "one"), []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := client.WithProductOut(productOut).Sync(t.Context(), "data"); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	synced, err := os.ReadFile(fake.DevicePath(testSerial, "/data/local/tmp/adb_test_dir/one"))
	if err != nil {
		t.Fatalf("reading synced file: %v", err)
	}
	if string(synced) != "first" {
		t.Errorf("synced content = %q, want %q", synced, "first")
	}
}

func TestSyncWithoutProductOut(t *testing.T) {
	client, _ := newTestClient(t)
	t.Setenv("ANDROID_PRODUCT_OUT", "")

	if _, err := client.Sync(t.Context(), "data"); err == nil {
		t.Fatal("Sync should fail without a product directory")
	}
}

func TestHelpAndVersion(t *testing.T) {
	client, _ := newTestClient(t)

	help, err := client.Help(t.Context())
	if err != nil {
		t.Fatalf("Help: %v", err)
	}
	if !strings.Contains(help, "-s SERIAL") {
		t.Errorf("help output = %q", help)
	}

	version, err := client.Version(t.Context())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if !strings.Contains(version, "1.0.41") {
		t.Errorf("version output = %q", version)
	}
}

func TestProperties(t *testing.T) {
	client, _ := newTestClient(t)

	model, err := client.GetProp(t.Context(), "ro.product.model")
	if err != nil {
		t.Fatalf("GetProp: %v", err)
	}
	if model != "Fake_Device" {
		t.Errorf("ro.product.model = %q, want Fake_Device", model)
	}

	unset, err := client.GetProp(t.Context(), "debug.bridgecheck.unset")
	if err != nil {
		t.Fatalf("GetProp(unset): %v", err)
	}
	if unset != "" {
		t.Errorf("unset property = %q, want empty", unset)
	}

	if err := client.SetProp(t.Context(), "debug.bridgecheck.marker", "42"); err != nil {
		t.Fatalf("SetProp: %v", err)
	}
	marker, err := client.GetProp(t.Context(), "debug.bridgecheck.marker")
	if err != nil {
		t.Fatalf("GetProp(marker): %v", err)
	}
	if marker != "42" {
		t.Errorf("marker = %q, want 42", marker)
	}
}

func TestForwardAndReverse(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := t.Context()

	if err := client.Forward(ctx, "tcp:6100", "tcp:7100"); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := client.Forward(ctx, "tcp:6101", "tcp:7101"); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := client.ForwardRemove(ctx, "tcp:6100"); err != nil {
		t.Fatalf("ForwardRemove: %v", err)
	}
	table, err := os.ReadFile(filepath.Join(fake.Root, "forward."+testSerial))
	if err != nil {
		t.Fatalf("reading forward table: %v", err)
	}
	if got := strings.TrimSpace(string(table)); got != "tcp:6101 tcp:7101" {
		t.Errorf("forward table = %q", got)
	}
	if err := client.ForwardRemoveAll(ctx); err != nil {
		t.Fatalf("ForwardRemoveAll: %v", err)
	}

	if err := client.Reverse(ctx, "tcp:8100", "tcp:9100"); err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if err := client.ReverseRemove(ctx, "tcp:8100"); err != nil {
		t.Fatalf("ReverseRemove: %v", err)
	}
	if err := client.ReverseRemoveAll(ctx); err != nil {
		t.Fatalf("ReverseRemoveAll: %v", err)
	}
}

func TestDaemonCommands(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := t.Context()

	if _, err := client.Root(ctx); err != nil {
		t.Errorf("Root: %v", err)
	}
	if _, err := client.Unroot(ctx); err != nil {
		t.Errorf("Unroot: %v", err)
	}
	if err := client.WaitForDevice(ctx); err != nil {
		t.Errorf("WaitForDevice: %v", err)
	}
	if output, err := client.Connect(ctx, "192.168.1.20:5555"); err != nil || !strings.Contains(output, "connected") {
		t.Errorf("Connect = %q, %v", output, err)
	}
	if _, err := client.Disconnect(ctx, "192.168.1.20:5555"); err != nil {
		t.Errorf("Disconnect: %v", err)
	}

	apk := filepath.Join(t.TempDir(), "app.apk")
	if err := os.WriteFile(apk, []byte("PK"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if output, err := client.Install(ctx, apk); err != nil || !strings.Contains(output, "Success") {
		t.Errorf("Install = %q, %v", output, err)
	}
}

func TestForcedToolFailure(t *testing.T) {
	client, _ := newTestClient(t)
	t.Setenv("FAKE_BRIDGE_FAIL", "version")

	_, err := client.Version(t.Context())
	var processError *process.ProcessError
	if !errors.As(err, &processError) {
		t.Fatalf("error %T is not *process.ProcessError: %v", err, err)
	}
	if processError.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", processError.ExitCode)
	}
}
