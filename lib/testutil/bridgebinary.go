// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// BridgeBinaryEnv names the environment variable that points live
// tests at a specific bridge executable.
const BridgeBinaryEnv = "BRIDGECHECK_BRIDGE"

// BridgeBinary resolves the real bridge tool for live-device tests:
// the path in $BRIDGECHECK_BRIDGE when set, otherwise "adb" on PATH.
// Skips the test when neither exists, so the suite stays green on
// machines without the tool.
func BridgeBinary(t *testing.T) string {
	t.Helper()

	if configured := os.Getenv(BridgeBinaryEnv); configured != "" {
		absolutePath, err := filepath.Abs(configured)
		if err != nil {
			t.Fatalf("resolving %s=%s: %v", BridgeBinaryEnv, configured, err)
		}
		if _, err := os.Stat(absolutePath); err != nil {
			t.Fatalf("bridge from %s not found at %s: %v", BridgeBinaryEnv, absolutePath, err)
		}
		return absolutePath
	}

	path, err := exec.LookPath("adb")
	if err != nil {
		t.Skipf("no bridge tool: set %s or put adb on PATH", BridgeBinaryEnv)
	}
	return path
}
