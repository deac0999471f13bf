// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns "prefix-N" with N increasing across the test
// binary. Tests use it for fake device serials and scratch names that
// must not collide between subtests.
//
//	serial := testutil.UniqueID("emulator") // "emulator-1", "emulator-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
