// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"errors"
	"fmt"

	"github.com/bridgecheck/bridgecheck/lib/report"
)

// ErrNoDevices is returned by [Runner.Run] when enumeration finds no
// attached devices.
var ErrNoDevices = errors.New("no devices attached")

// NoDevicesMessage is what callers print when the run is gated on
// [ErrNoDevices].
const NoDevicesMessage = "Test suite must be run with attached devices"

// AssertionError reports a check that did not hold.
type AssertionError struct {
	// Check names what was verified, for example "push digest".
	Check    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

// SkipError reports that a scenario could not run in this environment.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

// Skip returns a *SkipError with a formatted reason.
func Skip(format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// classify maps a scenario error to a report status.
func classify(err error) report.Status {
	var skip *SkipError
	var assertion *AssertionError
	switch {
	case err == nil:
		return report.StatusPass
	case errors.As(err, &skip):
		return report.StatusSkip
	case errors.As(err, &assertion):
		return report.StatusFail
	default:
		return report.StatusError
	}
}
