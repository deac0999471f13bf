// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/bridgecheck/bridgecheck/lib/bridge"
)

// Status is the outcome of one result, or of the whole run.
type Status string

const (
	// StatusPass means every check held.
	StatusPass Status = "pass"

	// StatusFail means a check did not hold: a digest mismatch or
	// malformed output.
	StatusFail Status = "fail"

	// StatusError means the scenario could not complete, usually
	// because the tool exited nonzero or could not be started.
	StatusError Status = "error"

	// StatusSkip means the scenario did not run: no devices, an
	// offline device, or a device locked by another run.
	StatusSkip Status = "skip"
)

// Result is one scenario execution.
type Result struct {
	Scenario string `json:"scenario" yaml:"scenario"`

	// Serial is empty for scenarios that run once per suite.
	Serial string `json:"serial,omitempty" yaml:"serial,omitempty"`

	Status Status `json:"status" yaml:"status"`

	// Error explains a non-passing status.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Bytes is the payload volume the scenario moved across the
	// bridge, in either direction.
	Bytes int64 `json:"bytes,omitempty" yaml:"bytes,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the record of one run.
type Report struct {
	RunID string `json:"run_id" yaml:"run_id"`

	// HarnessVersion is the bridgecheck build that produced the report.
	HarnessVersion string `json:"harness_version,omitempty" yaml:"harness_version,omitempty"`

	// Bridge is the tool under test as configured; BridgeVersion is
	// the first line of its version output.
	Bridge        string `json:"bridge" yaml:"bridge"`
	BridgeVersion string `json:"bridge_version,omitempty" yaml:"bridge_version,omitempty"`

	Seed      uint64 `json:"seed" yaml:"seed"`
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	Status Status `json:"status" yaml:"status"`

	// Devices is the enumeration the run was based on.
	Devices []bridge.Device `json:"devices" yaml:"devices"`

	Results []Result `json:"results" yaml:"results"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Add appends a result.
func (r *Report) Add(result Result) {
	r.Results = append(r.Results, result)
}

// Counts tallies results by status.
type Counts struct {
	Pass  int `json:"pass" yaml:"pass"`
	Fail  int `json:"fail" yaml:"fail"`
	Error int `json:"error" yaml:"error"`
	Skip  int `json:"skip" yaml:"skip"`
}

// Total is the number of results counted.
func (c Counts) Total() int {
	return c.Pass + c.Fail + c.Error + c.Skip
}

// Counts tallies the report's results.
func (r *Report) Counts() Counts {
	var counts Counts
	for _, result := range r.Results {
		switch result.Status {
		case StatusPass:
			counts.Pass++
		case StatusFail:
			counts.Fail++
		case StatusError:
			counts.Error++
		case StatusSkip:
			counts.Skip++
		}
	}
	return counts
}

// Failed reports whether any result failed or errored.
func (r *Report) Failed() bool {
	counts := r.Counts()
	return counts.Fail+counts.Error > 0
}

// Finish stamps the end time and derives the run status: fail when
// anything failed or errored, skip when nothing ran, pass otherwise.
func (r *Report) Finish(at time.Time) {
	r.FinishedAt = at
	counts := r.Counts()
	switch {
	case counts.Fail+counts.Error > 0:
		r.Status = StatusFail
	case counts.Pass == 0:
		r.Status = StatusSkip
	default:
		r.Status = StatusPass
	}
}

// Elapsed is the wall time of the run.
func (r *Report) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
