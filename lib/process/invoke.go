// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Mode selects how a single invocation captures output and whether a
// nonzero exit status is an error.
type Mode struct {
	// MergeStreams writes stderr into the same buffer as stdout, in
	// the order the child produced it.
	MergeStreams bool

	// CheckExit turns a nonzero exit status into a *ProcessError.
	CheckExit bool
}

var (
	// Checked merges the streams and fails on nonzero exit.
	Checked = Mode{MergeStreams: true, CheckExit: true}

	// Combined merges the streams and returns the exit code unjudged.
	Combined = Mode{MergeStreams: true}

	// Separate keeps stdout and stderr apart and returns the exit code
	// unjudged.
	Separate = Mode{}
)

// String names the mode for log output.
func (m Mode) String() string {
	switch m {
	case Checked:
		return "checked"
	case Combined:
		return "combined"
	case Separate:
		return "separate"
	default:
		return fmt.Sprintf("merge=%t,check=%t", m.MergeStreams, m.CheckExit)
	}
}

// Result is the outcome of one invocation. It is not retained beyond
// the call that produced it.
type Result struct {
	// Argv is the full command line, program first.
	Argv []string

	// Stdout holds standard output, or the interleaved output of both
	// streams when the mode merged them.
	Stdout []byte

	// Stderr holds standard error. Nil when streams were merged.
	Stderr []byte

	// ExitCode is the child's exit status. -1 if the child could not
	// be started or was killed by a signal.
	ExitCode int
}

// Output returns Stdout as a string.
func (r Result) Output() string {
	return string(r.Stdout)
}

// ProcessError reports a nonzero exit from a checked invocation.
type ProcessError struct {
	Argv     []string
	ExitCode int

	// Output is the combined stdout and stderr of the failed command,
	// surfaced for diagnosis.
	Output []byte
}

func (e *ProcessError) Error() string {
	output := strings.TrimSpace(string(e.Output))
	if output == "" {
		return fmt.Sprintf("%s: exit status %d", strings.Join(e.Argv, " "), e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d\n%s", strings.Join(e.Argv, " "), e.ExitCode, output)
}

// Invoker spawns child processes. The zero value is usable: no logging,
// no timeout.
type Invoker struct {
	// Logger receives one debug record per invocation. Nil disables
	// logging.
	Logger *slog.Logger

	// Timeout bounds each invocation when positive. Zero means wait
	// forever, which is the default.
	Timeout time.Duration

	// Env, when non-nil, replaces the child's environment.
	Env []string
}

// Run executes argv as a child process, waits for it to exit, and
// captures its output according to mode. argv[0] is resolved via PATH
// when it contains no path separator.
func (inv *Invoker) Run(ctx context.Context, mode Mode, argv ...string) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: -1}, errors.New("process: empty command line")
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	configureProcessGroup(cmd)
	if inv.Env != nil {
		cmd.Env = inv.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if mode.MergeStreams {
		// Both streams share one writer; exec serializes the copies
		// so the buffer sees each write whole.
		cmd.Stderr = &stdout
	} else {
		cmd.Stderr = &stderr
	}

	result := Result{Argv: argv, ExitCode: -1}
	started := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(started)

	result.Stdout = stdout.Bytes()
	if !mode.MergeStreams {
		result.Stderr = stderr.Bytes()
	}

	var exitError *exec.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitError) && ctx.Err() == nil:
		result.ExitCode = exitError.ExitCode()
	case ctx.Err() != nil:
		inv.log(ctx, mode, result, elapsed)
		return result, fmt.Errorf("%s: %w", argv[0], ctx.Err())
	default:
		inv.log(ctx, mode, result, elapsed)
		return result, fmt.Errorf("starting %s: %w", argv[0], runErr)
	}

	inv.log(ctx, mode, result, elapsed)

	if mode.CheckExit && result.ExitCode != 0 {
		output := result.Stdout
		if !mode.MergeStreams {
			output = append(append([]byte{}, result.Stdout...), result.Stderr...)
		}
		return Result{}, &ProcessError{
			Argv:     argv,
			ExitCode: result.ExitCode,
			Output:   output,
		}
	}

	return result, nil
}

func (inv *Invoker) log(ctx context.Context, mode Mode, result Result, elapsed time.Duration) {
	if inv.Logger == nil {
		return
	}
	inv.Logger.DebugContext(ctx, "invoked",
		"argv", strings.Join(result.Argv, " "),
		"mode", mode.String(),
		"exit_code", result.ExitCode,
		"stdout", humanize.IBytes(uint64(len(result.Stdout))),
		"stderr", humanize.IBytes(uint64(len(result.Stderr))),
		"elapsed", elapsed.Round(time.Millisecond),
	)
}
