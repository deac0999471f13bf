// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// summaryStyles colors the status column. All colors use ANSI
// 256-color codes.
type summaryStyles struct {
	pass, fail, errored, skip lipgloss.Style
	faint, bold               lipgloss.Style
}

func newSummaryStyles(w io.Writer, styled bool) summaryStyles {
	renderer := lipgloss.NewRenderer(w)
	if styled {
		renderer.SetColorProfile(termenv.ANSI256)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return summaryStyles{
		pass:    renderer.NewStyle().Foreground(lipgloss.Color("42")),
		fail:    renderer.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		errored: renderer.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		skip:    renderer.NewStyle().Foreground(lipgloss.Color("244")),
		faint:   renderer.NewStyle().Foreground(lipgloss.Color("244")),
		bold:    renderer.NewStyle().Bold(true),
	}
}

func (s summaryStyles) status(status Status) string {
	label := fmt.Sprintf("%-5s", strings.ToUpper(string(status)))
	switch status {
	case StatusPass:
		return s.pass.Render(label)
	case StatusFail:
		return s.fail.Render(label)
	case StatusError:
		return s.errored.Render(label)
	default:
		return s.skip.Render(label)
	}
}

// WriteSummary prints one line per result followed by totals. styled
// enables color; without it the output is plain ASCII.
func WriteSummary(w io.Writer, report *Report, styled bool) error {
	styles := newSummaryStyles(w, styled)

	var out strings.Builder
	fmt.Fprintf(&out, "%s %s\n", styles.bold.Render("run"), report.RunID)
	bridgeLine := report.Bridge
	if report.BridgeVersion != "" {
		bridgeLine += " (" + report.BridgeVersion + ")"
	}
	fmt.Fprintf(&out, "%s\n", styles.faint.Render(fmt.Sprintf("bridge %s, seed %d, %s, %d device(s)",
		bridgeLine, report.Seed, report.Algorithm, len(report.Devices))))
	if len(report.Results) > 0 {
		out.WriteString("\n")
	}

	scenarioWidth, serialWidth := 8, 6
	for _, result := range report.Results {
		scenarioWidth = max(scenarioWidth, len(result.Scenario))
		serialWidth = max(serialWidth, len(result.Serial))
	}

	for _, result := range report.Results {
		detail := result.Duration.Round(time.Millisecond).String()
		if result.Bytes > 0 {
			detail += ", " + humanize.IBytes(uint64(result.Bytes))
		}
		fmt.Fprintf(&out, "%s  %-*s  %-*s  %s\n",
			styles.status(result.Status),
			scenarioWidth, result.Scenario,
			serialWidth, result.Serial,
			styles.faint.Render(detail))
		if result.Error != "" {
			for _, line := range strings.Split(strings.TrimRight(result.Error, "\n"), "\n") {
				fmt.Fprintf(&out, "       %s\n", line)
			}
		}
	}

	counts := report.Counts()
	totals := fmt.Sprintf("%d passed, %d failed, %d errors, %d skipped",
		counts.Pass, counts.Fail, counts.Error, counts.Skip)
	if elapsed := report.Elapsed(); elapsed > 0 {
		totals += " in " + elapsed.Round(time.Millisecond).String()
	}
	fmt.Fprintf(&out, "\n%s %s\n", styles.status(report.Status), totals)
	if !report.StartedAt.IsZero() {
		fmt.Fprintf(&out, "%s\n", styles.faint.Render("started "+humanize.Time(report.StartedAt)))
	}

	_, err := io.WriteString(w, out.String())
	return err
}
