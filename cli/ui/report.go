package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"
	"github.com/samber/lo"

	"github.com/ostler-dev/ostler/namegen"
	"github.com/ostler-dev/ostler/orchestrator"
	"github.com/ostler-dev/ostler/probe"
)

var sectionColor = color.New(color.FgHiWhite, color.Bold)

// RenderReport writes the human-readable end-of-run summary: one line per
// host with its pipeline outcome, then one line per validation probe.
// The report is purely informational and consumed by nobody but the operator.
func RenderReport(w io.Writer, run namegen.ID, result *orchestrator.RunResult, probes []probe.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionColor.Sprintf("  Provisioning report — run %s  ", run))
	fmt.Fprintln(w)

	rows := [][]string{{"HOST", "ROLE", "STATUS", "STEPS COMPLETED"}}
	for _, pipeline := range result.Pipelines {
		rows = append(rows, []string{
			pipeline.Host.Address,
			string(pipeline.Host.Role),
			pipelineStatus(pipeline),
			lo.Ternary(len(pipeline.StepsCompleted) > 0, strings.Join(pipeline.StepsCompleted, ", "), "-"),
		})
	}
	writeTable(w, rows)

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionColor.Sprint("  Endpoints  "))
	fmt.Fprintln(w)

	if len(probes) == 0 {
		fmt.Fprintln(w, "validation skipped")
		return
	}

	rows = [][]string{{"ENDPOINT", "ROLE", "RESULT"}}
	for _, pr := range probes {
		rows = append(rows, []string{
			pr.Probe.Endpoint(),
			string(pr.Probe.Host.Role),
			probeStatus(pr),
		})
	}
	writeTable(w, rows)
}

func pipelineStatus(pipeline *orchestrator.PipelineResult) string {
	if pipeline.Success() {
		return color.HiGreenString("✓ provisioned")
	}

	switch failure := pipeline.Failure.(type) {
	case *orchestrator.TimeoutError:
		return color.HiRedString("✗ unreachable")
	case *orchestrator.StepError:
		return color.HiRedString("✗ step '%s'", failure.Step)
	default:
		return color.HiRedString("✗ failed")
	}
}

func probeStatus(pr probe.Result) string {
	if pr.OK {
		return color.HiGreenString("✓ %s", pr.Detail)
	}
	return color.HiRedString("✗ %s", pr.Detail)
}

// writeTable pads columns by grapheme cluster count so that status symbols
// and non-ASCII output keep the columns aligned.
func writeTable(w io.Writer, rows [][]string) {
	columns := len(rows[0])
	widths := make([]int, columns)
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], width(cell))
		}
	}

	for _, row := range rows {
		line := ""
		for i, cell := range row {
			line += cell
			if i < columns-1 {
				line += strings.Repeat(" ", widths[i]-width(cell)+3)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// width ignores ANSI color sequences, which have no visual width.
func width(s string) int {
	stripped := s
	for {
		start := strings.Index(stripped, "\x1b[")
		if start < 0 {
			break
		}
		end := strings.Index(stripped[start:], "m")
		if end < 0 {
			break
		}
		stripped = stripped[:start] + stripped[start+end+1:]
	}
	return uniseg.GraphemeClusterCount(stripped)
}
