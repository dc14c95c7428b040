package ui

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostler-dev/ostler/orchestrator"
	"github.com/ostler-dev/ostler/probe"
)

func TestRenderReport(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	healthy := orchestrator.NewHost("10.0.0.1", "application")
	broken := orchestrator.NewHost("10.0.0.2", "ci")

	result := &orchestrator.RunResult{
		Pipelines: []*orchestrator.PipelineResult{
			{
				Host:           healthy,
				StepsCompleted: []string{"install-docker", "run-application"},
			},
			{
				Host:           broken,
				StepsCompleted: []string{"install-docker"},
				Failure:        &orchestrator.StepError{Host: "10.0.0.2", Step: "run-jenkins", Cause: assert.AnError},
			},
		},
	}

	probes := []probe.Result{
		{Probe: probe.Probe{Host: healthy, Kind: probe.KindHTTP, Port: 80, Path: "/"}, OK: true, Detail: "200 OK"},
		{Probe: probe.Probe{Host: broken, Kind: probe.KindHTTP, Port: 8080, Path: "/login"}, OK: false, Detail: "connection refused"},
	}

	var out strings.Builder
	RenderReport(&out, "brave-otter", result, probes)
	report := out.String()

	assert.Contains(t, report, "run brave-otter")
	assert.Contains(t, report, "10.0.0.1")
	assert.Contains(t, report, "✓ provisioned")
	assert.Contains(t, report, "install-docker, run-application")
	assert.Contains(t, report, "✗ step 'run-jenkins'")
	assert.Contains(t, report, "http://10.0.0.1:80/")
	assert.Contains(t, report, "✗ connection refused")

	// Column alignment: every data row starts with the host address column
	lines := strings.Split(report, "\n")
	var header, row string
	for i, line := range lines {
		if strings.HasPrefix(line, "HOST") {
			header = line
			row = lines[i+1]
		}
	}
	require.NotEmpty(t, header)
	assert.Equal(t, strings.Index(header, "ROLE"), strings.Index(row, "application"))
}

func TestRenderReportWithValidationSkipped(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := &orchestrator.RunResult{
		Pipelines: []*orchestrator.PipelineResult{
			{Host: orchestrator.NewHost("10.0.0.1", "application"), StepsCompleted: []string{"install-docker"}},
		},
	}

	var out strings.Builder
	RenderReport(&out, "brave-otter", result, nil)

	assert.Contains(t, out.String(), "validation skipped")
}

func TestRenderReportUnreachableHost(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := &orchestrator.RunResult{
		Pipelines: []*orchestrator.PipelineResult{
			{
				Host:    orchestrator.NewHost("10.0.0.3", "monitoring"),
				Failure: &orchestrator.TimeoutError{Host: "10.0.0.3", Attempts: 30},
			},
		},
	}

	var out strings.Builder
	RenderReport(&out, "brave-otter", result, nil)

	assert.Contains(t, out.String(), "✗ unreachable")
}
