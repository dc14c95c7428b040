package orchestrator

import "github.com/samber/lo"

// PipelineResult records what one host's pipeline achieved.
type PipelineResult struct {
	Host *Host

	// StepsCompleted lists the names of the steps that finished, in order.
	StepsCompleted []string

	// Failure is nil on full success, a *TimeoutError if the host never
	// became ready, or a *StepError for the first failing step.
	Failure error

	// Channel is the host's connection, left open for post-provisioning
	// probes when the host became ready. The caller closes it.
	Channel Channel
}

func (r *PipelineResult) Success() bool {
	return r.Failure == nil
}

// RunResult aggregates the per-host results of one orchestration run.
type RunResult struct {
	Pipelines []*PipelineResult
}

// Success reports whether every host completed all of its steps.
// Validation probe outcomes are deliberately not part of this.
func (r *RunResult) Success() bool {
	return lo.EveryBy(r.Pipelines, (*PipelineResult).Success)
}

// Failed returns the results of hosts that failed readiness or a step.
func (r *RunResult) Failed() []*PipelineResult {
	return lo.Filter(r.Pipelines, func(p *PipelineResult, _ int) bool {
		return !p.Success()
	})
}

// Close closes every channel still open after the run.
func (r *RunResult) Close() {
	for _, pipeline := range r.Pipelines {
		if pipeline.Channel != nil {
			_ = pipeline.Channel.Close()
		}
	}
}
