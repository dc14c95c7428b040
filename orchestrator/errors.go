package orchestrator

import (
	"fmt"
	"time"
)

// ConfigurationError reports malformed or missing required input: wrong
// address count, unmapped role, bad credential file. Fatal to the whole run.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// ResolutionError reports that the infrastructure-state provider returned
// nothing usable. Fatal to the whole run.
type ResolutionError struct {
	Output string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve hosts from output '%s': %v", e.Output, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that a host never became reachable within the
// readiness budget. Fatal to that host's pipeline only.
type TimeoutError struct {
	Host     string
	Attempts int
	Interval time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("host %s did not become ready after %d attempts %s apart: %v", e.Host, e.Attempts, e.Interval, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// StepError reports a failed provisioning step. The remaining steps for
// that host are skipped; completed steps are not rolled back.
type StepError struct {
	Host  string
	Step  string
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step '%s' failed on host %s: %v", e.Step, e.Host, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}
