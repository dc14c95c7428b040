package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultReadyAttempts = 30
	DefaultReadyInterval = 10 * time.Second
	DefaultStepTimeout   = 10 * time.Minute
)

// readinessCommand is the trivial command used to decide that a host
// accepts remote execution.
const readinessCommand = "true"

type Config struct {
	Dialer Dialer
	Logger *slog.Logger

	// ReadyAttempts and ReadyInterval bound the readiness gate:
	// attempts × interval is the worst-case wait for one host.
	ReadyAttempts int
	ReadyInterval time.Duration

	// StepTimeout applies to each step individually; a timeout is treated
	// exactly like a command failure.
	StepTimeout time.Duration
}

type Orchestrator struct {
	config Config
	log    *slog.Logger
}

func New(config Config) (*Orchestrator, error) {
	if config.Dialer == nil {
		return nil, &ConfigurationError{Reason: "orchestrator requires a dialer"}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.ReadyAttempts == 0 {
		config.ReadyAttempts = DefaultReadyAttempts
	}
	if config.ReadyInterval == 0 {
		config.ReadyInterval = DefaultReadyInterval
	}
	if config.StepTimeout == 0 {
		config.StepTimeout = DefaultStepTimeout
	}

	return &Orchestrator{
		config: config,
		log:    config.Logger,
	}, nil
}

// Run provisions all hosts concurrently, one goroutine per host. Within a
// host the pipeline is strictly sequential; across hosts no ordering is
// guaranteed. A host's failure never aborts its siblings.
func (o *Orchestrator) Run(ctx context.Context, hosts []*Host, pipelines map[Role]*Pipeline) (*RunResult, error) {
	for _, host := range hosts {
		if _, ok := pipelines[host.Role]; !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("no pipeline defined for role '%s' (host %s)", host.Role, host.Address)}
		}
	}

	results := make([]*PipelineResult, len(hosts))

	var wg sync.WaitGroup
	for i, host := range hosts {
		wg.Add(1)
		go func(i int, host *Host) {
			defer wg.Done()
			results[i] = o.provisionHost(ctx, host, pipelines[host.Role])
		}(i, host)
	}
	wg.Wait()

	return &RunResult{Pipelines: results}, nil
}

func (o *Orchestrator) provisionHost(ctx context.Context, host *Host, pipeline *Pipeline) *PipelineResult {
	log := o.log.With("host", host.Address, "role", host.Role)
	result := &PipelineResult{Host: host}

	channel, err := o.awaitReady(ctx, host, log)
	if err != nil {
		log.Error("Host never became ready", "error", err)
		result.Failure = err
		return result
	}
	result.Channel = channel

	session := &Session{
		Host:    host,
		Channel: channel,
		Log:     log,
	}

	for _, step := range pipeline.Steps {
		log.Info("Running step", "step", step.Name)
		started := time.Now()

		stepCtx, cancel := context.WithTimeout(ctx, o.config.StepTimeout)
		err := step.Action(stepCtx, session)
		cancel()

		if err != nil {
			log.Error("Step failed", "step", step.Name, "error", err, "duration", time.Since(started))
			result.Failure = &StepError{Host: host.Address, Step: step.Name, Cause: err}
			return result
		}

		log.Info("Step completed", "step", step.Name, "duration", time.Since(started))
		result.StepsCompleted = append(result.StepsCompleted, step.Name)
	}

	log.Info("Host fully provisioned", "steps", len(result.StepsCompleted))
	return result
}

// awaitReady polls the host until it executes a trivial command, sleeping
// the configured interval between attempts. On success the channel is
// returned still open and reused for the host's pipeline.
func (o *Orchestrator) awaitReady(ctx context.Context, host *Host, log *slog.Logger) (Channel, error) {
	host.readyState = ReadyStateProbing

	var lastErr error
	for attempt := 1; attempt <= o.config.ReadyAttempts; attempt++ {
		channel, err := o.config.Dialer.Dial(ctx, host.Address)
		if err == nil {
			result, execErr := channel.Execute(ctx, readinessCommand)
			if execErr == nil && result.ExitCode == 0 {
				host.readyState = ReadyStateReady
				log.Info("Host is ready", "attempt", attempt)
				return channel, nil
			}

			_ = channel.Close()
			if execErr != nil {
				err = execErr
			} else {
				err = fmt.Errorf("readiness command exited with code %d", result.ExitCode)
			}
		}
		lastErr = err
		log.Debug("Host not ready yet", "attempt", attempt, "error", err)

		if attempt < o.config.ReadyAttempts {
			select {
			case <-time.After(o.config.ReadyInterval):
			case <-ctx.Done():
				host.readyState = ReadyStateUnreachable
				return nil, &TimeoutError{Host: host.Address, Attempts: attempt, Interval: o.config.ReadyInterval, Err: ctx.Err()}
			}
		}
	}

	host.readyState = ReadyStateUnreachable
	return nil, &TimeoutError{Host: host.Address, Attempts: o.config.ReadyAttempts, Interval: o.config.ReadyInterval, Err: lastErr}
}
