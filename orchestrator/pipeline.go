package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Step is one named unit of remote work. Actions must be idempotent:
// re-running a step on a host already in the target state must succeed.
type Step struct {
	Name   string
	Action func(ctx context.Context, session *Session) error
}

// Pipeline is the ordered list of provisioning steps bound to a role.
// Steps run strictly in declaration order; there is no dependency graph.
type Pipeline struct {
	Role  Role
	Steps []Step
}

// Session is the scoped remote-execution context handed to step actions.
type Session struct {
	Host    *Host
	Channel Channel

	Log *slog.Logger
}

// Run executes a command on the host and treats a non-zero exit code as an
// error, which stops the step (and therefore the host's pipeline).
func (s *Session) Run(ctx context.Context, command string) (string, error) {
	s.Log.Debug("Running remote command", "command", command)

	result, err := s.Channel.Execute(ctx, command)
	if err != nil {
		return result.Stdout, err
	}
	if result.ExitCode != 0 {
		if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
			return result.Stdout, fmt.Errorf("exit code %d: %s", result.ExitCode, stderr)
		}
		return result.Stdout, fmt.Errorf("exit code %d", result.ExitCode)
	}
	return result.Stdout, nil
}

// Push transfers a stream to a file on the host.
func (s *Session) Push(ctx context.Context, src io.Reader, remotePath string, options TransferOptions) error {
	s.Log.Debug("Transferring file", "path", remotePath, "compress", options.Compress)

	if err := s.Channel.Transfer(ctx, src, remotePath, options); err != nil {
		return fmt.Errorf("failed to transfer file to '%s': %w", remotePath, err)
	}
	return nil
}
