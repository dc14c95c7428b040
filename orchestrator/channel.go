package orchestrator

import (
	"context"
	"io"
	"os"
)

// Result is the outcome of one remote command execution. A non-zero exit
// code is not an error at this level; transport failures are.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

type TransferOptions struct {
	// Mode is applied to the remote file after the transfer. Zero means 0644.
	Mode os.FileMode
	// Compress streams the content zstd-compressed over the wire.
	Compress bool
}

// Channel is the remote-execution capability scoped to a single host.
// Step actions only ever see this interface, so they can be exercised
// against a fake without any network access.
type Channel interface {
	Execute(ctx context.Context, command string) (Result, error)
	Transfer(ctx context.Context, src io.Reader, remotePath string, options TransferOptions) error
	Close() error
}

// Dialer opens a channel to a host address. Each dial attempt carries its
// own connection timeout, independent of the readiness polling interval.
type Dialer interface {
	Dial(ctx context.Context, address string) (Channel, error)
}
