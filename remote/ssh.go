package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path"
	"sync/atomic"
	"time"

	"github.com/alessio/shellescape"
	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
	"golang.org/x/crypto/ssh"

	"github.com/ostler-dev/ostler/orchestrator"
)

const keepaliveInterval = 30 * time.Second

type DialerConfig struct {
	User   string
	Signer ssh.Signer
	Port   int

	// ConnectTimeout bounds a single dial attempt. The readiness gate owns
	// the retry budget; this only keeps one attempt from hanging.
	ConnectTimeout time.Duration

	Logger *slog.Logger
}

// Dialer opens SSH channels to hosts using a shared credential.
type Dialer struct {
	config DialerConfig
	log    *slog.Logger
}

// Dialer implements orchestrator.Dialer
var _ orchestrator.Dialer = (*Dialer)(nil)

func NewDialer(config DialerConfig) (*Dialer, error) {
	if config.Signer == nil {
		return nil, &orchestrator.ConfigurationError{Reason: "ssh dialer requires a credential"}
	}
	if config.User == "" {
		return nil, &orchestrator.ConfigurationError{Reason: "ssh dialer requires a username"}
	}
	if config.Port == 0 {
		config.Port = 22
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Dialer{config: config, log: config.Logger}, nil
}

func (d *Dialer) Dial(ctx context.Context, address string) (orchestrator.Channel, error) {
	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", address, d.config.Port), &ssh.ClientConfig{
		User:            d.config.User,
		Timeout:         d.config.ConnectTimeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(d.config.Signer),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	channel := &sshChannel{
		address: address,
		client:  client,
		log:     d.log.With("host", address),
	}
	go channel.keepalive()

	return channel, nil
}

// sshChannel executes commands and transfers files over one SSH connection.
// The connection is exclusive to the host's pipeline goroutine.
type sshChannel struct {
	address string
	client  *ssh.Client
	log     *slog.Logger

	closed atomic.Bool
}

// sshChannel implements orchestrator.Channel
var _ orchestrator.Channel = (*sshChannel)(nil)

// keepalive keeps the connection from dying during long installation steps.
func (c *sshChannel) keepalive() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for range ticker.C {
		if c.closed.Load() {
			return
		}
		if _, _, err := c.client.SendRequest("keepalive@ostler", true, nil); err != nil {
			if !c.closed.Load() {
				c.log.Warn("SSH keepalive failed", "error", err)
			}
			return
		}
	}
}

func (c *sshChannel) Execute(ctx context.Context, command string) (orchestrator.Result, error) {
	var result orchestrator.Result

	session, err := c.client.NewSession()
	if err != nil {
		return result, fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	// Closing the session is the only way to abandon a running command.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Close()
		case <-done:
		}
	}()

	err = session.Run(command)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		return result, fmt.Errorf("failed to run command on %s: %w", c.address, err)
	}
	return result, nil
}

func (c *sshChannel) Transfer(ctx context.Context, src io.Reader, remotePath string, options orchestrator.TransferOptions) error {
	session, err := c.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Close()
		case <-done:
		}
	}()

	mode := options.Mode
	if mode == 0 {
		mode = 0o644
	}

	stdin := lo.Must(session.StdinPipe())
	receiver := fmt.Sprintf(
		"mkdir -p %s && %s > %s && chmod %o %s",
		shellescape.Quote(path.Dir(remotePath)),
		lo.Ternary(options.Compress, "zstd --decompress", "cat"),
		shellescape.Quote(remotePath),
		mode,
		shellescape.Quote(remotePath),
	)
	if err := session.Start(receiver); err != nil {
		return fmt.Errorf("failed to start receiver on %s: %w", c.address, err)
	}

	if options.Compress {
		writer := lo.Must(zstd.NewWriter(stdin))
		if _, err := io.Copy(writer, src); err != nil {
			return fmt.Errorf("failed to stream compressed content: %w", err)
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("failed to flush compressed content: %w", err)
		}
	} else {
		if _, err := io.Copy(stdin, src); err != nil {
			return fmt.Errorf("failed to stream content: %w", err)
		}
	}
	if err := stdin.Close(); err != nil {
		return fmt.Errorf("failed to close transfer stream: %w", err)
	}

	if err := session.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("transfer to '%s' on %s failed: %w", remotePath, c.address, err)
	}
	return nil
}

// DialTunnel opens a connection on the remote host through the SSH
// connection. Validation probes use it to reach the Docker daemon socket.
func (c *sshChannel) DialTunnel(network, address string) (net.Conn, error) {
	return c.client.Dial(network, address)
}

func (c *sshChannel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.client.Close()
}
