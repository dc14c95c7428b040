// Package probe performs best-effort post-provisioning checks against the
// service endpoints each role is expected to expose. Probes never fail the
// run: every check resolves to an ok/not-ok result that is only reported.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ostler-dev/ostler/orchestrator"
)

type Kind string

const (
	KindHTTP   Kind = "http"
	KindTCP    Kind = "tcp"
	KindDocker Kind = "docker"
)

// Probe is one expected endpoint on a provisioned host.
type Probe struct {
	Host *orchestrator.Host
	Kind Kind

	// Port and Path describe the endpoint for http and tcp probes.
	// Docker probes target the daemon socket through the SSH tunnel.
	Port int
	Path string
}

func (p Probe) Endpoint() string {
	switch p.Kind {
	case KindDocker:
		return fmt.Sprintf("%s docker daemon", p.Host.Address)
	case KindHTTP:
		return fmt.Sprintf("http://%s:%d%s", p.Host.Address, p.Port, p.Path)
	default:
		return fmt.Sprintf("%s:%d", p.Host.Address, p.Port)
	}
}

// Result is the outcome of one probe. OK is false for unreachable hosts,
// refused connections, and HTTP errors alike; Detail says which.
type Result struct {
	Probe  Probe
	OK     bool
	Detail string
}

// Tunneler opens connections on the remote host through an already
// established channel. The SSH channel implements it.
type Tunneler interface {
	DialTunnel(network, address string) (net.Conn, error)
}

type Prober struct {
	// Timeout applies to each probe individually.
	Timeout time.Duration

	// Tunnels maps host addresses to their open channels, for probes that
	// must go through the host rather than at it.
	Tunnels map[string]Tunneler

	Log *slog.Logger
}

func NewProber(timeout time.Duration, logger *slog.Logger) *Prober {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		Timeout: timeout,
		Tunnels: make(map[string]Tunneler),
		Log:     logger,
	}
}

// Validate runs all probes concurrently and returns one result per probe,
// in the same order. It never returns an error.
func (p *Prober) Validate(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	var wg sync.WaitGroup
	for i, pr := range probes {
		wg.Add(1)
		go func(i int, pr Probe) {
			defer wg.Done()
			results[i] = p.check(ctx, pr)
		}(i, pr)
	}
	wg.Wait()

	for _, result := range results {
		p.Log.Info("Probe checked", "endpoint", result.Probe.Endpoint(), "ok", result.OK, "detail", result.Detail)
	}
	return results
}

func (p *Prober) check(ctx context.Context, pr Probe) Result {
	result := Result{Probe: pr}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	switch pr.Kind {
	case KindHTTP:
		result.OK, result.Detail = p.checkHTTP(ctx, pr)
	case KindTCP:
		result.OK, result.Detail = p.checkTCP(ctx, pr)
	case KindDocker:
		result.OK, result.Detail = p.checkDocker(ctx, pr)
	default:
		result.Detail = fmt.Sprintf("unknown probe kind '%s'", pr.Kind)
	}
	return result
}

func (p *Prober) checkHTTP(ctx context.Context, pr Probe) (bool, string) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pr.Endpoint(), nil)
	if err != nil {
		return false, err.Error()
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return false, err.Error()
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return false, response.Status
	}
	return true, response.Status
}

func (p *Prober) checkTCP(ctx context.Context, pr Probe) (bool, string) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", pr.Host.Address, pr.Port))
	if err != nil {
		return false, err.Error()
	}
	_ = conn.Close()
	return true, "accepting connections"
}
