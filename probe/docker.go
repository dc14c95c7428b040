package probe

import (
	"context"
	"fmt"
	"net"

	"github.com/docker/docker/client"
)

const dockerSocket = "/var/run/docker.sock"

// checkDocker pings the host's Docker daemon through the SSH tunnel, the
// same way the provisioning steps' containers were started. A host without
// an open channel (never ready, or already closed) simply fails the probe.
func (p *Prober) checkDocker(ctx context.Context, pr Probe) (bool, string) {
	tunnel, ok := p.Tunnels[pr.Host.Address]
	if !ok {
		return false, "no open channel to host"
	}

	docker, err := client.NewClientWithOpts(
		client.WithHost("unix://"+dockerSocket),
		client.WithAPIVersionNegotiation(),
		client.WithDialContext(func(_ context.Context, network, address string) (net.Conn, error) {
			return tunnel.DialTunnel(network, address)
		}),
	)
	if err != nil {
		return false, fmt.Sprintf("failed to initialize docker client: %v", err)
	}
	defer docker.Close()

	ping, err := docker.Ping(ctx)
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("API version %s", ping.APIVersion)
}
