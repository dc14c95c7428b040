package resolver

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/servers"
)

// RoleMetadataKey is the server metadata key carrying the host's role tag.
// The provisioning engine that creates the machines sets it.
const RoleMetadataKey = "ostler-role"

// OpenStack resolves host addresses by listing compute instances tagged
// with a role. Ostler never creates or destroys servers; it only reads.
type OpenStack struct {
	client     *gophercloud.ServiceClient
	namePrefix string
}

// OpenStack implements Provider
var _ Provider = (*OpenStack)(nil)

func NewOpenStack(namePrefix string) (*OpenStack, error) {
	opts, err := openstack.AuthOptionsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth options from env: %w", err)
	}

	provider, err := openstack.AuthenticatedClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	client, err := openstack.NewComputeV2(provider, gophercloud.EndpointOpts{
		Region: os.Getenv("OS_REGION_NAME"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get compute client: %w", err)
	}

	return &OpenStack{
		client:     client,
		namePrefix: namePrefix,
	}, nil
}

func (p *OpenStack) Outputs(_ context.Context, name string) ([]string, error) {
	pages, err := servers.List(p.client, servers.ListOpts{Name: p.namePrefix}).AllPages()
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	all, err := servers.ExtractServers(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to extract servers: %w", err)
	}

	var addresses []string
	for _, server := range all {
		if !strings.HasPrefix(server.Name, p.namePrefix) || server.Metadata[RoleMetadataKey] != name {
			continue
		}

		address, err := p.ipv4Address(server.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve address of server '%s': %w", server.Name, err)
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

func (p *OpenStack) ipv4Address(serverID string) (string, error) {
	pages, err := servers.ListAddresses(p.client, serverID).AllPages()
	if err != nil {
		return "", fmt.Errorf("failed to get server addresses: %w", err)
	}

	allAddresses, err := servers.ExtractAddresses(pages)
	if err != nil {
		return "", fmt.Errorf("failed to extract server addresses: %w", err)
	}

	for _, addresses := range allAddresses {
		for _, address := range addresses {
			if address.Version == 4 {
				return address.Address, nil
			}
		}
	}
	return "", fmt.Errorf("no IPv4 address found")
}
