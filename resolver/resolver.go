// Package resolver turns role definitions and an address source into the
// set of hosts the orchestrator works on. Three sources exist: explicit
// addresses (positional, one per role), a YAML inventory file, and an
// infrastructure-state provider queried per role. All validation happens
// here, at the boundary; failures are fatal to the run and never retried.
package resolver

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ostler-dev/ostler/orchestrator"
)

// Provider is the infrastructure-state provider: a single query operation
// returning the addresses published under a named output.
type Provider interface {
	Outputs(ctx context.Context, name string) ([]string, error)
}

// Explicit binds addresses to roles positionally. The address count must
// match the role count exactly.
func Explicit(roles []orchestrator.Role, addresses []string) ([]*orchestrator.Host, error) {
	if len(addresses) != len(roles) {
		return nil, &orchestrator.ConfigurationError{
			Reason: fmt.Sprintf(
				"expected %d addresses, one per role (%s), got %d",
				len(roles),
				strings.Join(lo.Map(roles, func(role orchestrator.Role, _ int) string { return string(role) }), ", "),
				len(addresses),
			),
		}
	}

	return lo.Map(roles, func(role orchestrator.Role, i int) *orchestrator.Host {
		return orchestrator.NewHost(addresses[i], role)
	}), nil
}

// FromInventory reads a YAML file mapping each role to one address.
// Every role must be present, and no unknown roles are accepted.
func FromInventory(path string, roles []orchestrator.Role) ([]*orchestrator.Host, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("failed to read inventory '%s': %v", path, err)}
	}

	var inventory map[orchestrator.Role]string
	if err := yaml.Unmarshal(buf, &inventory); err != nil {
		return nil, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("failed to parse inventory '%s': %v", path, err)}
	}

	known := lo.SliceToMap(roles, func(role orchestrator.Role) (orchestrator.Role, bool) { return role, true })
	for role := range inventory {
		if !known[role] {
			return nil, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("inventory '%s' defines unknown role '%s'", path, role)}
		}
	}

	hosts := make([]*orchestrator.Host, 0, len(roles))
	for _, role := range roles {
		address, ok := inventory[role]
		if !ok || address == "" {
			return nil, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("inventory '%s' has no address for role '%s'", path, role)}
		}
		hosts = append(hosts, orchestrator.NewHost(address, role))
	}
	return hosts, nil
}

// FromProvider queries the provider once per role; each named output must
// yield exactly one address.
func FromProvider(ctx context.Context, provider Provider, roles []orchestrator.Role) ([]*orchestrator.Host, error) {
	hosts := make([]*orchestrator.Host, 0, len(roles))
	for _, role := range roles {
		addresses, err := provider.Outputs(ctx, string(role))
		if err != nil {
			return nil, &orchestrator.ResolutionError{Output: string(role), Err: err}
		}
		switch len(addresses) {
		case 0:
			return nil, &orchestrator.ResolutionError{Output: string(role), Err: fmt.Errorf("provider returned no address")}
		case 1:
			// Expected
		default:
			return nil, &orchestrator.ResolutionError{Output: string(role), Err: fmt.Errorf("provider returned %d addresses, want exactly 1", len(addresses))}
		}
		hosts = append(hosts, orchestrator.NewHost(addresses[0], role))
	}
	return hosts, nil
}
