package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostler-dev/ostler/orchestrator"
)

var roles = []orchestrator.Role{"application", "ci", "monitoring"}

func TestExplicitBindsAddressesPositionally(t *testing.T) {
	hosts, err := Explicit(roles, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"})
	require.NoError(t, err)
	require.Len(t, hosts, 3)

	assert.Equal(t, "10.0.0.1", hosts[0].Address)
	assert.Equal(t, orchestrator.Role("application"), hosts[0].Role)
	assert.Equal(t, "10.0.0.2", hosts[1].Address)
	assert.Equal(t, orchestrator.Role("ci"), hosts[1].Role)
	assert.Equal(t, "10.0.0.3", hosts[2].Address)
	assert.Equal(t, orchestrator.Role("monitoring"), hosts[2].Role)

	for _, host := range hosts {
		assert.Equal(t, orchestrator.ReadyStateUnknown, host.ReadyState())
	}
}

func TestExplicitRejectsWrongAddressCount(t *testing.T) {
	for _, addresses := range [][]string{
		{},
		{"10.0.0.1"},
		{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"},
	} {
		_, err := Explicit(roles, addresses)

		var configErr *orchestrator.ConfigurationError
		require.ErrorAs(t, err, &configErr, "addresses: %v", addresses)
	}
}

func TestFromInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"application: 10.1.0.1\nci: 10.1.0.2\nmonitoring: 10.1.0.3\n",
	), 0o644))

	hosts, err := FromInventory(path, roles)
	require.NoError(t, err)
	require.Len(t, hosts, 3)
	assert.Equal(t, "10.1.0.2", hosts[1].Address)
	assert.Equal(t, orchestrator.Role("ci"), hosts[1].Role)
}

func TestFromInventoryRejectsMissingRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yml")
	require.NoError(t, os.WriteFile(path, []byte("application: 10.1.0.1\n"), 0o644))

	_, err := FromInventory(path, roles)

	var configErr *orchestrator.ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Reason, "ci")
}

func TestFromInventoryRejectsUnknownRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"application: 10.1.0.1\nci: 10.1.0.2\nmonitoring: 10.1.0.3\ndatabase: 10.1.0.4\n",
	), 0o644))

	_, err := FromInventory(path, roles)

	var configErr *orchestrator.ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Reason, "database")
}

// --- Provider path ---

type fakeProvider struct {
	outputs map[string][]string
	err     error
}

func (p *fakeProvider) Outputs(_ context.Context, name string) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.outputs[name], nil
}

func TestFromProvider(t *testing.T) {
	provider := &fakeProvider{outputs: map[string][]string{
		"application": {"192.168.0.1"},
		"ci":          {"192.168.0.2"},
		"monitoring":  {"192.168.0.3"},
	}}

	hosts, err := FromProvider(context.Background(), provider, roles)
	require.NoError(t, err)
	require.Len(t, hosts, 3)
	assert.Equal(t, "192.168.0.3", hosts[2].Address)
}

func TestFromProviderEmptyOutputIsAResolutionError(t *testing.T) {
	provider := &fakeProvider{outputs: map[string][]string{
		"application": {"192.168.0.1"},
	}}

	_, err := FromProvider(context.Background(), provider, roles)

	var resolutionErr *orchestrator.ResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	assert.Equal(t, "ci", resolutionErr.Output)
}

func TestFromProviderAmbiguousOutputIsAResolutionError(t *testing.T) {
	provider := &fakeProvider{outputs: map[string][]string{
		"application": {"192.168.0.1", "192.168.0.9"},
	}}

	_, err := FromProvider(context.Background(), provider, roles)

	var resolutionErr *orchestrator.ResolutionError
	require.ErrorAs(t, err, &resolutionErr)
}

func TestFromProviderQueryFailureIsAResolutionError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("api unavailable")}

	_, err := FromProvider(context.Background(), provider, roles)

	var resolutionErr *orchestrator.ResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	assert.ErrorContains(t, err, "api unavailable")
}
