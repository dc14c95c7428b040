package probe

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostler-dev/ostler/orchestrator"
)

func quietProber(timeout time.Duration) *Prober {
	return NewProber(timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// splitEndpoint turns a httptest/net listener address into a host + port.
func splitEndpoint(t *testing.T, address string) (string, int) {
	t.Helper()
	host, portString, err := net.SplitHostPort(address)
	require.NoError(t, err)
	port, err := strconv.Atoi(portString)
	require.NoError(t, err)
	return host, port
}

func TestHTTPProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	address, port := splitEndpoint(t, server.Listener.Addr().String())
	host := orchestrator.NewHost(address, "ci")

	results := quietProber(time.Second).Validate(context.Background(), []Probe{
		{Host: host, Kind: KindHTTP, Port: port, Path: "/login"},
		{Host: host, Kind: KindHTTP, Port: port, Path: "/nope"},
	})

	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.Contains(t, results[0].Detail, "200")
	assert.False(t, results[1].OK)
	assert.Contains(t, results[1].Detail, "404")
}

func TestTCPProbe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	address, port := splitEndpoint(t, listener.Addr().String())
	host := orchestrator.NewHost(address, "application")

	results := quietProber(time.Second).Validate(context.Background(), []Probe{
		{Host: host, Kind: KindTCP, Port: port},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
}

// An unreachable host resolves every probe to ok=false; Validate never fails.
func TestUnreachableHostFailsAllProbes(t *testing.T) {
	host := orchestrator.NewHost("192.0.2.1", "monitoring") // TEST-NET, never routable

	results := quietProber(100*time.Millisecond).Validate(context.Background(), []Probe{
		{Host: host, Kind: KindHTTP, Port: 9090, Path: "/-/healthy"},
		{Host: host, Kind: KindHTTP, Port: 3000, Path: "/api/health"},
		{Host: host, Kind: KindTCP, Port: 9100},
		{Host: host, Kind: KindDocker},
	})

	require.Len(t, results, 4)
	for _, result := range results {
		assert.False(t, result.OK, "probe %s", result.Probe.Endpoint())
		assert.NotEmpty(t, result.Detail)
	}
}

func TestDockerProbeWithoutChannel(t *testing.T) {
	host := orchestrator.NewHost("10.0.0.1", "application")

	results := quietProber(time.Second).Validate(context.Background(), []Probe{
		{Host: host, Kind: KindDocker},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Equal(t, "no open channel to host", results[0].Detail)
}

func TestUnknownProbeKind(t *testing.T) {
	host := orchestrator.NewHost("10.0.0.1", "application")

	results := quietProber(time.Second).Validate(context.Background(), []Probe{
		{Host: host, Kind: "icmp"},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Detail, "icmp")
}

func TestResultsKeepProbeOrder(t *testing.T) {
	host := orchestrator.NewHost("192.0.2.1", "application")
	probes := []Probe{
		{Host: host, Kind: KindTCP, Port: 80},
		{Host: host, Kind: KindTCP, Port: 443},
		{Host: host, Kind: KindTCP, Port: 9100},
	}

	results := quietProber(50*time.Millisecond).Validate(context.Background(), probes)

	require.Len(t, results, len(probes))
	for i := range probes {
		assert.Equal(t, probes[i].Port, results[i].Probe.Port)
	}
}
