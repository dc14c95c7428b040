package orchestrator

import "fmt"

// Role tags the intended function of a provisioned host. The three built-in
// roles are defined in the recipes package; the orchestrator itself treats
// roles as an open set and only requires that every host's role has a pipeline.
type Role string

type ReadyState string

const (
	ReadyStateUnknown     ReadyState = "unknown"
	ReadyStateProbing     ReadyState = "probing"
	ReadyStateReady       ReadyState = "ready"
	ReadyStateUnreachable ReadyState = "unreachable"
)

// Host is one provisioned machine. Address and Role are set by the resolver
// and never change; ReadyState is mutated by the readiness gate only.
type Host struct {
	Address string
	Role    Role

	readyState ReadyState
}

func NewHost(address string, role Role) *Host {
	return &Host{
		Address:    address,
		Role:       role,
		readyState: ReadyStateUnknown,
	}
}

func (h *Host) ReadyState() ReadyState {
	return h.readyState
}

func (h *Host) String() string {
	return fmt.Sprintf("%s (%s)", h.Address, h.Role)
}
