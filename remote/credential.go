package remote

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/ostler-dev/ostler/orchestrator"
)

// LoadCredential reads and parses the shared SSH private key. The file must
// be readable by its owner only; anything looser is rejected before any
// host work begins.
func LoadCredential(path string) (ssh.Signer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("credential file '%s' is not accessible: %v", path, err)}
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		return nil, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("credential file '%s' has permissions %04o, want 0600", path, mode)}
	}

	key, err := os.ReadFile(path)
	if err != nil {
		return nil, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("failed to read credential file '%s': %v", path, err)}
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, &orchestrator.ConfigurationError{Reason: fmt.Sprintf("failed to parse credential file '%s': %v", path, err)}
	}
	return signer, nil
}
