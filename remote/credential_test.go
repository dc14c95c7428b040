package remote

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/ostler-dev/ostler/orchestrator"
)

func writeTestKey(t *testing.T, mode os.FileMode) string {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(key, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), mode))
	return path
}

func TestLoadCredential(t *testing.T) {
	signer, err := LoadCredential(writeTestKey(t, 0o600))
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519", signer.PublicKey().Type())
}

func TestLoadCredentialRejectsLoosePermissions(t *testing.T) {
	for _, mode := range []os.FileMode{0o644, 0o640, 0o660, 0o400} {
		_, err := LoadCredential(writeTestKey(t, mode))

		var configErr *orchestrator.ConfigurationError
		require.ErrorAs(t, err, &configErr, "mode %04o", mode)
		assert.Contains(t, configErr.Reason, "0600")
	}
}

func TestLoadCredentialRejectsMissingFile(t *testing.T) {
	_, err := LoadCredential(filepath.Join(t.TempDir(), "missing"))

	var configErr *orchestrator.ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestLoadCredentialRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_rsa")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))

	_, err := LoadCredential(path)

	var configErr *orchestrator.ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestNewDialerRequiresCredential(t *testing.T) {
	_, err := NewDialer(DialerConfig{User: "debian"})

	var configErr *orchestrator.ConfigurationError
	require.ErrorAs(t, err, &configErr)
}
