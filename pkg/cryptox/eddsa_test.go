package cryptox_test

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lmsconsole/pkg/cryptox"
)

func TestEd25519PEMRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.Len(t, key, ed25519.PrivateKeySize)

	pemBytes, err := cryptox.MarshalEd25519PEM(key)
	require.NoError(t, err)
	require.Contains(t, string(pemBytes), "BEGIN PRIVATE KEY")

	parsed, err := cryptox.ParseEd25519PEM(pemBytes)
	require.NoError(t, err)
	require.True(t, key.Equal(parsed))

	_, err = cryptox.ParseEd25519PEM([]byte("not pem"))
	require.Error(t, err)
}

func TestLoadOrGenerateEd25519Key(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keys", "signing.pem")

	first, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)
	require.True(t, first.Equal(second), "key should be reused from disk")

	ephemeral, err := cryptox.LoadOrGenerateEd25519Key("")
	require.NoError(t, err)
	require.False(t, first.Equal(ephemeral))
}
