package packet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgpkit/openpgp/internal/algorithm"
)

func TestEncryptWithPasswordRejectsUnsupportedCipher(t *testing.T) {
	_, priv := testRSAKeyPair(t)
	err := priv.EncryptWithPassword([]byte("hunter2"), algorithm.CAST5)
	require.Error(t, err)
}

func TestDecryptRejectsUnsupportedCipher(t *testing.T) {
	_, priv := testRSAKeyPair(t)
	require.NoError(t, priv.EncryptWithPassword([]byte("hunter2"), algorithm.AES256))
	priv.cipher = algorithm.CAST5

	err := priv.Decrypt(func() ([]byte, error) { return []byte("hunter2"), nil })
	require.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	_, priv := testRSAKeyPair(t)

	require.NoError(t, priv.EncryptWithPassword([]byte("hunter2"), algorithm.AES256))
	require.True(t, priv.Encrypted)

	require.NoError(t, priv.Decrypt(func() ([]byte, error) { return []byte("hunter2"), nil }))
	require.False(t, priv.Encrypted)
}
