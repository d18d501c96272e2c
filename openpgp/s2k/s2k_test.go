package s2k

import (
	"bytes"
	"crypto"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsRoundTrip(t *testing.T) {
	cases := []*Params{
		{Mode: ModeSimple, Hash: crypto.SHA256},
		{Mode: ModeSalted, Hash: crypto.SHA256, Salt: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{Mode: ModeIterated, Hash: crypto.SHA512, Salt: [8]byte{9, 8, 7, 6, 5, 4, 3, 2}, Count: 96},
	}
	for _, p := range cases {
		var buf bytes.Buffer
		require.NoError(t, p.Serialize(&buf))
		round, err := Parse(&buf)
		require.NoError(t, err)
		require.Equal(t, p.Mode, round.Mode)
		require.Equal(t, p.Hash, round.Hash)
		require.Equal(t, p.Salt, round.Salt)
		require.Equal(t, p.Count, round.Count)
	}
}

func TestKeyDerivationIsDeterministic(t *testing.T) {
	p := &Params{Mode: ModeIterated, Hash: crypto.SHA256, Salt: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, Count: 96}
	k1, err := p.Key([]byte("correct horse battery staple"), 32)
	require.NoError(t, err)
	k2, err := p.Key([]byte("correct horse battery staple"), 32)
	require.NoError(t, err)
	require.Equal(t, k1, k2)
	require.Len(t, k1, 32)

	other, err := p.Key([]byte("wrong password"), 32)
	require.NoError(t, err)
	require.NotEqual(t, k1, other)
}

func TestKeyDerivationBeyondOneHashBlock(t *testing.T) {
	// AES-256 needs 32 bytes; SHA-1 only produces 20 per block, so Key
	// must chain a second preloaded hash instance to fill the rest.
	p := &Params{Mode: ModeSalted, Hash: crypto.SHA1, Salt: [8]byte{1, 1, 1, 1, 1, 1, 1, 1}}
	key, err := p.Key([]byte("password"), 32)
	require.NoError(t, err)
	require.Len(t, key, 32)
}

func TestDecodedCountExpandsPerSpec(t *testing.T) {
	p := &Params{Count: 0}
	require.Equal(t, 16<<6, p.DecodedCount())
}

func TestGNUDummyModeHasNoSecretMaterial(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(ModeGNUDummy))
	buf.WriteByte(2) // SHA1
	buf.Write([]byte("GNU\x01"))
	p, err := Parse(&buf)
	require.NoError(t, err)
	require.True(t, p.GNUDivert)
}
