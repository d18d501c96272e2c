package encoding

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMPIRoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(255),
		big.NewInt(256),
		new(big.Int).Lsh(big.NewInt(1), 2048),
	}
	for _, n := range cases {
		m := new(MPI).SetBig(n)
		var round MPI
		_, err := round.ReadFrom(bytes.NewReader(m.EncodedBytes()))
		require.NoError(t, err)
		require.Equal(t, m.Bytes(), round.Bytes())
		require.Equal(t, m.BitLength(), round.BitLength())
	}
}

func TestMPIBitLengthBoundary(t *testing.T) {
	// 0x01 has its highest bit at position 0, so the declared bit length
	// must be exactly 1 even though the magnitude occupies a full octet.
	m := NewMPI([]byte{0x01})
	require.Equal(t, uint16(1), m.BitLength())

	encoded := m.EncodedBytes()
	require.Equal(t, []byte{0x00, 0x01, 0x01}, encoded)

	var round MPI
	_, err := round.ReadFrom(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Equal(t, m.Bytes(), round.Bytes())
}

func TestMPIRejectsMismatchedBitLength(t *testing.T) {
	// Declares 9 bits over 2 octets, so the top octet's highest set bit
	// must sit at position 0 (0x01xx); 0x02 puts it at position 1 instead.
	malformed := []byte{0x00, 0x09, 0x02, 0x00}
	var m MPI
	_, err := m.ReadFrom(bytes.NewReader(malformed))
	require.Error(t, err)
}

func TestMPIRejectsLeadingZeroByte(t *testing.T) {
	// bitLength 9 over 2 octets leaves room for a leading zero bit, but
	// not a fully zero leading octet.
	malformed := []byte{0x00, 0x09, 0x00, 0x01}
	var m MPI
	_, err := m.ReadFrom(bytes.NewReader(malformed))
	require.Error(t, err)
}

func TestOIDRoundTrip(t *testing.T) {
	// NIST P-256 OID, RFC 6637 section 11.
	oid := NewOID([]byte{0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07})
	var round OID
	_, err := round.ReadFrom(bytes.NewReader(oid.EncodedBytes()))
	require.NoError(t, err)
	if diff := cmp.Diff(oid.Bytes(), round.Bytes()); diff != "" {
		t.Errorf("OID bytes changed across round trip (-want +got):\n%s", diff)
	}
}

func TestOpaqueMPIPreservesBodyVerbatim(t *testing.T) {
	// An uncompressed EC point: leading 0x04 marker plus coordinates. The
	// body must survive unchanged even though its first octet isn't
	// bit-packed the way a plain MPI magnitude would be.
	point := append([]byte{0x04}, bytes.Repeat([]byte{0xAB}, 64)...)
	m := NewOpaqueMPI(point)
	var round OpaqueMPI
	_, err := round.ReadFrom(bytes.NewReader(m.EncodedBytes()))
	require.NoError(t, err)
	require.Equal(t, point, round.Bytes())
}
