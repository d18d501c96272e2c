package ecc

import (
	"crypto/elliptic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindByOidDistinguishesECDSAFromECDH(t *testing.T) {
	p256Oid := []byte{0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07}

	byOid := FindByOid(p256Oid)
	require.NotNil(t, byOid)
	require.Equal(t, ECDSA, byOid.SigAlgorithm)

	ecdhByOid := FindECDHByOid(p256Oid)
	require.NotNil(t, ecdhByOid)
	require.Equal(t, ECDH, ecdhByOid.SigAlgorithm)
	require.Equal(t, p256Oid, ecdhByOid.Oid)

	ecdsa := FindByCurve(elliptic.P256())
	require.NotNil(t, ecdsa)
	require.Equal(t, "NIST P-256", ecdsa.Name)
	require.Equal(t, p256Oid, ecdsa.Oid)

	ecdh := FindECDHByCurve(elliptic.P256())
	require.NotNil(t, ecdh)
	require.Equal(t, ECDH, ecdh.SigAlgorithm)
}

func TestFindECDHByOidUnknownReturnsNil(t *testing.T) {
	require.Nil(t, FindECDHByOid([]byte{0xFF, 0xFF}))
}

func TestFindByOidUnknownReturnsNil(t *testing.T) {
	require.Nil(t, FindByOid([]byte{0xFF, 0xFF}))
}

func TestEd25519CurveHasNoWeierstrassCurve(t *testing.T) {
	c := FindByName("Ed25519")
	require.NotNil(t, c)
	require.Equal(t, Ed25519Type, c.CurveType)
	require.Equal(t, EdDSA, c.SigAlgorithm)
	require.Nil(t, c.Curve)
}
