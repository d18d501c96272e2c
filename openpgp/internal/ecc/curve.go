// Package ecc holds the table of elliptic curves this module recognizes by
// RFC 6637/draft-koch OID, shared by the ECDSA, ECDH, and EdDSA parameter
// codecs in package packet.
package ecc

import (
	"crypto/elliptic"

	"golang.org/x/crypto/ed25519"
)

// SignatureAlgorithm distinguishes the curve's intended use; a given curve
// OID is only valid under one of these.
type SignatureAlgorithm int

const (
	_ SignatureAlgorithm = iota
	ECDSA
	EdDSA
	ECDH
)

// CurveType distinguishes curves requiring the generic elliptic.Curve
// Weierstrass representation from the Curve25519/Ed25519 Montgomery/Edwards
// forms, which have their own point encodings.
type CurveType int

const (
	Weierstrass CurveType = iota
	Curve25519
	Ed25519Type
)

// CurveInfo names a curve by its canonical RFC 6637/draft-koch name, its OID
// encoding, and the signature/KDF algorithm family it is valid under.
type CurveInfo struct {
	Name         string
	Oid          []byte
	Curve        elliptic.Curve
	CurveType    CurveType
	SigAlgorithm SignatureAlgorithm
}

var curves = []*CurveInfo{
	{
		Name:         "NIST P-256",
		Oid:          []byte{0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07},
		Curve:        elliptic.P256(),
		CurveType:    Weierstrass,
		SigAlgorithm: ECDSA,
	},
	{
		Name:         "NIST P-384",
		Oid:          []byte{0x2B, 0x81, 0x04, 0x00, 0x22},
		Curve:        elliptic.P384(),
		CurveType:    Weierstrass,
		SigAlgorithm: ECDSA,
	},
	{
		Name:         "NIST P-521",
		Oid:          []byte{0x2B, 0x81, 0x04, 0x00, 0x23},
		Curve:        elliptic.P521(),
		CurveType:    Weierstrass,
		SigAlgorithm: ECDSA,
	},
	{
		Name:         "NIST P-256 (ECDH)",
		Oid:          []byte{0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07},
		Curve:        elliptic.P256(),
		CurveType:    Weierstrass,
		SigAlgorithm: ECDH,
	},
	{
		Name:         "NIST P-384 (ECDH)",
		Oid:          []byte{0x2B, 0x81, 0x04, 0x00, 0x22},
		Curve:        elliptic.P384(),
		CurveType:    Weierstrass,
		SigAlgorithm: ECDH,
	},
	{
		Name:         "NIST P-521 (ECDH)",
		Oid:          []byte{0x2B, 0x81, 0x04, 0x00, 0x23},
		Curve:        elliptic.P521(),
		CurveType:    Weierstrass,
		SigAlgorithm: ECDH,
	},
	{
		Name:         "Curve25519",
		Oid:          []byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0x97, 0x55, 0x01, 0x05, 0x01},
		CurveType:    Curve25519,
		SigAlgorithm: ECDH,
	},
	{
		Name:         "Ed25519",
		Oid:          []byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0xDA, 0x47, 0x0F, 0x01},
		CurveType:    Ed25519Type,
		SigAlgorithm: EdDSA,
	},
}

// FindByOid returns the CurveInfo matching oid's raw bytes, or nil. Some
// OIDs (the NIST Weierstrass curves) are shared between an ECDSA entry and
// an ECDH entry in the table; FindByOid always resolves to the ECDSA one,
// since it is declared first. Callers parsing an ECDH key must use
// FindECDHByOid instead so a shared OID resolves to the ECDH-flavored
// entry rather than silently borrowing the ECDSA one.
func FindByOid(oid []byte) *CurveInfo {
	for _, c := range curves {
		if byteEqual(c.Oid, oid) {
			return c
		}
	}
	return nil
}

// FindECDHByOid returns the ECDH-flavored CurveInfo matching oid's raw
// bytes, or nil. Needed alongside FindByOid because the NIST Weierstrass
// curve OIDs are shared between an ECDSA entry and an ECDH entry in the
// table, and FindByOid alone can never resolve to the latter.
func FindECDHByOid(oid []byte) *CurveInfo {
	for _, c := range curves {
		if c.SigAlgorithm == ECDH && byteEqual(c.Oid, oid) {
			return c
		}
	}
	return nil
}

// FindByName returns the CurveInfo with the given canonical name, or nil.
func FindByName(name string) *CurveInfo {
	for _, c := range curves {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindByCurve returns the first ECDSA-flavored CurveInfo wrapping the given
// elliptic.Curve, or nil.
func FindByCurve(curve elliptic.Curve) *CurveInfo {
	for _, c := range curves {
		if c.Curve == curve && c.SigAlgorithm == ECDSA {
			return c
		}
	}
	return nil
}

// FindECDHByCurve returns the first ECDH-flavored CurveInfo wrapping the
// given elliptic.Curve, or nil.
func FindECDHByCurve(curve elliptic.Curve) *CurveInfo {
	for _, c := range curves {
		if c.Curve == curve && c.SigAlgorithm == ECDH {
			return c
		}
	}
	return nil
}

// Ed25519PublicKeySize mirrors ed25519.PublicKeySize, re-exported so callers
// of packet need not import golang.org/x/crypto/ed25519 directly just to
// size buffers.
const Ed25519PublicKeySize = ed25519.PublicKeySize

func byteEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
