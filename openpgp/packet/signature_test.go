package packet

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRSAKeyPair(t *testing.T) (*PublicKey, *PrivateKey) {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	pub := NewRSAPublicKey(time.Unix(1700000000, 0), &raw.PublicKey)
	priv := NewRSAPrivateKey(pub, raw)
	return pub, priv
}

func TestSignVerifyRoundTrip(t *testing.T) {
	pub, priv := testRSAKeyPair(t)
	cfg := &Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	sig, err := Sign(bytes.NewReader([]byte("hello world")), priv, cfg, nil, SigTypeBinary)
	require.NoError(t, err)

	err = Verify(sig, bytes.NewReader([]byte("hello world")), pub)
	require.NoError(t, err)

	err = Verify(sig, bytes.NewReader([]byte("tampered")), pub)
	require.Error(t, err)
}

func TestSignatureSerializeParseRoundTrip(t *testing.T) {
	pub, priv := testRSAKeyPair(t)
	cfg := &Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	sig, err := Sign(bytes.NewReader([]byte("hello world")), priv, cfg, nil, SigTypeBinary)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sig.Serialize(&buf))

	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*Signature)
	require.True(t, ok)

	require.NoError(t, Verify(round, bytes.NewReader([]byte("hello world")), pub))
}

func TestCertifyUserIdRoundTrip(t *testing.T) {
	pub, priv := testRSAKeyPair(t)
	cfg := &Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	sig, err := SignUserId(SigTypePositiveCert, "Alice <alice@example.com>", pub, priv, cfg, nil)
	require.NoError(t, err)

	require.NoError(t, VerifyUserIdSignature("Alice <alice@example.com>", pub, sig))
	require.Error(t, VerifyUserIdSignature("Mallory <mallory@example.com>", pub, sig))
}

func TestSubkeyBindingRoundTrip(t *testing.T) {
	pub, priv := testRSAKeyPair(t)
	subPub, _ := testRSAKeyPair(t)
	subPub.IsSubkey = true
	cfg := &Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	sig, err := SignKey(pub, subPub, priv, cfg, nil, SigTypeSubkeyBinding)
	require.NoError(t, err)

	require.NoError(t, VerifyKeySignature(pub, subPub, sig))
}

func TestSignUserAttributeRoundTrip(t *testing.T) {
	pub, priv := testRSAKeyPair(t)
	cfg := &Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}
	attr := &UserAttribute{Contents: []byte{0x10, 0x00, 0x01, 0xFF}}

	sig, err := SignUserAttribute(attr, pub, priv, cfg, nil)
	require.NoError(t, err)

	err = sig.verify(pub, func(h io.Writer) {
		pub.SerializeForHash(h)
		writeUserAttributeForHash(h, attr.Contents)
	})
	require.NoError(t, err)
}

func TestPreviouslyUnrecognizedSubpacketsRoundTrip(t *testing.T) {
	_, priv := testRSAKeyPair(t)
	cfg := &Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	sig := &Signature{
		SigType: SigTypeKeyRevocation,
		RevocationKeyInfo: &RevocationKey{
			Sensitive:   true,
			PubKeyAlgo:  PubKeyAlgoRSA,
			Fingerprint: bytes.Repeat([]byte{0xAB}, 20),
		},
		Notations: []Notation{
			{IsHumanReadable: true, Name: "policy@example.com", Value: []byte("ok")},
		},
		KeyServerPrefNoModify: true,
		PolicyURI:             "https://example.com/policy",
		FeaturesValid:         true,
		FeatureModificationDetection: true,
	}
	require.NoError(t, sig.sign(priv, nil, cfg, func(h io.Writer) { h.Write([]byte("revocation target")) }))

	var buf bytes.Buffer
	require.NoError(t, sig.Serialize(&buf))

	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*Signature)
	require.True(t, ok)

	require.NotNil(t, round.RevocationKeyInfo)
	require.Equal(t, sig.RevocationKeyInfo.Sensitive, round.RevocationKeyInfo.Sensitive)
	require.Equal(t, sig.RevocationKeyInfo.PubKeyAlgo, round.RevocationKeyInfo.PubKeyAlgo)
	require.Equal(t, sig.RevocationKeyInfo.Fingerprint, round.RevocationKeyInfo.Fingerprint)

	require.Len(t, round.Notations, 1)
	require.Equal(t, sig.Notations[0], round.Notations[0])

	require.True(t, round.KeyServerPrefNoModify)
	require.Equal(t, sig.PolicyURI, round.PolicyURI)
	require.True(t, round.FeaturesValid)
	require.True(t, round.FeatureModificationDetection)
}

func TestUnknownCriticalHashedSubpacketFailsParse(t *testing.T) {
	_, priv := testRSAKeyPair(t)
	cfg := &Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	sig, err := Sign(bytes.NewReader([]byte("data")), priv, cfg, nil, SigTypeBinary)
	require.NoError(t, err)

	// Graft an unrecognized, critical hashed subpacket directly onto the
	// already-signed signature's staged output (bypassing sign, since
	// mutating hashed material after signing would otherwise invalidate
	// the digest anyway — this exercises parseSubpacket's rejection path
	// in isolation).
	sig.unknownSubpackets = append(sig.unknownSubpackets, outputSubpacket{
		hashed:   true,
		critical: true,
		subType:  99,
		contents: []byte{1, 2, 3},
	})

	var buf bytes.Buffer
	require.NoError(t, sig.Serialize(&buf))

	_, err = Read(&buf)
	require.Error(t, err)
}
