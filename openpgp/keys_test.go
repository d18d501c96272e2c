package openpgp

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pgpkit/openpgp/packet"
)

func testPrimary(t *testing.T) *packet.PrivateKey {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	pub := packet.NewRSAPublicKey(time.Unix(1700000000, 0), &raw.PublicKey)
	return packet.NewRSAPrivateKey(pub, raw)
}

func TestKeyDetailsSignProducesVerifiableIdentity(t *testing.T) {
	primary := testPrimary(t)
	cfg := &packet.Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	details := &KeyDetails{
		UserIds:    []string{"Alice <alice@example.com>"},
		CanCertify: true,
		CanSign:    true,
	}
	signed, err := details.Sign(primary, nil, cfg)
	require.NoError(t, err)
	require.Len(t, signed.Identities, 1)

	id := signed.Identities[0]
	require.NoError(t, packet.VerifyUserIdSignature(id.UserId.Id, &primary.PublicKey, id.SelfSignature))
}

func TestReadPublicKeyAssemblesIdentitiesAndSubkeys(t *testing.T) {
	primary := testPrimary(t)
	subPriv := testPrimary(t)
	subPriv.PublicKey.IsSubkey = true
	cfg := &packet.Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	details := &KeyDetails{
		UserIds:    []string{"Alice <alice@example.com>"},
		CanCertify: true,
	}
	signed, err := details.Sign(primary, nil, cfg)
	require.NoError(t, err)

	binding, err := packet.SignKey(&primary.PublicKey, &subPriv.PublicKey, primary, cfg, nil, packet.SigTypeSubkeyBinding)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, primary.PublicKey.Serialize(&buf))
	require.NoError(t, signed.Identities[0].UserId.Serialize(&buf))
	require.NoError(t, signed.Identities[0].SelfSignature.Serialize(&buf))
	require.NoError(t, subPriv.PublicKey.Serialize(&buf))
	require.NoError(t, binding.Serialize(&buf))

	key, warnings, err := ReadPublicKey(&buf)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, key.Identities, 1)
	require.Equal(t, "Alice <alice@example.com>", key.Identities[0].UserId.Id)
	require.NotNil(t, key.PrimaryIdentity)
	require.Len(t, key.Subkeys, 1)
	require.Equal(t, subPriv.PublicKey.KeyId, key.Subkeys[0].PublicKey.KeyId)
}

func TestReadPublicKeyPromotesFirstIdentityWithWarning(t *testing.T) {
	primary := testPrimary(t)
	cfg := &packet.Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	// A certification with IsPrimaryId left unset: no identity is marked
	// primary, so ReadPublicKey should promote the first one and warn.
	template := &packet.Signature{
		SigType:    packet.SigTypePositiveCert,
		FlagsValid: true,
		FlagCertify: true,
	}
	sig, err := packet.CertifyUserId(template, "Bob <bob@example.com>", &primary.PublicKey, primary, cfg, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, primary.PublicKey.Serialize(&buf))
	require.NoError(t, (&packet.UserId{Id: "Bob <bob@example.com>"}).Serialize(&buf))
	require.NoError(t, sig.Serialize(&buf))

	key, warnings, err := ReadPublicKey(&buf)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	require.Equal(t, key.Identities[0], key.PrimaryIdentity)
}

func TestReadPublicKeyRejectsStreamNotStartingWithPrimary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&packet.UserId{Id: "no primary key"}).Serialize(&buf))

	_, _, err := ReadPublicKey(&buf)
	require.Error(t, err)
}

func TestReadPrivateKeyAssemblesSecretSubkey(t *testing.T) {
	primary := testPrimary(t)
	subPriv := testPrimary(t)
	subPriv.PublicKey.IsSubkey = true
	cfg := &packet.Config{Time: func() time.Time { return time.Unix(1700000001, 0) }}

	details := &KeyDetails{UserIds: []string{"Carol <carol@example.com>"}, CanCertify: true}
	signed, err := details.Sign(primary, nil, cfg)
	require.NoError(t, err)

	binding, err := packet.SignKey(&primary.PublicKey, &subPriv.PublicKey, primary, cfg, nil, packet.SigTypeSubkeyBinding)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, primary.Serialize(&buf))
	require.NoError(t, signed.Identities[0].UserId.Serialize(&buf))
	require.NoError(t, signed.Identities[0].SelfSignature.Serialize(&buf))
	require.NoError(t, subPriv.Serialize(&buf))
	require.NoError(t, binding.Serialize(&buf))

	key, _, err := ReadPrivateKey(&buf)
	require.NoError(t, err)
	require.Len(t, key.Subkeys, 1)
	require.False(t, key.Subkeys[0].PrivateKey.Encrypted)
}
