package openpgp

import (
	"github.com/pgpkit/openpgp/errors"
	"github.com/pgpkit/openpgp/internal/algorithm"
	"github.com/pgpkit/openpgp/packet"
)

// KeyDetails is the set of facts about a primary key that Sign turns
// into a fully self-signed SignedSecretKey: one or more user ids (the
// first is primary unless PrimaryUserId says otherwise), optional user
// attributes, the key-usage flags to assert, and the three preferred-
// algorithm lists advertised to verifiers. It mirrors rpgp's
// composed::key::shared::KeyDetails, which separates "what this key
// should assert about itself" from the packet plumbing that encodes it.
type KeyDetails struct {
	PrimaryUserId  string
	UserIds        []string
	UserAttributes []*packet.UserAttribute

	CanCertify      bool
	CanSign         bool
	CanEncrypt      bool
	CanAuthenticate bool

	PreferredSymmetric   []uint8
	PreferredHash        []uint8
	PreferredCompression []uint8

	KeyLifetimeSecs *uint32

	RevocationKey *packet.PublicKey
}

// defaultPreferences mirrors the preference lists a freshly generated
// rpgp/gpg key advertises: AES-256/192/128 then the legacy TripleDES,
// SHA-512/384/256 then SHA-1 for backward compatibility, and ZLIB/ZIP
// with no compression as the fallback.
func defaultPreferences() ([]uint8, []uint8, []uint8) {
	return []uint8{byte(packet.CipherAES256), byte(packet.CipherAES192), byte(packet.CipherAES128), byte(packet.CipherTripleDES)},
		[]uint8{algorithm.SHA512.Id(), algorithm.SHA384.Id(), algorithm.SHA256.Id(), algorithm.SHA1.Id()},
		[]uint8{byte(packet.CompressionZLIB), byte(packet.CompressionZIP), byte(packet.CompressionNone)}
}

// Sign builds a SignedSecretKey from primary: one self-signed
// certification per user id in d.UserIds (and one per attribute in
// d.UserAttributes), all issued by primary itself. passwordFn unlocks
// primary if it is encrypted.
func (d *KeyDetails) Sign(primary *packet.PrivateKey, passwordFn packet.PasswordFn, cfg *packet.Config) (*SignedSecretKey, error) {
	if len(d.UserIds) == 0 {
		return nil, errors.InvalidArgumentError("KeyDetails requires at least one user id")
	}
	if !primary.CanSign() {
		return nil, errors.InvalidArgumentError("primary key's algorithm cannot certify")
	}

	defaultSym, defaultHash, defaultComp := defaultPreferences()
	preferredSym := d.PreferredSymmetric
	if preferredSym == nil {
		preferredSym = defaultSym
	}
	preferredHash := d.PreferredHash
	if preferredHash == nil {
		preferredHash = defaultHash
	}
	preferredComp := d.PreferredCompression
	if preferredComp == nil {
		preferredComp = defaultComp
	}

	pub := &primary.PublicKey
	key := &SignedSecretKey{PrimaryKey: primary}

	for i, uidStr := range d.UserIds {
		uid := &packet.UserId{Id: uidStr}
		isPrimary := uidStr == d.PrimaryUserId || (d.PrimaryUserId == "" && i == 0)

		template := &packet.Signature{
			SigType:                   packet.SigTypeGenericCert,
			FlagsValid:                true,
			FlagCertify:               d.CanCertify || i == 0,
			FlagSign:                  d.CanSign,
			FlagEncryptCommunications: d.CanEncrypt,
			FlagEncryptStorage:        d.CanEncrypt,
			FlagAuthenticate:          d.CanAuthenticate,
			PreferredSymmetric:        preferredSym,
			PreferredHash:             preferredHash,
			PreferredCompression:      preferredComp,
			KeyLifetimeSecs:           d.KeyLifetimeSecs,
		}
		if isPrimary {
			t := true
			template.IsPrimaryId = &t
		}
		if d.RevocationKey != nil {
			template.RevocationKeyInfo = &packet.RevocationKey{
				PubKeyAlgo:  d.RevocationKey.PubKeyAlgo,
				Fingerprint: d.RevocationKey.Fingerprint,
			}
		}

		sig, err := packet.CertifyUserId(template, uid.Id, pub, primary, cfg, passwordFn)
		if err != nil {
			return nil, err
		}

		identity := &Identity{UserId: uid, SelfSignature: sig}
		key.Identities = append(key.Identities, identity)
		if isPrimary {
			key.PrimaryIdentity = identity
		}
	}

	for _, attr := range d.UserAttributes {
		sig, err := packet.SignUserAttribute(attr, pub, primary, cfg, passwordFn)
		if err != nil {
			return nil, err
		}
		key.Attributes = append(key.Attributes, &AttributeBlock{UserAttribute: attr, SelfSignature: sig})
	}

	return key, nil
}
