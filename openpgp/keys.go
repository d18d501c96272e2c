// Package openpgp assembles parsed OpenPGP packets (see the packet
// subpackage) into composite keys, and builds the self-certifications
// that bind a primary key to its user ids and subkeys.
//
// The packet stream grammar recognized here is:
//
//	Key := PrimaryKey DirectSig* UserBlock+ AttrBlock* SubkeyBlock*
//	UserBlock := UserId Sig+
//	AttrBlock := UserAttribute Sig+
//	SubkeyBlock := Subkey Sig+
//
// A stream that doesn't fit this shape is a MalformedCompositeError, not
// a MalformedInputError: each individual packet parsed correctly, but
// their arrangement did not.
package openpgp

import (
	"io"

	"github.com/pgpkit/openpgp/errors"
	"github.com/pgpkit/openpgp/packet"
)

// Warning is a non-fatal condition noticed while assembling a composite
// key: the key is still usable, but a caller that logs warnings should
// surface it. This mirrors golang.org/x/crypto/openpgp.ReadEntity's
// practice of returning (entity, err) where err may be a non-nil
// warning alongside a valid entity, generalized into an explicit slice
// so callers don't have to choose between "stop" and "ignore".
type Warning struct {
	Msg string
}

func (w Warning) Error() string { return w.Msg }

// Identity binds a user id to its self-signature (and any third-party
// certifications) on a SignedPublicKey or SignedSecretKey.
type Identity struct {
	UserId          *packet.UserId
	SelfSignature   *packet.Signature
	Certifications  []*packet.Signature
	Revocations     []*packet.Signature
}

// AttributeBlock binds a user attribute to its self-signature.
type AttributeBlock struct {
	UserAttribute  *packet.UserAttribute
	SelfSignature  *packet.Signature
	Certifications []*packet.Signature
}

// Subkey binds a public subkey to its binding signature and any
// revocations. When a subkey block carries several non-revocation
// signatures, Binding holds the first one and the others are not kept.
type Subkey struct {
	PublicKey   *packet.PublicKey
	Binding     *packet.Signature
	Revocations []*packet.Signature
}

// SecretSubkey is Subkey with the private half attached.
type SecretSubkey struct {
	PublicKey   *packet.PublicKey
	PrivateKey  *packet.PrivateKey
	Binding     *packet.Signature
	Revocations []*packet.Signature
}

// SignedPublicKey is a primary public key together with everything that
// was certified onto it: the composed-key assembler's output.
type SignedPublicKey struct {
	PrimaryKey       *packet.PublicKey
	Revocations      []*packet.Signature
	DirectSignatures []*packet.Signature
	Identities       []*Identity
	PrimaryIdentity  *Identity
	Attributes       []*AttributeBlock
	Subkeys          []*Subkey
}

// SignedSecretKey mirrors SignedPublicKey for a primary secret key.
type SignedSecretKey struct {
	PrimaryKey       *packet.PrivateKey
	Revocations      []*packet.Signature
	DirectSignatures []*packet.Signature
	Identities       []*Identity
	PrimaryIdentity  *Identity
	Attributes       []*AttributeBlock
	Subkeys          []*SecretSubkey
}

// packetQueue is a one-packet-lookahead view over a packet.Read stream,
// which the assembler needs since a grammar block only ends once the
// packet that starts the next block is seen.
type packetQueue struct {
	r       io.Reader
	lookahead packet.Packet
	atEOF   bool
}

func newPacketQueue(r io.Reader) *packetQueue { return &packetQueue{r: r} }

func (q *packetQueue) peek() (packet.Packet, error) {
	if q.lookahead != nil || q.atEOF {
		return q.lookahead, nil
	}
	p, err := packet.Read(q.r)
	if err == io.EOF {
		q.atEOF = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q.lookahead = p
	return p, nil
}

func (q *packetQueue) next() (packet.Packet, error) {
	p, err := q.peek()
	if err != nil {
		return nil, err
	}
	q.lookahead = nil
	return p, nil
}

// ReadPublicKey parses exactly one composed public key from r, per the
// grammar documented on the package. Warnings are non-fatal conditions
// (e.g. no self-signature marked primary, so the first identity was
// promoted).
func ReadPublicKey(r io.Reader) (*SignedPublicKey, []Warning, error) {
	q := newPacketQueue(r)
	var warnings []Warning

	first, err := q.next()
	if err != nil {
		return nil, nil, err
	}
	primary, ok := first.(*packet.PublicKey)
	if !ok || primary.IsSubkey {
		return nil, nil, &errors.MalformedCompositeError{Msg: "composed key must begin with a primary public key packet"}
	}

	key := &SignedPublicKey{PrimaryKey: primary}

	if err := readDirectSignatures(q, func(sig *packet.Signature) {
		if sig.SigType == packet.SigTypeKeyRevocation {
			key.Revocations = append(key.Revocations, sig)
		} else {
			key.DirectSignatures = append(key.DirectSignatures, sig)
		}
	}); err != nil {
		return nil, nil, err
	}

	for {
		p, err := q.peek()
		if err != nil {
			return nil, nil, err
		}
		uid, ok := p.(*packet.UserId)
		if !ok {
			break
		}
		q.next()
		identity := &Identity{UserId: uid}
		if err := readFollowingSignatures(q, func(sig *packet.Signature) {
			if sig.SigType == packet.SigTypeCertificationRevocation {
				identity.Revocations = append(identity.Revocations, sig)
			} else if sig.IssuerKeyId != nil && *sig.IssuerKeyId == primary.KeyId {
				var demoted *packet.Signature
				identity.SelfSignature, demoted = updateSelfSignature(identity.SelfSignature, sig)
				if demoted != nil {
					identity.Certifications = append(identity.Certifications, demoted)
				}
			} else {
				identity.Certifications = append(identity.Certifications, sig)
			}
		}); err != nil {
			return nil, nil, err
		}
		if len(identity.Certifications) == 0 && identity.SelfSignature == nil && len(identity.Revocations) == 0 {
			return nil, nil, &errors.MalformedCompositeError{Msg: "user id block with no signatures"}
		}
		key.Identities = append(key.Identities, identity)
	}

	if len(key.Identities) == 0 {
		return nil, nil, &errors.MalformedCompositeError{Msg: "composed key has no user ids"}
	}
	key.PrimaryIdentity, warnings = choosePrimaryIdentity(key.Identities, warnings)

	for {
		p, err := q.peek()
		if err != nil {
			return nil, nil, err
		}
		attr, ok := p.(*packet.UserAttribute)
		if !ok {
			break
		}
		q.next()
		block := &AttributeBlock{UserAttribute: attr}
		if err := readFollowingSignatures(q, func(sig *packet.Signature) {
			if sig.IssuerKeyId != nil && *sig.IssuerKeyId == primary.KeyId {
				var demoted *packet.Signature
				block.SelfSignature, demoted = updateSelfSignature(block.SelfSignature, sig)
				if demoted != nil {
					block.Certifications = append(block.Certifications, demoted)
				}
			} else {
				block.Certifications = append(block.Certifications, sig)
			}
		}); err != nil {
			return nil, nil, err
		}
		key.Attributes = append(key.Attributes, block)
	}

	for {
		p, err := q.peek()
		if err != nil {
			return nil, nil, err
		}
		sub, ok := p.(*packet.PublicKey)
		if !ok || !sub.IsSubkey {
			break
		}
		q.next()
		skey := &Subkey{PublicKey: sub}
		if err := readFollowingSignatures(q, func(sig *packet.Signature) {
			if sig.SigType == packet.SigTypeSubkeyRevocation {
				skey.Revocations = append(skey.Revocations, sig)
			} else if skey.Binding == nil {
				skey.Binding = sig
			}
		}); err != nil {
			return nil, nil, err
		}
		if skey.Binding == nil && len(skey.Revocations) == 0 {
			return nil, nil, &errors.MalformedCompositeError{Msg: "subkey block with no binding signature"}
		}
		key.Subkeys = append(key.Subkeys, skey)
	}

	if p, err := q.peek(); err != nil {
		return nil, nil, err
	} else if p != nil {
		return nil, nil, &errors.MalformedCompositeError{Msg: "unexpected packet after composed key"}
	}

	return key, warnings, nil
}

// ReadPrivateKey parses exactly one composed secret key from r, using
// the same grammar as ReadPublicKey. Secret subkeys (and the primary
// itself) are returned still possibly Encrypted; callers that need the
// plaintext material call Decrypt on the relevant packet.PrivateKey.
func ReadPrivateKey(r io.Reader) (*SignedSecretKey, []Warning, error) {
	q := newPacketQueue(r)
	var warnings []Warning

	first, err := q.next()
	if err != nil {
		return nil, nil, err
	}
	primary, ok := first.(*packet.PrivateKey)
	if !ok || primary.IsSubkey {
		return nil, nil, &errors.MalformedCompositeError{Msg: "composed key must begin with a primary secret key packet"}
	}

	key := &SignedSecretKey{PrimaryKey: primary}

	if err := readDirectSignatures(q, func(sig *packet.Signature) {
		if sig.SigType == packet.SigTypeKeyRevocation {
			key.Revocations = append(key.Revocations, sig)
		} else {
			key.DirectSignatures = append(key.DirectSignatures, sig)
		}
	}); err != nil {
		return nil, nil, err
	}

	for {
		p, err := q.peek()
		if err != nil {
			return nil, nil, err
		}
		uid, ok := p.(*packet.UserId)
		if !ok {
			break
		}
		q.next()
		identity := &Identity{UserId: uid}
		if err := readFollowingSignatures(q, func(sig *packet.Signature) {
			if sig.SigType == packet.SigTypeCertificationRevocation {
				identity.Revocations = append(identity.Revocations, sig)
			} else if sig.IssuerKeyId != nil && *sig.IssuerKeyId == primary.KeyId {
				var demoted *packet.Signature
				identity.SelfSignature, demoted = updateSelfSignature(identity.SelfSignature, sig)
				if demoted != nil {
					identity.Certifications = append(identity.Certifications, demoted)
				}
			} else {
				identity.Certifications = append(identity.Certifications, sig)
			}
		}); err != nil {
			return nil, nil, err
		}
		if len(identity.Certifications) == 0 && identity.SelfSignature == nil && len(identity.Revocations) == 0 {
			return nil, nil, &errors.MalformedCompositeError{Msg: "user id block with no signatures"}
		}
		key.Identities = append(key.Identities, identity)
	}

	if len(key.Identities) == 0 {
		return nil, nil, &errors.MalformedCompositeError{Msg: "composed key has no user ids"}
	}
	key.PrimaryIdentity, warnings = choosePrimaryIdentity(key.Identities, warnings)

	for {
		p, err := q.peek()
		if err != nil {
			return nil, nil, err
		}
		attr, ok := p.(*packet.UserAttribute)
		if !ok {
			break
		}
		q.next()
		block := &AttributeBlock{UserAttribute: attr}
		if err := readFollowingSignatures(q, func(sig *packet.Signature) {
			if sig.IssuerKeyId != nil && *sig.IssuerKeyId == primary.KeyId {
				var demoted *packet.Signature
				block.SelfSignature, demoted = updateSelfSignature(block.SelfSignature, sig)
				if demoted != nil {
					block.Certifications = append(block.Certifications, demoted)
				}
			} else {
				block.Certifications = append(block.Certifications, sig)
			}
		}); err != nil {
			return nil, nil, err
		}
		key.Attributes = append(key.Attributes, block)
	}

	for {
		p, err := q.peek()
		if err != nil {
			return nil, nil, err
		}
		sub, ok := p.(*packet.PrivateKey)
		if !ok || !sub.IsSubkey {
			break
		}
		q.next()
		skey := &SecretSubkey{PublicKey: &sub.PublicKey, PrivateKey: sub}
		if err := readFollowingSignatures(q, func(sig *packet.Signature) {
			if sig.SigType == packet.SigTypeSubkeyRevocation {
				skey.Revocations = append(skey.Revocations, sig)
			} else if skey.Binding == nil {
				skey.Binding = sig
			}
		}); err != nil {
			return nil, nil, err
		}
		if skey.Binding == nil && len(skey.Revocations) == 0 {
			return nil, nil, &errors.MalformedCompositeError{Msg: "subkey block with no binding signature"}
		}
		key.Subkeys = append(key.Subkeys, skey)
	}

	if p, err := q.peek(); err != nil {
		return nil, nil, err
	} else if p != nil {
		return nil, nil, &errors.MalformedCompositeError{Msg: "unexpected packet after composed key"}
	}

	return key, warnings, nil
}

// readDirectSignatures consumes a run of leading Signature packets
// (DirectSig* in the grammar).
func readDirectSignatures(q *packetQueue, add func(*packet.Signature)) error {
	for {
		p, err := q.peek()
		if err != nil {
			return err
		}
		sig, ok := p.(*packet.Signature)
		if !ok {
			return nil
		}
		q.next()
		add(sig)
	}
}

// readFollowingSignatures consumes the Sig+ that follows a UserId,
// UserAttribute, or Subkey packet within its block.
func readFollowingSignatures(q *packetQueue, add func(*packet.Signature)) error {
	n := 0
	for {
		p, err := q.peek()
		if err != nil {
			return err
		}
		sig, ok := p.(*packet.Signature)
		if !ok {
			break
		}
		q.next()
		add(sig)
		n++
	}
	if n == 0 {
		return &errors.MalformedCompositeError{Msg: "block requires at least one signature"}
	}
	return nil
}

// updateSelfSignature is called for each signature issued by the primary
// key over an identity or user attribute block. It keeps the most recent
// self-signature by hashed CreationTime as current, breaking an exact tie
// in favor of candidate (which, since callers offer signatures in stream
// order, is always the later one). Whichever signature loses is returned
// as demoted, to be recorded as an ordinary certification instead.
func updateSelfSignature(current, candidate *packet.Signature) (newCurrent, demoted *packet.Signature) {
	if current == nil {
		return candidate, nil
	}
	if !candidate.CreationTime.Before(current.CreationTime) {
		return candidate, current
	}
	return current, candidate
}

// choosePrimaryIdentity picks the identity marked IsPrimaryId on its
// self-signature, falling back to the first identity (with a warning)
// when none is marked.
func choosePrimaryIdentity(identities []*Identity, warnings []Warning) (*Identity, []Warning) {
	for _, id := range identities {
		if id.SelfSignature != nil && id.SelfSignature.IsPrimaryId != nil && *id.SelfSignature.IsPrimaryId {
			return id, warnings
		}
	}
	warnings = append(warnings, Warning{Msg: "no user id marked primary; promoting the first user id"})
	return identities[0], warnings
}
