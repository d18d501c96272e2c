package packet

import (
	"bytes"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/binary"
	"io"
	"math/big"
	"strconv"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/pgpkit/openpgp/errors"
	"github.com/pgpkit/openpgp/internal/algorithm"
	"github.com/pgpkit/openpgp/internal/encoding"
)

// SignatureType identifies what a signature asserts (RFC 4880, section
// 5.2.1).
type SignatureType uint8

const (
	SigTypeBinary                  SignatureType = 0x00
	SigTypeText                    SignatureType = 0x01
	SigTypeGenericCert             SignatureType = 0x10
	SigTypePersonaCert             SignatureType = 0x11
	SigTypeCasualCert              SignatureType = 0x12
	SigTypePositiveCert            SignatureType = 0x13
	SigTypeSubkeyBinding           SignatureType = 0x18
	SigTypePrimaryKeyBinding       SignatureType = 0x19
	SigTypeDirectSignature         SignatureType = 0x1F
	SigTypeKeyRevocation           SignatureType = 0x20
	SigTypeSubkeyRevocation        SignatureType = 0x28
	SigTypeCertificationRevocation SignatureType = 0x30
	SigTypeTimestamp               SignatureType = 0x40
)

// IsCertification reports whether t certifies a key/user-id binding
// (one of the four certification types, RFC 4880 section 5.2.1).
func (t SignatureType) IsCertification() bool {
	switch t {
	case SigTypeGenericCert, SigTypePersonaCert, SigTypeCasualCert, SigTypePositiveCert:
		return true
	}
	return false
}

// RevocationReasonCode is the first octet of a Revocation Reason
// subpacket (RFC 4880, section 5.2.3.23).
type RevocationReasonCode uint8

const (
	RevocationNoReason     RevocationReasonCode = 0
	RevocationKeySuperseded RevocationReasonCode = 1
	RevocationKeyCompromised RevocationReasonCode = 2
	RevocationKeyRetired   RevocationReasonCode = 3
	RevocationUserIdNotValid RevocationReasonCode = 32
)

// RevocationKey designates a third-party key authorized to revoke the
// key this signature is attached to (RFC 4880, section 5.2.3.15).
type RevocationKey struct {
	Sensitive   bool
	PubKeyAlgo  PublicKeyAlgorithm
	Fingerprint []byte
}

// Notation is a single Notation Data subpacket (RFC 4880, section
// 5.2.3.16): an arbitrary name/value pair a signer attaches to a
// signature.
type Notation struct {
	IsHumanReadable bool
	Name            string
	Value           []byte
}

// Signature represents a signature packet (RFC 4880, section 5.2). Only
// the subpacket fields this module recognizes are promoted to named
// fields; any other hashed or unhashed subpacket is retained in
// unknownSubpackets for faithful re-serialization.
type Signature struct {
	Version    int
	SigType    SignatureType
	PubKeyAlgo PublicKeyAlgorithm
	Hash       algorithm.Hash

	// HashSuffix is the hashed material as it appeared in (or will
	// appear in) the signed data: the signature's own version/type/
	// algorithm/hashed-subpacket-area, followed by its trailer. It lets
	// Verify recompute the digest without re-deriving TBH layout.
	HashSuffix []byte
	HashTag    [2]byte

	CreationTime    time.Time
	SigLifetimeSecs *uint32
	KeyLifetimeSecs *uint32

	PreferredSymmetric    []uint8
	PreferredHash         []uint8
	PreferredCompression  []uint8

	IssuerKeyId       *uint64
	IssuerFingerprint []byte

	IsPrimaryId *bool

	FlagsValid               bool
	FlagCertify              bool
	FlagSign                 bool
	FlagEncryptCommunications bool
	FlagEncryptStorage       bool
	FlagAuthenticate         bool

	RevocationReason     *RevocationReasonCode
	RevocationReasonText string

	TrustLevel             uint8
	TrustAmount            uint8
	TrustRegularExpression *string

	EmbeddedSignature *Signature

	// RevocationKeyInfo designates a third-party key authorized to revoke
	// this one (RFC 4880, section 5.2.3.15).
	RevocationKeyInfo *RevocationKey

	Notations []Notation

	KeyServerPrefNoModify bool

	PolicyURI string

	FeaturesValid               bool
	FeatureModificationDetection bool

	unknownSubpackets []outputSubpacket

	RSASignature         *encoding.MPI
	DSASigR, DSASigS     *encoding.MPI
	ECDSASigR, ECDSASigS *encoding.MPI
	EdDSASigR, EdDSASigS *encoding.MPI
}

// outputSubpacket is a subpacket staged for serialization: either one
// this module constructed, or one it parsed and is carrying through
// unmodified.
type outputSubpacket struct {
	hashed    bool
	critical  bool
	subType   signatureSubpacketType
	contents  []byte
}

type signatureSubpacketType uint8

const (
	subpacketSignatureCreationTime   signatureSubpacketType = 2
	subpacketSignatureExpirationTime signatureSubpacketType = 3
	subpacketTrustSignature          signatureSubpacketType = 5
	subpacketRegularExpression       signatureSubpacketType = 6
	subpacketRevocable               signatureSubpacketType = 7
	subpacketKeyExpirationTime       signatureSubpacketType = 9
	subpacketPreferredSymmetric      signatureSubpacketType = 11
	subpacketRevocationKey           signatureSubpacketType = 12
	subpacketIssuer                  signatureSubpacketType = 16
	subpacketNotationData            signatureSubpacketType = 20
	subpacketPreferredHash           signatureSubpacketType = 21
	subpacketPreferredCompression    signatureSubpacketType = 22
	subpacketKeyServerPreferences    signatureSubpacketType = 23
	subpacketPrimaryUserId           signatureSubpacketType = 25
	subpacketPolicyURI               signatureSubpacketType = 26
	subpacketKeyFlags                signatureSubpacketType = 27
	subpacketRevocationReason        signatureSubpacketType = 29
	subpacketFeatures                signatureSubpacketType = 30
	subpacketEmbeddedSignature       signatureSubpacketType = 32
	subpacketIssuerFingerprint       signatureSubpacketType = 33
)

func (sig *Signature) parse(r io.Reader) error {
	var buf [1]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	sig.Version = int(buf[0])
	switch sig.Version {
	case 3:
		return sig.parseV3(r)
	case 4, 5:
		return sig.parseV4(r)
	default:
		return errors.UnsupportedError("signature packet version " + strconv.Itoa(sig.Version))
	}
}

func (sig *Signature) parseV3(r io.Reader) error {
	var buf [5]byte
	// hash material length octet (always 5), type, creation time
	if _, err := readFull(r, buf[:1]); err != nil {
		return err
	}
	if buf[0] != 5 {
		return &errors.MalformedInputError{Msg: "unexpected v3 signature hashed-material length"}
	}
	var body [5]byte
	if _, err := readFull(r, body[:]); err != nil {
		return err
	}
	sig.SigType = SignatureType(body[0])
	sig.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(body[1:5])), 0)

	var issuer [8]byte
	if _, err := readFull(r, issuer[:]); err != nil {
		return err
	}
	keyId := binary.BigEndian.Uint64(issuer[:])
	sig.IssuerKeyId = &keyId

	var algoHash [2]byte
	if _, err := readFull(r, algoHash[:]); err != nil {
		return err
	}
	sig.PubKeyAlgo = PublicKeyAlgorithm(algoHash[0])
	hash, ok := algorithm.HashById[algoHash[1]]
	if !ok {
		return &errors.UnsupportedAlgorithmError{Algorithm: algoHash[1]}
	}
	sig.Hash = hash

	var tag [2]byte
	if _, err := readFull(r, tag[:]); err != nil {
		return err
	}
	sig.HashTag = tag

	return sig.parseSignatureMPIs(r)
}

func (sig *Signature) parseV4(r io.Reader) error {
	var buf [2]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	sig.SigType = SignatureType(buf[0])
	var algoHash [1]byte
	sig.PubKeyAlgo = PublicKeyAlgorithm(buf[1])
	if _, err := readFull(r, algoHash[:]); err != nil {
		return err
	}
	h, ok := algorithm.HashById[algoHash[0]]
	if !ok {
		return &errors.UnsupportedAlgorithmError{Algorithm: algoHash[0]}
	}
	sig.Hash = h

	hashedLen, err := readSubpacketAreaLength(r)
	if err != nil {
		return err
	}
	hashedArea := make([]byte, hashedLen)
	if _, err := readFull(r, hashedArea); err != nil {
		return err
	}
	if err := sig.parseSubpackets(hashedArea, true); err != nil {
		return err
	}

	// HashSuffix: version, sigtype, pubkeyalgo, hash, 2-byte hashed len,
	// hashed area, then the version-specific trailer (RFC 4880 section
	// 5.2.4).
	var prologue bytes.Buffer
	prologue.WriteByte(byte(sig.Version))
	prologue.WriteByte(byte(sig.SigType))
	prologue.WriteByte(byte(sig.PubKeyAlgo))
	prologue.WriteByte(sig.Hash.Id())
	prologue.WriteByte(byte(hashedLen >> 8))
	prologue.WriteByte(byte(hashedLen))
	prologue.Write(hashedArea)
	trailer := signatureTrailer(prologue.Len())
	sig.HashSuffix = append(append([]byte{}, prologue.Bytes()...), trailer...)

	unhashedLen, err := readSubpacketAreaLength(r)
	if err != nil {
		return err
	}
	unhashedArea := make([]byte, unhashedLen)
	if _, err := readFull(r, unhashedArea); err != nil {
		return err
	}
	if err := sig.parseSubpackets(unhashedArea, false); err != nil {
		return err
	}

	var tag [2]byte
	if _, err := readFull(r, tag[:]); err != nil {
		return err
	}
	sig.HashTag = tag

	return sig.parseSignatureMPIs(r)
}

// signatureTrailer returns the fixed trailer appended after the hashed
// prologue when constructing the to-be-hashed byte sequence for a v4/v5
// signature (RFC 4880, section 5.2.4): the octet 4, 0xFF, 4-octet prologue
// length. The v4 layout is used for parsed v5 signatures as well.
func signatureTrailer(prologueLen int) []byte {
	return []byte{4, 0xFF, byte(prologueLen >> 24), byte(prologueLen >> 16), byte(prologueLen >> 8), byte(prologueLen)}
}

func readSubpacketAreaLength(r io.Reader) (int, error) {
	var buf [2]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int(buf[0])<<8 | int(buf[1]), nil
}

func (sig *Signature) parseSignatureMPIs(r io.Reader) error {
	switch sig.PubKeyAlgo {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly:
		sig.RSASignature = new(encoding.MPI)
		_, err := sig.RSASignature.ReadFrom(r)
		return err
	case PubKeyAlgoDSA:
		sig.DSASigR = new(encoding.MPI)
		if _, err := sig.DSASigR.ReadFrom(r); err != nil {
			return err
		}
		sig.DSASigS = new(encoding.MPI)
		_, err := sig.DSASigS.ReadFrom(r)
		return err
	case PubKeyAlgoECDSA:
		sig.ECDSASigR = new(encoding.MPI)
		if _, err := sig.ECDSASigR.ReadFrom(r); err != nil {
			return err
		}
		sig.ECDSASigS = new(encoding.MPI)
		_, err := sig.ECDSASigS.ReadFrom(r)
		return err
	case PubKeyAlgoEdDSA:
		sig.EdDSASigR = new(encoding.MPI)
		if _, err := sig.EdDSASigR.ReadFrom(r); err != nil {
			return err
		}
		sig.EdDSASigS = new(encoding.MPI)
		_, err := sig.EdDSASigS.ReadFrom(r)
		return err
	default:
		return &errors.UnsupportedAlgorithmError{Algorithm: sig.PubKeyAlgo}
	}
}

// parseSubpackets decodes a subpacket area (RFC 4880, section 5.2.3.1).
// Unrecognized subpackets are retained in unknownSubpackets so they
// round-trip; an unrecognized subpacket with the critical bit set causes
// verification of this signature to fail (CriticalUnknownError), per RFC
// 4880 section 5.2.3.1, but does not fail parsing itself.
func (sig *Signature) parseSubpackets(area []byte, hashed bool) error {
	for len(area) > 0 {
		length, lengthLen, err := readSubpacketLength(area)
		if err != nil {
			return err
		}
		area = area[lengthLen:]
		if length == 0 || int(length) > len(area) {
			return &errors.MalformedInputError{Msg: "subpacket length exceeds its area"}
		}
		packet := area[:length]
		area = area[length:]

		subType := packet[0] & 0x7f
		critical := packet[0]&0x80 != 0
		body := packet[1:]

		if err := sig.parseSubpacket(signatureSubpacketType(subType), critical, hashed, body); err != nil {
			return err
		}
	}
	return nil
}

func readSubpacketLength(area []byte) (length uint32, lengthLen int, err error) {
	if len(area) == 0 {
		return 0, 0, &errors.MalformedInputError{Msg: "empty subpacket length"}
	}
	switch {
	case area[0] < 192:
		return uint32(area[0]), 1, nil
	case area[0] < 255:
		if len(area) < 2 {
			return 0, 0, &errors.MalformedInputError{Msg: "truncated 2-octet subpacket length"}
		}
		return (uint32(area[0])-192)<<8 + uint32(area[1]) + 192, 2, nil
	default:
		if len(area) < 5 {
			return 0, 0, &errors.MalformedInputError{Msg: "truncated 5-octet subpacket length"}
		}
		return uint32(area[1])<<24 | uint32(area[2])<<16 | uint32(area[3])<<8 | uint32(area[4]), 5, nil
	}
}

func (sig *Signature) parseSubpacket(subType signatureSubpacketType, critical, hashed bool, body []byte) error {
	recognized := true
	switch subType {
	case subpacketSignatureCreationTime:
		if len(body) != 4 {
			return &errors.MalformedInputError{Msg: "malformed signature creation time subpacket"}
		}
		sig.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(body)), 0)
	case subpacketSignatureExpirationTime:
		if len(body) != 4 {
			return &errors.MalformedInputError{Msg: "malformed signature expiration time subpacket"}
		}
		v := binary.BigEndian.Uint32(body)
		sig.SigLifetimeSecs = &v
	case subpacketKeyExpirationTime:
		if len(body) != 4 {
			return &errors.MalformedInputError{Msg: "malformed key expiration time subpacket"}
		}
		v := binary.BigEndian.Uint32(body)
		sig.KeyLifetimeSecs = &v
	case subpacketPreferredSymmetric:
		sig.PreferredSymmetric = append([]byte{}, body...)
	case subpacketPreferredHash:
		sig.PreferredHash = append([]byte{}, body...)
	case subpacketPreferredCompression:
		sig.PreferredCompression = append([]byte{}, body...)
	case subpacketIssuer:
		if len(body) != 8 {
			return &errors.MalformedInputError{Msg: "malformed issuer subpacket"}
		}
		v := binary.BigEndian.Uint64(body)
		sig.IssuerKeyId = &v
	case subpacketIssuerFingerprint:
		if len(body) < 1 {
			return &errors.MalformedInputError{Msg: "malformed issuer fingerprint subpacket"}
		}
		sig.IssuerFingerprint = append([]byte{}, body[1:]...)
	case subpacketPrimaryUserId:
		if len(body) != 1 {
			return &errors.MalformedInputError{Msg: "malformed primary user id subpacket"}
		}
		v := body[0] != 0
		sig.IsPrimaryId = &v
	case subpacketKeyFlags:
		sig.FlagsValid = true
		if len(body) > 0 {
			sig.FlagCertify = body[0]&0x01 != 0
			sig.FlagSign = body[0]&0x02 != 0
			sig.FlagEncryptCommunications = body[0]&0x04 != 0
			sig.FlagEncryptStorage = body[0]&0x08 != 0
		}
		if len(body) > 1 {
			sig.FlagAuthenticate = body[1]&0x20 != 0
		}
	case subpacketRevocationReason:
		if len(body) < 1 {
			return &errors.MalformedInputError{Msg: "malformed revocation reason subpacket"}
		}
		code := RevocationReasonCode(body[0])
		sig.RevocationReason = &code
		sig.RevocationReasonText = string(body[1:])
	case subpacketTrustSignature:
		if len(body) != 2 {
			return &errors.MalformedInputError{Msg: "malformed trust signature subpacket"}
		}
		sig.TrustLevel = body[0]
		sig.TrustAmount = body[1]
	case subpacketRegularExpression:
		s := string(body)
		sig.TrustRegularExpression = &s
	case subpacketEmbeddedSignature:
		embedded := new(Signature)
		if err := embedded.parse(bytes.NewReader(body)); err != nil {
			return err
		}
		sig.EmbeddedSignature = embedded
	case subpacketRevocationKey:
		if len(body) != 22 {
			return &errors.MalformedInputError{Msg: "malformed revocation key subpacket"}
		}
		sig.RevocationKeyInfo = &RevocationKey{
			Sensitive:   body[0]&0x40 != 0,
			PubKeyAlgo:  PublicKeyAlgorithm(body[1]),
			Fingerprint: append([]byte{}, body[2:]...),
		}
	case subpacketNotationData:
		if len(body) < 8 {
			return &errors.MalformedInputError{Msg: "malformed notation data subpacket"}
		}
		nameLen := int(binary.BigEndian.Uint16(body[4:6]))
		valueLen := int(binary.BigEndian.Uint16(body[6:8]))
		if len(body) != 8+nameLen+valueLen {
			return &errors.MalformedInputError{Msg: "malformed notation data subpacket"}
		}
		sig.Notations = append(sig.Notations, Notation{
			IsHumanReadable: body[0]&0x80 != 0,
			Name:            string(body[8 : 8+nameLen]),
			Value:           append([]byte{}, body[8+nameLen:8+nameLen+valueLen]...),
		})
	case subpacketKeyServerPreferences:
		if len(body) > 0 {
			sig.KeyServerPrefNoModify = body[0]&0x80 != 0
		}
	case subpacketPolicyURI:
		sig.PolicyURI = string(body)
	case subpacketFeatures:
		sig.FeaturesValid = true
		if len(body) > 0 {
			sig.FeatureModificationDetection = body[0]&0x01 != 0
		}
	default:
		recognized = false
	}

	if !recognized {
		if critical && hashed {
			return &errors.CriticalUnknownError{SubpacketType: uint8(subType)}
		}
		sig.unknownSubpackets = append(sig.unknownSubpackets, outputSubpacket{
			hashed:   hashed,
			critical: critical,
			subType:  subType,
			contents: append([]byte{}, body...),
		})
	}
	return nil
}

// Serialize writes the packet (header + body) to w. It requires the
// signature to already carry its signature MPIs and HashTag (set by
// sign); the subpacket areas are re-encoded from the Signature's fields.
func (sig *Signature) Serialize(w io.Writer) error {
	sigBody, err := sig.serializeBody()
	if err != nil {
		return err
	}
	if err := serializeHeader(w, packetTypeSignature, sigBody.Len()); err != nil {
		return err
	}
	_, err = w.Write(sigBody.Bytes())
	return err
}

func (sig *Signature) serializeBody() (*bytes.Buffer, error) {
	var buf bytes.Buffer
	buf.WriteByte(4) // this module only emits v4 signatures
	buf.WriteByte(byte(sig.SigType))
	buf.WriteByte(byte(sig.PubKeyAlgo))
	buf.WriteByte(sig.Hash.Id())

	hashed := sig.serializeHashedSubpackets()
	buf.WriteByte(byte(len(hashed) >> 8))
	buf.WriteByte(byte(len(hashed)))
	buf.Write(hashed)

	unhashed := sig.serializeUnhashedSubpackets()
	buf.WriteByte(byte(len(unhashed) >> 8))
	buf.WriteByte(byte(len(unhashed)))
	buf.Write(unhashed)

	buf.Write(sig.HashTag[:])

	if err := sig.serializeSignatureMPIs(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (sig *Signature) serializeSignatureMPIs(buf *bytes.Buffer) error {
	switch sig.PubKeyAlgo {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly:
		buf.Write(sig.RSASignature.EncodedBytes())
	case PubKeyAlgoDSA:
		buf.Write(sig.DSASigR.EncodedBytes())
		buf.Write(sig.DSASigS.EncodedBytes())
	case PubKeyAlgoECDSA:
		buf.Write(sig.ECDSASigR.EncodedBytes())
		buf.Write(sig.ECDSASigS.EncodedBytes())
	case PubKeyAlgoEdDSA:
		buf.Write(sig.EdDSASigR.EncodedBytes())
		buf.Write(sig.EdDSASigS.EncodedBytes())
	default:
		return &errors.UnsupportedAlgorithmError{Algorithm: sig.PubKeyAlgo}
	}
	return nil
}

func writeSubpacket(buf *bytes.Buffer, subType signatureSubpacketType, critical bool, body []byte) {
	length := len(body) + 1
	switch {
	case length < 192:
		buf.WriteByte(byte(length))
	case length < 8384:
		l := length - 192
		buf.WriteByte(192 + byte(l>>8))
		buf.WriteByte(byte(l))
	default:
		buf.WriteByte(255)
		buf.WriteByte(byte(length >> 24))
		buf.WriteByte(byte(length >> 16))
		buf.WriteByte(byte(length >> 8))
		buf.WriteByte(byte(length))
	}
	tag := byte(subType)
	if critical {
		tag |= 0x80
	}
	buf.WriteByte(tag)
	buf.Write(body)
}

func (sig *Signature) serializeHashedSubpackets() []byte {
	var buf bytes.Buffer
	var t [4]byte
	binary.BigEndian.PutUint32(t[:], uint32(sig.CreationTime.Unix()))
	writeSubpacket(&buf, subpacketSignatureCreationTime, true, t[:])

	if sig.SigLifetimeSecs != nil {
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], *sig.SigLifetimeSecs)
		writeSubpacket(&buf, subpacketSignatureExpirationTime, false, v[:])
	}
	if sig.KeyLifetimeSecs != nil {
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], *sig.KeyLifetimeSecs)
		writeSubpacket(&buf, subpacketKeyExpirationTime, false, v[:])
	}
	if sig.IsPrimaryId != nil && *sig.IsPrimaryId {
		writeSubpacket(&buf, subpacketPrimaryUserId, false, []byte{1})
	}
	if sig.FlagsValid {
		flags := byte(0)
		if sig.FlagCertify {
			flags |= 0x01
		}
		if sig.FlagSign {
			flags |= 0x02
		}
		if sig.FlagEncryptCommunications {
			flags |= 0x04
		}
		if sig.FlagEncryptStorage {
			flags |= 0x08
		}
		second := byte(0)
		if sig.FlagAuthenticate {
			second |= 0x20
		}
		writeSubpacket(&buf, subpacketKeyFlags, false, []byte{flags, second})
	}
	if len(sig.PreferredSymmetric) > 0 {
		writeSubpacket(&buf, subpacketPreferredSymmetric, false, sig.PreferredSymmetric)
	}
	if len(sig.PreferredHash) > 0 {
		writeSubpacket(&buf, subpacketPreferredHash, false, sig.PreferredHash)
	}
	if len(sig.PreferredCompression) > 0 {
		writeSubpacket(&buf, subpacketPreferredCompression, false, sig.PreferredCompression)
	}
	if sig.RevocationReason != nil {
		body := append([]byte{byte(*sig.RevocationReason)}, []byte(sig.RevocationReasonText)...)
		writeSubpacket(&buf, subpacketRevocationReason, false, body)
	}
	if sig.TrustLevel != 0 {
		writeSubpacket(&buf, subpacketTrustSignature, false, []byte{sig.TrustLevel, sig.TrustAmount})
	}
	if sig.TrustRegularExpression != nil {
		writeSubpacket(&buf, subpacketRegularExpression, false, []byte(*sig.TrustRegularExpression))
	}
	if len(sig.IssuerFingerprint) > 0 {
		body := append([]byte{byte(sig.Version)}, sig.IssuerFingerprint...)
		writeSubpacket(&buf, subpacketIssuerFingerprint, false, body)
	}
	if sig.RevocationKeyInfo != nil {
		class := byte(0x80)
		if sig.RevocationKeyInfo.Sensitive {
			class |= 0x40
		}
		body := append([]byte{class, byte(sig.RevocationKeyInfo.PubKeyAlgo)}, sig.RevocationKeyInfo.Fingerprint...)
		writeSubpacket(&buf, subpacketRevocationKey, false, body)
	}
	for _, n := range sig.Notations {
		var flags [4]byte
		if n.IsHumanReadable {
			flags[0] = 0x80
		}
		nameBytes := []byte(n.Name)
		var lens [4]byte
		binary.BigEndian.PutUint16(lens[0:2], uint16(len(nameBytes)))
		binary.BigEndian.PutUint16(lens[2:4], uint16(len(n.Value)))
		body := append(append(append([]byte{}, flags[:]...), lens[:]...), nameBytes...)
		body = append(body, n.Value...)
		writeSubpacket(&buf, subpacketNotationData, false, body)
	}
	if sig.KeyServerPrefNoModify {
		writeSubpacket(&buf, subpacketKeyServerPreferences, false, []byte{0x80})
	}
	if sig.PolicyURI != "" {
		writeSubpacket(&buf, subpacketPolicyURI, false, []byte(sig.PolicyURI))
	}
	if sig.FeaturesValid {
		features := byte(0)
		if sig.FeatureModificationDetection {
			features |= 0x01
		}
		writeSubpacket(&buf, subpacketFeatures, false, []byte{features})
	}
	for _, s := range sig.unknownSubpackets {
		if s.hashed {
			writeSubpacket(&buf, s.subType, s.critical, s.contents)
		}
	}
	return buf.Bytes()
}

func (sig *Signature) serializeUnhashedSubpackets() []byte {
	var buf bytes.Buffer
	if sig.IssuerKeyId != nil {
		var v [8]byte
		binary.BigEndian.PutUint64(v[:], *sig.IssuerKeyId)
		writeSubpacket(&buf, subpacketIssuer, false, v[:])
	}
	for _, s := range sig.unknownSubpackets {
		if !s.hashed {
			writeSubpacket(&buf, s.subType, s.critical, s.contents)
		}
	}
	return buf.Bytes()
}

// buildToBeHashed returns the bytes that get fed to sig.Hash.New() before
// the signed content's own digest material: for v4/v5 this is exactly
// HashSuffix. Callers must have already written the signed-content-type
// specific material (the public key's SerializeForHash output, the user
// id string, etc.) to the same hash.Hash before calling this, per RFC
// 4880 section 5.2.4.
func (sig *Signature) buildToBeHashed() ([]byte, error) {
	if sig.Version == 3 {
		var body bytes.Buffer
		body.WriteByte(byte(sig.SigType))
		var t [4]byte
		binary.BigEndian.PutUint32(t[:], uint32(sig.CreationTime.Unix()))
		body.Write(t[:])
		return body.Bytes(), nil
	}
	if len(sig.HashSuffix) == 0 {
		return nil, &errors.InternalError{Err: errInternalMissingHashSuffix}
	}
	return sig.HashSuffix, nil
}

var errInternalMissingHashSuffix = errors.StructuralError("signature has no hash suffix; call Sign first")

// digest computes the signature's digest over signedMaterial, a function
// that writes the type-specific signed content to h before the
// signature's own TBH suffix is appended.
func (sig *Signature) digest(signedMaterial func(h io.Writer)) ([]byte, error) {
	if !sig.Hash.Available() {
		return nil, &errors.UnsupportedAlgorithmError{Algorithm: sig.Hash.Id()}
	}
	h := sig.Hash.New()
	signedMaterial(h)
	tbh, err := sig.buildToBeHashed()
	if err != nil {
		return nil, err
	}
	h.Write(tbh)
	return h.Sum(nil), nil
}

// sign computes sig's digest over signedMaterial and fills in its
// signature MPIs using priv. It sets CreationTime, HashSuffix and
// HashTag as a side effect, so it must run before Serialize.
func (sig *Signature) sign(priv *PrivateKey, passwordFn PasswordFn, cfg *Config, signedMaterial func(h io.Writer)) error {
	if priv.Encrypted {
		if err := priv.Decrypt(passwordFn); err != nil {
			return err
		}
	}
	if sig.CreationTime.IsZero() {
		sig.CreationTime = cfg.now()
	}
	sig.Version = 4
	sig.PubKeyAlgo = priv.PubKeyAlgo
	if !sig.Hash.Available() {
		sig.Hash = cfg.hash()
	}
	keyId := priv.KeyId
	sig.IssuerKeyId = &keyId
	sig.IssuerFingerprint = priv.Fingerprint

	hashedArea := sig.serializeHashedSubpackets()
	var prologue bytes.Buffer
	prologue.WriteByte(byte(sig.Version))
	prologue.WriteByte(byte(sig.SigType))
	prologue.WriteByte(byte(sig.PubKeyAlgo))
	prologue.WriteByte(sig.Hash.Id())
	prologue.WriteByte(byte(len(hashedArea) >> 8))
	prologue.WriteByte(byte(len(hashedArea)))
	prologue.Write(hashedArea)
	trailer := signatureTrailer(prologue.Len())
	sig.HashSuffix = append(append([]byte{}, prologue.Bytes()...), trailer...)

	digest, err := sig.digest(signedMaterial)
	if err != nil {
		return err
	}
	sig.HashTag[0], sig.HashTag[1] = digest[0], digest[1]

	return sig.signDigest(priv, digest, cfg)
}

func (sig *Signature) signDigest(priv *PrivateKey, digest []byte, cfg *Config) error {
	switch params := priv.Params.(type) {
	case *rsaSecretParams:
		privKey := params.privateKey(priv.PublicKey.Params.(*rsaPublicParams))
		sigBytes, err := rsa.SignPKCS1v15(cfg.random(), privKey, sig.Hash.HashFunc(), digest)
		if err != nil {
			return &errors.InternalError{Err: err}
		}
		sig.RSASignature = encoding.NewMPI(sigBytes)
		return nil
	case *dsaSecretParams:
		privKey := params.privateKey(priv.PublicKey.Params.(*dsaPublicParams))
		r, s, err := dsa.Sign(cfg.random(), privKey, digest)
		if err != nil {
			return &errors.InternalError{Err: err}
		}
		sig.DSASigR = encoding.NewMPI(r.Bytes())
		sig.DSASigS = encoding.NewMPI(s.Bytes())
		return nil
	case *ecdsaSecretParams:
		privKey, err := params.privateKey(priv.PublicKey.Params.(*ecdsaPublicParams))
		if err != nil {
			return err
		}
		r, s, err := ecdsa.Sign(cfg.random(), privKey, digest)
		if err != nil {
			return &errors.InternalError{Err: err}
		}
		sig.ECDSASigR = encoding.NewMPI(r.Bytes())
		sig.ECDSASigS = encoding.NewMPI(s.Bytes())
		return nil
	case *eddsaSecretParams:
		edPriv := params.privateKey(priv.PublicKey.Params.(*eddsaPublicParams))
		sigBytes := ed25519.Sign(edPriv, digest)
		sig.EdDSASigR = encoding.NewMPI(sigBytes[:32])
		sig.EdDSASigS = encoding.NewMPI(sigBytes[32:])
		return nil
	default:
		return &errors.UnsupportedAlgorithmError{Algorithm: priv.PubKeyAlgo}
	}
}

// verify checks sig's signature over the material written to h by
// signedMaterial against pub. It returns a SignatureError when the hash
// tag or the signature does not match.
func (sig *Signature) verify(pub *PublicKey, signedMaterial func(h io.Writer)) error {
	if sig.PubKeyAlgo != pub.PubKeyAlgo {
		return errors.InvalidArgumentError("signature was not created by this key's algorithm")
	}
	digest, err := sig.digest(signedMaterial)
	if err != nil {
		return err
	}
	if digest[0] != sig.HashTag[0] || digest[1] != sig.HashTag[1] {
		return errors.SignatureError("hash tag doesn't match")
	}

	switch params := pub.Params.(type) {
	case *rsaPublicParams:
		if sig.RSASignature == nil {
			return errors.StructuralError("RSA signature packet missing signature MPI")
		}
		if err := rsa.VerifyPKCS1v15(params.publicKey(), sig.Hash.HashFunc(), digest, sig.RSASignature.Bytes()); err != nil {
			return errors.SignatureError("RSA verification failure")
		}
		return nil
	case *dsaPublicParams:
		if sig.DSASigR == nil || sig.DSASigS == nil {
			return errors.StructuralError("DSA signature packet missing signature MPIs")
		}
		r := new(big.Int).SetBytes(sig.DSASigR.Bytes())
		s := new(big.Int).SetBytes(sig.DSASigS.Bytes())
		if !dsa.Verify(params.publicKey(), digest, r, s) {
			return errors.SignatureError("DSA verification failure")
		}
		return nil
	case *ecdsaPublicParams:
		ecKey, err := params.publicKey()
		if err != nil {
			return err
		}
		if sig.ECDSASigR == nil || sig.ECDSASigS == nil {
			return errors.StructuralError("ECDSA signature packet missing signature MPIs")
		}
		r := new(big.Int).SetBytes(sig.ECDSASigR.Bytes())
		s := new(big.Int).SetBytes(sig.ECDSASigS.Bytes())
		if !ecdsa.Verify(ecKey, digest, r, s) {
			return errors.SignatureError("ECDSA verification failure")
		}
		return nil
	case *eddsaPublicParams:
		if sig.EdDSASigR == nil || sig.EdDSASigS == nil {
			return errors.StructuralError("EdDSA signature packet missing signature MPIs")
		}
		sigBytes := append(append([]byte{}, sig.EdDSASigR.Bytes()...), sig.EdDSASigS.Bytes()...)
		if !ed25519.Verify(params.publicKey(), digest, sigBytes) {
			return errors.SignatureError("EdDSA verification failure")
		}
		return nil
	default:
		return &errors.UnsupportedAlgorithmError{Algorithm: pub.PubKeyAlgo}
	}
}

// Sign computes a signature of SigTypeBinary/SigTypeText over content,
// using priv, and returns the populated Signature.
func Sign(content io.Reader, priv *PrivateKey, cfg *Config, passwordFn PasswordFn, sigType SignatureType) (*Signature, error) {
	sig := &Signature{SigType: sigType}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	err = sig.sign(priv, passwordFn, cfg, func(h io.Writer) { h.Write(data) })
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// Verify checks a SigTypeBinary/SigTypeText signature over content
// against pub.
func Verify(sig *Signature, content io.Reader, pub *PublicKey) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	return sig.verify(pub, func(h io.Writer) { h.Write(data) })
}

// SignUserId computes a certification (one of the four SigType*Cert
// types) binding id to pub, issued by priv.
func SignUserId(sigType SignatureType, id string, pub *PublicKey, priv *PrivateKey, cfg *Config, passwordFn PasswordFn) (*Signature, error) {
	return CertifyUserId(&Signature{SigType: sigType}, id, pub, priv, cfg, passwordFn)
}

// CertifyUserId is SignUserId generalized to take a partially populated
// template Signature (SigType plus any key-flag/preference/expiration
// subpackets the caller wants asserted); it fills in the digest and
// signature MPIs in place and returns it.
func CertifyUserId(sig *Signature, id string, pub *PublicKey, priv *PrivateKey, cfg *Config, passwordFn PasswordFn) (*Signature, error) {
	if !sig.SigType.IsCertification() {
		return nil, errors.InvalidArgumentError("not a certification signature type")
	}
	if err := sig.sign(priv, passwordFn, cfg, func(h io.Writer) {
		pub.SerializeForHash(h)
		writeUserIdForHash(h, id)
	}); err != nil {
		return nil, err
	}
	return sig, nil
}

// SignUserAttribute computes a positive certification binding attr to
// pub, issued by priv.
func SignUserAttribute(attr *UserAttribute, pub *PublicKey, priv *PrivateKey, cfg *Config, passwordFn PasswordFn) (*Signature, error) {
	sig := &Signature{SigType: SigTypePositiveCert, FlagsValid: true, FlagCertify: true}
	if err := sig.sign(priv, passwordFn, cfg, func(h io.Writer) {
		pub.SerializeForHash(h)
		writeUserAttributeForHash(h, attr.Contents)
	}); err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifyUserIdSignature checks a certification of id over pub.
func VerifyUserIdSignature(id string, pub *PublicKey, sig *Signature) error {
	return sig.verify(pub, func(h io.Writer) {
		pub.SerializeForHash(h)
		writeUserIdForHash(h, id)
	})
}

func writeUserIdForHash(h io.Writer, id string) {
	var buf [5]byte
	buf[0] = 0xB4
	idBytes := []byte(id)
	binary.BigEndian.PutUint32(buf[1:], uint32(len(idBytes)))
	h.Write(buf[:])
	h.Write(idBytes)
}

// writeUserAttributeForHash mirrors writeUserIdForHash for a user
// attribute packet's subpacket stream (RFC 4880, section 5.2.4): a 0xD1
// prologue in place of 0xB4.
func writeUserAttributeForHash(h io.Writer, contents []byte) {
	var buf [5]byte
	buf[0] = 0xD1
	binary.BigEndian.PutUint32(buf[1:], uint32(len(contents)))
	h.Write(buf[:])
	h.Write(contents)
}

// SignKey computes a subkey-binding (or primary-key-binding) signature
// over sub, issued by priv on behalf of pub.
func SignKey(pub *PublicKey, sub *PublicKey, priv *PrivateKey, cfg *Config, passwordFn PasswordFn, sigType SignatureType) (*Signature, error) {
	sig := &Signature{SigType: sigType}
	err := sig.sign(priv, passwordFn, cfg, func(h io.Writer) {
		pub.SerializeForHash(h)
		sub.SerializeForHash(h)
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifyKeySignature checks a subkey-binding (or primary-key-binding)
// signature of sub against pub.
func VerifyKeySignature(pub *PublicKey, sub *PublicKey, sig *Signature) error {
	return sig.verify(pub, func(h io.Writer) {
		pub.SerializeForHash(h)
		sub.SerializeForHash(h)
	})
}

// RevokeKey computes a key-revocation signature over pub, issued by
// priv, with the given reason.
func RevokeKey(pub *PublicKey, priv *PrivateKey, cfg *Config, passwordFn PasswordFn, reason RevocationReasonCode, reasonText string) (*Signature, error) {
	sig := &Signature{SigType: SigTypeKeyRevocation, RevocationReason: &reason, RevocationReasonText: reasonText}
	err := sig.sign(priv, passwordFn, cfg, func(h io.Writer) {
		pub.SerializeForHash(h)
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// RevokeSubkey computes a subkey-revocation signature over sub, issued
// by priv on behalf of pub.
func RevokeSubkey(pub *PublicKey, sub *PublicKey, priv *PrivateKey, cfg *Config, passwordFn PasswordFn, reason RevocationReasonCode, reasonText string) (*Signature, error) {
	sig := &Signature{SigType: SigTypeSubkeyRevocation, RevocationReason: &reason, RevocationReasonText: reasonText}
	err := sig.sign(priv, passwordFn, cfg, func(h io.Writer) {
		pub.SerializeForHash(h)
		sub.SerializeForHash(h)
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}
