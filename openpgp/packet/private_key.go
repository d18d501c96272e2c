package packet

import (
	"bytes"
	"crypto"
	"crypto/cipher"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"io"

	"golang.org/x/crypto/ed25519"

	"github.com/pgpkit/openpgp/errors"
	"github.com/pgpkit/openpgp/internal/algorithm"
	"github.com/pgpkit/openpgp/s2k"
)

// PrivateKey represents an OpenPGP secret key or secret subkey packet (RFC
// 4880, section 5.5.3). The secret material (Params) may be either
// plaintext or still wrapped by an S2K-derived symmetric envelope; see
// Decrypt.
type PrivateKey struct {
	PublicKey
	Encrypted bool // true if Params is still wrapped and Decrypt has not been called
	Params    SecretKeyParams

	// s2kParams/s2kUsage/cipher/iv/encryptedData carry the wrapped form
	// until Decrypt unwraps it into Params.
	s2kParams     *s2k.Params
	s2kUsage      uint8
	cipher        algorithm.Cipher
	iv            []byte
	encryptedData []byte
}

// NewRSAPrivateKey returns a PrivateKey wrapping priv whose public half
// mirrors priv.PublicKey.
func NewRSAPrivateKey(pub *PublicKey, priv *rsa.PrivateKey) *PrivateKey {
	return &PrivateKey{PublicKey: *pub, Params: newRSASecretParams(priv)}
}

// NewDSAPrivateKey returns a PrivateKey wrapping priv.
func NewDSAPrivateKey(pub *PublicKey, priv *dsa.PrivateKey) *PrivateKey {
	return &PrivateKey{PublicKey: *pub, Params: newDSASecretParams(priv)}
}

// NewECDSAPrivateKey returns a PrivateKey wrapping priv.
func NewECDSAPrivateKey(pub *PublicKey, priv *ecdsa.PrivateKey) *PrivateKey {
	return &PrivateKey{PublicKey: *pub, Params: newECDSASecretParams(priv)}
}

// NewEdDSAPrivateKey returns a PrivateKey wrapping priv.
func NewEdDSAPrivateKey(pub *PublicKey, priv ed25519.PrivateKey) *PrivateKey {
	return &PrivateKey{PublicKey: *pub, Params: newEdDSASecretParams(priv)}
}

// PasswordFn supplies the passphrase protecting a PrivateKey's secret
// material. The interface does not guarantee it is called exactly once per
// Decrypt/Sign call; callers must treat it as safe for at-least-once
// invocation (see the concurrency model: password callbacks must tolerate
// repeat calls).
type PasswordFn func() ([]byte, error)

func (pk *PrivateKey) parse(r io.Reader) error {
	if err := pk.PublicKey.parse(r); err != nil {
		return err
	}
	var s2kUsageByte [1]byte
	if _, err := readFull(r, s2kUsageByte[:]); err != nil {
		return err
	}
	pk.s2kUsage = s2kUsageByte[0]

	switch pk.s2kUsage {
	case 0:
		// plaintext secret material, no checksum beyond the 2-octet sum
		// at the end (handled by splitChecksum/verifyChecksum below).
	case 254, 255:
		var cipherByte [1]byte
		if _, err := readFull(r, cipherByte[:]); err != nil {
			return err
		}
		c, ok := algorithm.CipherById[cipherByte[0]]
		if !ok {
			return &errors.UnsupportedAlgorithmError{Algorithm: cipherByte[0]}
		}
		pk.cipher = c
		params, err := s2k.Parse(r)
		if err != nil {
			return err
		}
		pk.s2kParams = params
		pk.iv = make([]byte, 16)
		if _, err := readFull(r, pk.iv); err != nil {
			return err
		}
		pk.Encrypted = true
	default:
		// Legacy symmetric-key-only encryption (s2kUsage is itself a
		// cipher id): treat identically to 254 but without an S2K-hash
		// checksum over the decrypted plaintext (SHA-1 checksum instead
		// of the simple 2-octet sum is used for usage 254 only).
		c, ok := algorithm.CipherById[pk.s2kUsage]
		if !ok {
			return &errors.UnsupportedAlgorithmError{Algorithm: pk.s2kUsage}
		}
		pk.cipher = c
		params, err := s2k.Parse(r)
		if err != nil {
			return err
		}
		pk.s2kParams = params
		pk.iv = make([]byte, 16)
		if _, err := readFull(r, pk.iv); err != nil {
			return err
		}
		pk.Encrypted = true
	}

	if pk.Encrypted {
		rest, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		pk.encryptedData = rest
		return nil
	}

	params, err := newSecretKeyParams(pk.PubKeyAlgo)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	plain, checksum, err := splitChecksum(body, pk.s2kUsage)
	if err != nil {
		return err
	}
	if err := verifyChecksum(plain, checksum, pk.s2kUsage); err != nil {
		return err
	}
	if err := params.parsePlain(bytes.NewReader(plain)); err != nil {
		return err
	}
	if err := params.validate(pk.PublicKey.Params); err != nil {
		return err
	}
	pk.Params = params
	return nil
}

func newSecretKeyParams(algo PublicKeyAlgorithm) (SecretKeyParams, error) {
	switch algo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly:
		return &rsaSecretParams{}, nil
	case PubKeyAlgoDSA:
		return &dsaSecretParams{}, nil
	case PubKeyAlgoElGamal, PubKeyAlgoElgamalSign:
		return &elgamalSecretParams{}, nil
	case PubKeyAlgoECDSA:
		return &ecdsaSecretParams{}, nil
	case PubKeyAlgoECDH:
		return &ecdhSecretParams{}, nil
	case PubKeyAlgoEdDSA:
		return &eddsaSecretParams{}, nil
	default:
		return nil, &errors.UnsupportedAlgorithmError{Algorithm: algo}
	}
}

// splitChecksum removes the trailing checksum/hash appended to decrypted
// (or always-plaintext) secret material: a SHA-1 digest for s2kUsage==254,
// or a simple 2-octet additive sum otherwise.
func splitChecksum(body []byte, s2kUsage uint8) (plain, checksum []byte, err error) {
	if s2kUsage == 254 {
		if len(body) < sha1.Size {
			return nil, nil, errors.StructuralError("secret material shorter than its SHA-1 checksum")
		}
		split := len(body) - sha1.Size
		return body[:split], body[split:], nil
	}
	if len(body) < 2 {
		return nil, nil, errors.StructuralError("secret material shorter than its checksum")
	}
	split := len(body) - 2
	return body[:split], body[split:], nil
}

func verifyChecksum(plain, checksum []byte, s2kUsage uint8) error {
	if s2kUsage == 254 {
		sum := sha1.Sum(plain)
		if !bytes.Equal(sum[:], checksum) {
			return &errors.BadPasswordError{}
		}
		return nil
	}
	var sum uint16
	for _, b := range plain {
		sum += uint16(b)
	}
	if byte(sum>>8) != checksum[0] || byte(sum) != checksum[1] {
		return &errors.BadPasswordError{}
	}
	return nil
}

// Decrypt unwraps pk's secret material using password, invoking passwordFn
// at most once. It is a no-op if pk is not encrypted.
func (pk *PrivateKey) Decrypt(passwordFn PasswordFn) error {
	if !pk.Encrypted {
		return nil
	}
	if passwordFn == nil {
		return &errors.MissingPasswordError{}
	}
	password, err := passwordFn()
	if err != nil {
		return err
	}
	if !pk.cipher.Supported() {
		return &errors.UnsupportedAlgorithmError{Algorithm: pk.cipher.Id()}
	}
	key, err := pk.s2kParams.Key(password, pk.cipher.KeySize())
	if err != nil {
		return err
	}
	block, err := pk.cipher.New(key)
	if err != nil {
		return &errors.InternalError{Err: err}
	}
	stream := cipher.NewCFBDecrypter(block, pk.iv)
	plainWithChecksum := make([]byte, len(pk.encryptedData))
	stream.XORKeyStream(plainWithChecksum, pk.encryptedData)

	plain, checksum, err := splitChecksum(plainWithChecksum, pk.s2kUsage254Equivalent())
	if err != nil {
		return err
	}
	if err := verifyChecksum(plain, checksum, pk.s2kUsage254Equivalent()); err != nil {
		return err
	}

	params, err := newSecretKeyParams(pk.PubKeyAlgo)
	if err != nil {
		return err
	}
	if err := params.parsePlain(bytes.NewReader(plain)); err != nil {
		return err
	}
	if err := params.validate(pk.PublicKey.Params); err != nil {
		return err
	}
	pk.Params = params
	pk.Encrypted = false
	pk.encryptedData = nil
	return nil
}

// s2kUsage254Equivalent normalizes the legacy "s2kUsage holds a cipher id"
// form onto the simple-checksum branch of splitChecksum/verifyChecksum: only
// usage octet 254 uses the SHA-1 form.
func (pk *PrivateKey) s2kUsage254Equivalent() uint8 {
	if pk.s2kUsage == 254 {
		return 254
	}
	return 255
}

// Serialize writes the packet (header + body) to w. pk must not be
// encrypted; callers that loaded an encrypted key and never intend to
// re-wrap it should not call Serialize.
func (pk *PrivateKey) Serialize(w io.Writer) error {
	if pk.Encrypted {
		return errors.InvalidArgumentError("cannot serialize an encrypted private key without re-wrapping")
	}
	var body bytes.Buffer
	if err := pk.Params.serializePlain(&body); err != nil {
		return err
	}
	var sum uint16
	for _, b := range body.Bytes() {
		sum += uint16(b)
	}
	body.Write([]byte{byte(sum >> 8), byte(sum)})

	var buf bytes.Buffer
	if err := pk.PublicKey.serializeWithoutHeaders(&buf); err != nil {
		return err
	}
	buf.WriteByte(0) // s2k usage: plaintext
	buf.Write(body.Bytes())

	tag := packetTypeSecretKey
	if pk.IsSubkey {
		tag = packetTypeSecretSubkey
	}
	if err := serializeHeader(w, tag, buf.Len()); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// EncryptWithPassword wraps pk's secret material with an S2K-derived key
// from password, using c as the wrap algorithm. After this call
// pk.Encrypted is true and the wrapped form is held only in memory:
// Serialize returns an error for an encrypted key, and Decrypt restores
// the plaintext form.
func (pk *PrivateKey) EncryptWithPassword(password []byte, c algorithm.Cipher) error {
	if !c.Supported() {
		return &errors.UnsupportedAlgorithmError{Algorithm: c.Id()}
	}
	var plain bytes.Buffer
	if err := pk.Params.serializePlain(&plain); err != nil {
		return err
	}
	sum := sha1.Sum(plain.Bytes())
	plain.Write(sum[:])

	var salt [8]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return err
	}
	s2kParams := &s2k.Params{Mode: s2k.ModeIterated, Hash: crypto.SHA256, Salt: salt, Count: 96}
	key, err := s2kParams.Key(password, c.KeySize())
	if err != nil {
		return err
	}
	block, err := c.New(key)
	if err != nil {
		return &errors.InternalError{Err: err}
	}
	iv := make([]byte, block.BlockSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return err
	}
	stream := cipher.NewCFBEncrypter(block, iv)
	encrypted := make([]byte, plain.Len())
	stream.XORKeyStream(encrypted, plain.Bytes())

	pk.Encrypted = true
	pk.s2kUsage = 254
	pk.cipher = c
	pk.s2kParams = s2kParams
	pk.iv = iv
	pk.encryptedData = encrypted
	return nil
}
