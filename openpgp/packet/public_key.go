// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/openpgp/elgamal"

	"github.com/pgpkit/openpgp/errors"
)

// PublicKey represents an OpenPGP public key packet (RFC 4880, section
// 5.5.2) or public subkey packet. The algorithm-specific material lives
// behind the Params field (see PublicKeyParams in params.go); PublicKey
// itself only carries the version/time/algorithm/fingerprint envelope
// common to every algorithm.
type PublicKey struct {
	Version      int
	CreationTime time.Time
	PubKeyAlgo   PublicKeyAlgorithm
	Params       PublicKeyParams
	Fingerprint  []byte
	KeyId        uint64
	IsSubkey     bool
}

// NewRSAPublicKey returns a v4 PublicKey wrapping pub.
func NewRSAPublicKey(creationTime time.Time, pub *rsa.PublicKey) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoRSA,
		Params:       newRSAPublicParams(pub),
	}
	pk.setFingerprintAndKeyId()
	return pk
}

// NewDSAPublicKey returns a v4 PublicKey wrapping pub.
func NewDSAPublicKey(creationTime time.Time, pub *dsa.PublicKey) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoDSA,
		Params:       newDSAPublicParams(pub),
	}
	pk.setFingerprintAndKeyId()
	return pk
}

// NewElGamalPublicKey returns a v4 PublicKey wrapping pub.
func NewElGamalPublicKey(creationTime time.Time, pub *elgamal.PublicKey) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoElGamal,
		Params:       newElgamalPublicParams(pub),
	}
	pk.setFingerprintAndKeyId()
	return pk
}

// NewECDSAPublicKey returns a v4 PublicKey wrapping pub.
func NewECDSAPublicKey(creationTime time.Time, pub *ecdsa.PublicKey) (*PublicKey, error) {
	params, err := newECDSAPublicParams(pub)
	if err != nil {
		return nil, err
	}
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoECDSA,
		Params:       params,
	}
	pk.setFingerprintAndKeyId()
	return pk, nil
}

// NewEdDSAPublicKey returns a v4 PublicKey wrapping pub.
func NewEdDSAPublicKey(creationTime time.Time, pub ed25519.PublicKey) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoEdDSA,
		Params:       newEdDSAPublicParams(pub),
	}
	pk.setFingerprintAndKeyId()
	return pk
}

// UpgradeToV5 updates the version of the key to v5 (RFC 4880bis) and
// recomputes its fingerprint/key id under the v5 rules.
func (pk *PublicKey) UpgradeToV5() {
	pk.Version = 5
	pk.setFingerprintAndKeyId()
}

func (pk *PublicKey) parse(r io.Reader) error {
	var buf [6]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	if buf[0] != 3 && buf[0] != 4 && buf[0] != 5 {
		return errors.UnsupportedError("public key version " + strconv.Itoa(int(buf[0])))
	}
	pk.Version = int(buf[0])
	pk.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(buf[1:5])), 0)

	if pk.Version == 3 {
		// v3 keys carry a 2-octet validity period (deprecated, days) right
		// after the creation time, before the algorithm octet. buf[5]
		// already holds the first validity octet.
		var rest [2]byte // second validity octet, then the algorithm octet
		if _, err := readFull(r, rest[:]); err != nil {
			return err
		}
		pk.PubKeyAlgo = PublicKeyAlgorithm(rest[1])
	} else {
		pk.PubKeyAlgo = PublicKeyAlgorithm(buf[5])
	}

	if pk.Version == 5 {
		var n [4]byte
		if _, err := readFull(r, n[:]); err != nil {
			return err
		}
	}

	params, err := newPublicKeyParams(pk.PubKeyAlgo)
	if err != nil {
		return err
	}
	if err := params.parse(r); err != nil {
		return err
	}
	pk.Params = params
	pk.setFingerprintAndKeyId()
	return nil
}

// newPublicKeyParams allocates the zero-value PublicKeyParams
// implementation for algo, ready to have parse called on it.
func newPublicKeyParams(algo PublicKeyAlgorithm) (PublicKeyParams, error) {
	switch algo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly:
		return &rsaPublicParams{}, nil
	case PubKeyAlgoDSA:
		return &dsaPublicParams{}, nil
	case PubKeyAlgoElGamal, PubKeyAlgoElgamalSign:
		return &elgamalPublicParams{}, nil
	case PubKeyAlgoECDSA:
		return &ecdsaPublicParams{}, nil
	case PubKeyAlgoECDH:
		return &ecdhPublicParams{}, nil
	case PubKeyAlgoEdDSA:
		return &eddsaPublicParams{}, nil
	default:
		if algo.IsExperimental() {
			return nil, errors.UnsupportedError("private/experimental public key algorithm " + strconv.Itoa(int(algo)))
		}
		return nil, &errors.UnsupportedAlgorithmError{Algorithm: algo}
	}
}

func (pk *PublicKey) setFingerprintAndKeyId() {
	buffer := new(bytes.Buffer)
	pk.SerializeForHash(buffer)
	if pk.Version == 5 {
		h := sha256.Sum256(buffer.Bytes())
		pk.Fingerprint = append([]byte(nil), h[:]...)
		pk.KeyId = binary.BigEndian.Uint64(pk.Fingerprint[:8])
	} else {
		h := sha1.Sum(buffer.Bytes())
		pk.Fingerprint = append([]byte(nil), h[:]...)
		pk.KeyId = binary.BigEndian.Uint64(pk.Fingerprint[12:20])
	}
}

// SerializeForHash serializes pk to w in the special form used as the
// prologue of a key-related signature's to-be-hashed sequence (RFC 4880,
// section 5.2.4): the 0x99/0x9A prefix followed by the packet body, never
// the packet header.
func (pk *PublicKey) SerializeForHash(w io.Writer) error {
	pk.SerializeSignaturePrefix(w)
	return pk.serializeWithoutHeaders(w)
}

// SerializeSignaturePrefix writes the prefix used when hashing this public
// key for a signature: 0x99 + 2-octet length for v3/v4, 0x9A + 4-octet
// length for v5.
func (pk *PublicKey) SerializeSignaturePrefix(w io.Writer) {
	length := pk.algorithmSpecificByteCount()
	if pk.Version == 5 {
		length += 10 // version, timestamp(4), algorithm, key octet count(4)
		w.Write([]byte{0x9A, byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length)})
		return
	}
	length += 6 // version, timestamp(4), algorithm
	w.Write([]byte{0x99, byte(length >> 8), byte(length)})
}

// Serialize writes the full packet (header + body) to w.
func (pk *PublicKey) Serialize(w io.Writer) error {
	length := 6 + pk.algorithmSpecificByteCount()
	if pk.Version == 5 {
		length += 4
	}
	tag := packetTypePublicKey
	if pk.IsSubkey {
		tag = packetTypePublicSubkey
	}
	if err := serializeHeader(w, tag, length); err != nil {
		return err
	}
	return pk.serializeWithoutHeaders(w)
}

func (pk *PublicKey) algorithmSpecificByteCount() int {
	return int(pk.Params.encodedLength())
}

func (pk *PublicKey) serializeWithoutHeaders(w io.Writer) error {
	t := uint32(pk.CreationTime.Unix())
	if _, err := w.Write([]byte{
		byte(pk.Version),
		byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t),
		byte(pk.PubKeyAlgo),
	}); err != nil {
		return err
	}
	if pk.Version == 5 {
		n := pk.algorithmSpecificByteCount()
		if _, err := w.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}); err != nil {
			return err
		}
	}
	return pk.Params.serialize(w)
}

// CanSign reports whether this public key's algorithm can generate
// signatures.
func (pk *PublicKey) CanSign() bool {
	return pk.PubKeyAlgo.CanSign()
}

// KeyIdString returns the public key's key id in capital hex (e.g.
// "6C7EE1B8621CC013").
func (pk *PublicKey) KeyIdString() string {
	return fmt.Sprintf("%016X", pk.KeyId)
}

// KeyIdShortString returns the short form of the key id, as shown by
// `gpg --list-keys` (e.g. "621CC013").
func (pk *PublicKey) KeyIdShortString() string {
	return fmt.Sprintf("%08X", pk.KeyId&0xFFFFFFFF)
}

// BitLength returns the bit length of the public key's primary parameter.
func (pk *PublicKey) BitLength() uint16 {
	return pk.Params.bitLength()
}

// KeyExpired reports whether sig (a self-signature on this key) indicates
// the key has expired, or is created in the future, as of currentTime.
func (pk *PublicKey) KeyExpired(sig *Signature, currentTime time.Time) bool {
	if pk.CreationTime.After(currentTime) {
		return true
	}
	if sig.KeyLifetimeSecs == nil || *sig.KeyLifetimeSecs == 0 {
		return false
	}
	expiry := pk.CreationTime.Add(time.Duration(*sig.KeyLifetimeSecs) * time.Second)
	return currentTime.After(expiry)
}

func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}
