// Package s2k implements the String-to-Key algorithms described in RFC
// 4880, section 3.7, used to derive a symmetric key from a passphrase when
// wrapping secret-key material (component B's "optionally wrapped" secret
// parameters).
package s2k

import (
	"crypto"
	"hash"
	"io"
	"strconv"

	"github.com/pgpkit/openpgp/errors"
)

// Mode is the S2K specifier type octet.
type Mode uint8

const (
	ModeSimple      Mode = 0
	ModeSalted      Mode = 1
	ModeIterated    Mode = 3
	ModeGNUDummy    Mode = 101
)

// Params describes a parsed or constructed S2K specifier.
type Params struct {
	Mode       Mode
	Hash       crypto.Hash
	Salt       [8]byte
	Count      uint8 // RFC 4880 encoded iteration count octet
	GNUDivert  bool
}

// Parse reads an S2K specifier from r.
func Parse(r io.Reader) (*Params, error) {
	var modeByte [1]byte
	if _, err := io.ReadFull(r, modeByte[:]); err != nil {
		return nil, err
	}
	p := &Params{Mode: Mode(modeByte[0])}

	var hashByte [1]byte
	if _, err := io.ReadFull(r, hashByte[:]); err != nil {
		return nil, err
	}
	p.Hash = hashIdToCryptoHash(hashByte[0])

	switch p.Mode {
	case ModeSimple:
	case ModeSalted:
		if _, err := io.ReadFull(r, p.Salt[:]); err != nil {
			return nil, err
		}
	case ModeIterated:
		if _, err := io.ReadFull(r, p.Salt[:]); err != nil {
			return nil, err
		}
		var countByte [1]byte
		if _, err := io.ReadFull(r, countByte[:]); err != nil {
			return nil, err
		}
		p.Count = countByte[0]
	case ModeGNUDummy:
		// GNU extension: dummy S2K, the 3-byte "GNU" marker plus a
		// 1-byte extension type follows; secret material is absent.
		var marker [4]byte
		if _, err := io.ReadFull(r, marker[:]); err != nil {
			return nil, err
		}
		p.GNUDivert = true
	default:
		return nil, errors.UnsupportedError("s2k: mode " + strconv.Itoa(int(p.Mode)))
	}
	return p, nil
}

// Serialize writes the S2K specifier to w.
func (p *Params) Serialize(w io.Writer) error {
	hashId, ok := cryptoHashToHashId(p.Hash)
	if !ok {
		return errors.UnsupportedError("s2k: hash function")
	}
	if _, err := w.Write([]byte{byte(p.Mode), hashId}); err != nil {
		return err
	}
	switch p.Mode {
	case ModeSimple:
	case ModeSalted:
		_, err := w.Write(p.Salt[:])
		return err
	case ModeIterated:
		if _, err := w.Write(p.Salt[:]); err != nil {
			return err
		}
		_, err := w.Write([]byte{p.Count})
		return err
	}
	return nil
}

// DecodedCount expands the one-octet encoded iteration count into the
// actual byte count to be hashed, per RFC 4880 section 3.7.1.3.
func (p *Params) DecodedCount() int {
	return (16 + int(p.Count&15)) << (uint(p.Count>>4) + 6)
}

// Key derives a symmetric key of length keySize from password using this
// S2K specifier. When keySize exceeds one hash output, successive hash
// instances are preloaded with an increasing run of zero bytes per RFC
// 4880 section 3.7.1, each producing one more block of key material.
func (p *Params) Key(password []byte, keySize int) ([]byte, error) {
	if !p.Hash.Available() {
		return nil, errors.UnsupportedError("s2k: hash function not available")
	}
	material := keyMaterial(p, password)
	minBytes := p.iterationBytes()

	key := make([]byte, 0, keySize)
	var zeros []byte
	for len(key) < keySize {
		h := p.Hash.New()
		h.Write(zeros)
		repeatHash(h, material, minBytes)
		key = h.Sum(key)
		zeros = append(zeros, 0)
	}
	return key[:keySize], nil
}

func keyMaterial(p *Params, password []byte) []byte {
	switch p.Mode {
	case ModeSimple:
		return password
	case ModeSalted:
		return append(append([]byte{}, p.Salt[:]...), password...)
	case ModeIterated:
		return append(append([]byte{}, p.Salt[:]...), password...)
	default:
		return password
	}
}

func (p *Params) iterationBytes() int {
	if p.Mode != ModeIterated {
		return 0
	}
	return p.DecodedCount()
}

// repeatHash writes data to h repeatedly until at least minBytes total bytes
// have been written (minBytes == 0 means write data exactly once).
func repeatHash(h hash.Hash, data []byte, minBytes int) {
	if minBytes == 0 || len(data) == 0 {
		h.Write(data)
		return
	}
	written := 0
	for written < minBytes {
		n := len(data)
		if written+n > minBytes {
			n = minBytes - written
		}
		h.Write(data[:n])
		written += n
	}
}

func hashIdToCryptoHash(id byte) crypto.Hash {
	switch id {
	case 1:
		return crypto.MD5
	case 2:
		return crypto.SHA1
	case 3:
		return crypto.RIPEMD160
	case 8:
		return crypto.SHA256
	case 9:
		return crypto.SHA384
	case 10:
		return crypto.SHA512
	case 11:
		return crypto.SHA224
	}
	return 0
}

func cryptoHashToHashId(h crypto.Hash) (byte, bool) {
	switch h {
	case crypto.MD5:
		return 1, true
	case crypto.SHA1:
		return 2, true
	case crypto.RIPEMD160:
		return 3, true
	case crypto.SHA256:
		return 8, true
	case crypto.SHA384:
		return 9, true
	case crypto.SHA512:
		return 10, true
	case crypto.SHA224:
		return 11, true
	}
	return 0, false
}
