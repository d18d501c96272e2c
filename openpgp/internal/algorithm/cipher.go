package algorithm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
)

// Cipher is an OpenPGP symmetric-cipher algorithm identifier (RFC 4880,
// section 9.2) bound to its key size and stdlib block-cipher constructor.
type Cipher struct {
	id      byte
	name    string
	keySize int
	new     func(key []byte) (cipher.Block, error)
}

func (c Cipher) Id() byte        { return c.id }
func (c Cipher) String() string  { return c.name }
func (c Cipher) KeySize() int    { return c.keySize }
func (c Cipher) BlockSize() int {
	if c.id == TripleDES.id {
		return 8
	}
	return 16
}

// Supported reports whether this cipher has a constructor available.
// CAST5 is recognized structurally (so it round-trips through S2K/
// symmetric-key preference lists) but has no stdlib/x-crypto
// implementation, so it is not Supported.
func (c Cipher) Supported() bool { return c.new != nil }

func (c Cipher) New(key []byte) (cipher.Block, error) {
	return c.new(key)
}

var (
	TripleDES = Cipher{2, "3DES", 24, des.NewTripleDESCipher}
	CAST5     = Cipher{3, "CAST5", 16, nil}
	AES128    = Cipher{7, "AES128", 16, aes.NewCipher}
	AES192    = Cipher{8, "AES192", 24, aes.NewCipher}
	AES256    = Cipher{9, "AES256", 32, aes.NewCipher}
)

// CipherById maps an RFC 4880 symmetric-cipher algorithm octet to its
// Cipher descriptor. CAST5 has no stdlib/x-crypto implementation available
// to this module and is recognized structurally only; callers must check
// Supported before calling New, since the packet layer (not this package)
// is responsible for turning an unsupported cipher into
// UnsupportedAlgorithmError.
var CipherById = map[byte]Cipher{
	TripleDES.id: TripleDES,
	CAST5.id:     CAST5,
	AES128.id:    AES128,
	AES192.id:    AES192,
	AES256.id:    AES256,
}
