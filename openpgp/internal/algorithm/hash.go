// Package algorithm provides the identifier-driven factories for hash and
// symmetric-cipher algorithms used by packet parameter codecs (the ECDH KDF
// descriptor) and by the signature builder's preference lists. It is the
// concrete binding for the "Hash/symmetric engine contract" collaborator
// boundary described in the external interfaces.
package algorithm

import (
	"crypto"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Hash is an OpenPGP hash algorithm identifier (RFC 4880, section 9.4) bound
// to the crypto.Hash that implements it.
type Hash struct {
	id   byte
	name string
	hash crypto.Hash
}

func (h Hash) Id() byte             { return h.id }
func (h Hash) String() string       { return h.name }
func (h Hash) Available() bool      { return h.hash.Available() }
func (h Hash) New() hash.Hash       { return h.hash.New() }
func (h Hash) HashFunc() crypto.Hash { return h.hash }

var (
	SHA1    = Hash{2, "SHA1", crypto.SHA1}
	SHA256  = Hash{8, "SHA256", crypto.SHA256}
	SHA384  = Hash{9, "SHA384", crypto.SHA384}
	SHA512  = Hash{10, "SHA512", crypto.SHA512}
	SHA224  = Hash{11, "SHA224", crypto.SHA224}
	SHA3256 = Hash{12, "SHA3-256", crypto.SHA3_256}
)

// HashById maps an RFC 4880 hash algorithm octet to its Hash descriptor.
// SHA3-256 is not an RFC 4880 assignment; it is carried here under octet
// 12, which lies outside both RFC 4880's assigned hash ids and its
// private/experimental range (100-110), purely so KeyDetails certification
// has a non-stdlib hash algorithm to exercise via golang.org/x/crypto/sha3.
var HashById = map[byte]Hash{
	SHA1.id:    SHA1,
	SHA256.id:  SHA256,
	SHA384.id:  SHA384,
	SHA512.id:  SHA512,
	SHA224.id:  SHA224,
	SHA3256.id: SHA3256,
}

func init() {
	crypto.RegisterHash(crypto.SHA1, sha1.New)
	crypto.RegisterHash(crypto.SHA256, sha256.New)
	crypto.RegisterHash(crypto.SHA384, sha512.New384)
	crypto.RegisterHash(crypto.SHA512, sha512.New)
	crypto.RegisterHash(crypto.SHA224, sha256.New224)
	crypto.RegisterHash(crypto.SHA3_256, sha3.New256)
}

// HashToHashId converts a crypto.Hash to its RFC 4880 identifier octet.
func HashToHashId(h crypto.Hash) (byte, bool) {
	for id, alg := range HashById {
		if alg.hash == h {
			return id, true
		}
	}
	return 0, false
}
