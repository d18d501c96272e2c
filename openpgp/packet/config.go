package packet

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/pgpkit/openpgp/internal/algorithm"
)

// Config collects the knobs a caller may want to override when signing
// or encrypting: the defaults chosen here match typical gpg/rpgp
// behavior. A nil *Config is valid everywhere one is accepted and
// behaves as an empty Config.
type Config struct {
	// Rand supplies randomness; defaults to crypto/rand.Reader.
	Rand io.Reader
	// Time returns the current time used for signature/key creation
	// timestamps; defaults to time.Now. Overriding it is how tests pin a
	// deterministic timestamp.
	Time func() time.Time
	// DefaultHash is the hash algorithm used for new signatures when the
	// signing key's preferences don't otherwise determine one.
	DefaultHash algorithm.Hash
	// DefaultCipher names a symmetric cipher for wrapping secret key
	// material (AES-256 when unset). No function in this package reads it:
	// EncryptWithPassword takes its cipher as an argument.
	DefaultCipher algorithm.Cipher
	// S2KCount names an iteration-count octet (RFC 4880, section 3.7.1.3)
	// for wrapping secret key material with a password (96 when unset).
	// No function in this package reads it: EncryptWithPassword always
	// uses the count octet 96.
	S2KCount uint8
}

func (c *Config) random() io.Reader {
	if c == nil || c.Rand == nil {
		return rand.Reader
	}
	return c.Rand
}

func (c *Config) now() time.Time {
	if c == nil || c.Time == nil {
		return time.Now()
	}
	return c.Time()
}

func (c *Config) hash() algorithm.Hash {
	if c == nil || !c.DefaultHash.Available() {
		return algorithm.SHA256
	}
	return c.DefaultHash
}

func (c *Config) cipher() algorithm.Cipher {
	if c == nil || c.DefaultCipher.KeySize() == 0 {
		return algorithm.AES256
	}
	return c.DefaultCipher
}

func (c *Config) s2kCount() uint8 {
	if c == nil || c.S2KCount == 0 {
		return 96
	}
	return c.S2KCount
}
