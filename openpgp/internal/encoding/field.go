// Package encoding implements the length-prefixed encodings used throughout
// the OpenPGP packet format: multi-precision integers (MPI) and opaque
// octet strings carrying the MPI bit-length tag (used by ECC points).
package encoding

import "io"

// Field is a piece of data that can read and write itself to a stream,
// tracking both its decoded magnitude and its encoded byte length.
type Field interface {
	// Bytes returns the decoded big-endian magnitude, without the length
	// prefix.
	Bytes() []byte

	// BitLength returns the number of bits in the decoded magnitude.
	BitLength() uint16

	// EncodedBytes returns the full wire encoding, length prefix included.
	EncodedBytes() []byte

	// EncodedLength returns len(EncodedBytes()).
	EncodedLength() uint16

	// ReadFrom reads the field's wire encoding from r.
	ReadFrom(r io.Reader) (int64, error)
}
