// Package errors defines the error kinds surfaced by the openpgp packet
// codec, composed-key assembler, and signing pipeline.
package errors

import "fmt"

// StructuralError indicates a parsed packet does not conform to the spec.
// This is used as a fallback when a more specific kind below doesn't apply.
type StructuralError string

func (s StructuralError) Error() string {
	return "openpgp: invalid data: " + string(s)
}

// UnsupportedError indicates that, although the packet being read is valid,
// it makes use of currently unimplemented features.
type UnsupportedError string

func (s UnsupportedError) Error() string {
	return "openpgp: unsupported feature: " + string(s)
}

// InvalidArgumentError indicates that a caller passed in an invalid value.
type InvalidArgumentError string

func (s InvalidArgumentError) Error() string {
	return "openpgp: invalid argument: " + string(s)
}

// SignatureError indicates that a signature was cryptographically invalid.
type SignatureError string

func (s SignatureError) Error() string {
	return "openpgp: invalid signature: " + string(s)
}

// MalformedInputError indicates truncation, a bad MPI length, a bad
// subpacket length, or a bad packet header.
type MalformedInputError struct {
	Msg string
}

func (e *MalformedInputError) Error() string {
	return "openpgp: malformed input: " + e.Msg
}

// MalformedCompositeError indicates a packet stream violated the
// transferable-key grammar (see the composed-key assembler).
type MalformedCompositeError struct {
	Msg string
}

func (e *MalformedCompositeError) Error() string {
	return "openpgp: malformed composite: " + e.Msg
}

// UnsupportedAlgorithmError indicates a recognized but unimplemented
// algorithm identifier.
type UnsupportedAlgorithmError struct {
	Algorithm interface{}
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("openpgp: unsupported algorithm: %v", e.Algorithm)
}

// UnsupportedCurveError indicates an OID that does not match any curve this
// module knows how to parse.
type UnsupportedCurveError struct {
	OID []byte
}

func (e *UnsupportedCurveError) Error() string {
	return fmt.Sprintf("openpgp: unsupported curve oid: %x", e.OID)
}

// CriticalUnknownError indicates a hashed subpacket of unknown type with its
// critical bit set, encountered during verification.
type CriticalUnknownError struct {
	SubpacketType uint8
}

func (e *CriticalUnknownError) Error() string {
	return fmt.Sprintf("openpgp: unknown critical subpacket type %d", e.SubpacketType)
}

// VerificationFailedError indicates a signature failed cryptographic
// verification while the caller requested strict mode.
type VerificationFailedError string

func (e VerificationFailedError) Error() string {
	return "openpgp: signature verification failed: " + string(e)
}

// MissingPasswordError indicates wrapped secret material needs a password
// that the caller's password supplier did not provide.
type MissingPasswordError struct{}

func (e *MissingPasswordError) Error() string {
	return "openpgp: secret material is encrypted but no password was supplied"
}

// BadPasswordError indicates the supplied password failed to unwrap secret
// material (S2K checksum/hash mismatch after decryption).
type BadPasswordError struct{}

func (e *BadPasswordError) Error() string {
	return "openpgp: password incorrect for wrapped secret material"
}

// InternalError wraps an error returned by a collaborator (hash, cipher, or
// primitive engine) that the core cannot classify into one of the kinds
// above.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("openpgp: internal error: %v", e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
