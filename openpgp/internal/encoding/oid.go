package encoding

import "io"

// OID carries an elliptic-curve object identifier: a 1-octet length
// followed by the raw OID octets (RFC 6637, section 9).
type OID struct {
	bytes []byte
}

// NewOID returns an OID wrapping bytes, which must not include the leading
// length octet.
func NewOID(bytes []byte) *OID {
	return &OID{bytes: bytes}
}

func (o *OID) Bytes() []byte     { return o.bytes }
func (o *OID) BitLength() uint16 { return uint16(len(o.bytes) * 8) }

func (o *OID) EncodedLength() uint16 {
	return uint16(1 + len(o.bytes))
}

func (o *OID) EncodedBytes() []byte {
	out := make([]byte, 1+len(o.bytes))
	out[0] = byte(len(o.bytes))
	copy(out[1:], o.bytes)
	return out
}

func (o *OID) ReadFrom(r io.Reader) (int64, error) {
	var lenByte [1]byte
	n, err := io.ReadFull(r, lenByte[:])
	if err != nil {
		return int64(n), err
	}
	o.bytes = make([]byte, lenByte[0])
	n2, err := io.ReadFull(r, o.bytes)
	return int64(n) + int64(n2), err
}

// OpaqueMPI is an already-formatted octet string (such as an ECC point
// carrying its 0x04 uncompressed-point marker) that must be emitted with an
// MPI bit-length prefix without having its leading zero bits stripped. This
// is the write_mpi form described in RFC 6637: the body is opaque, only the
// prefix follows MPI rules.
type OpaqueMPI struct {
	bytes     []byte
	bitLength uint16
}

// NewOpaqueMPI wraps bytes (already in their final on-wire form) with an
// MPI bit-length prefix computed from len(bytes)*8 minus leading zero bits
// of the first octet only — the body itself is never renormalized.
func NewOpaqueMPI(bytes []byte) *OpaqueMPI {
	bitLength := uint16(len(bytes) * 8)
	if len(bytes) > 0 {
		lead := bytes[0]
		for lead&0x80 == 0 && lead != 0 {
			bitLength--
			lead <<= 1
		}
	}
	return &OpaqueMPI{bytes: bytes, bitLength: bitLength}
}

func (m *OpaqueMPI) Bytes() []byte     { return m.bytes }
func (m *OpaqueMPI) BitLength() uint16 { return m.bitLength }

func (m *OpaqueMPI) EncodedLength() uint16 {
	return uint16(2 + len(m.bytes))
}

func (m *OpaqueMPI) EncodedBytes() []byte {
	out := make([]byte, 2+len(m.bytes))
	out[0] = byte(m.bitLength >> 8)
	out[1] = byte(m.bitLength)
	copy(out[2:], m.bytes)
	return out
}

func (m *OpaqueMPI) ReadFrom(r io.Reader) (int64, error) {
	var header [2]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil {
		return int64(n), err
	}
	m.bitLength = uint16(header[0])<<8 | uint16(header[1])
	byteLength := (int(m.bitLength) + 7) / 8
	m.bytes = make([]byte, byteLength)
	n2, err := io.ReadFull(r, m.bytes)
	return int64(n) + int64(n2), err
}
