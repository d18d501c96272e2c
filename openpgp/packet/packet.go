// Package packet implements parsing and serialization of OpenPGP packets,
// RFC 4880. It covers the packet codec, algorithm-parameter codec,
// subpacket codec, and the signature-building/verification pipeline;
// decryption/decompression of message content is out of scope and such
// packets are retained as opaque byte bodies (see opaque.go).
package packet

import (
	"io"

	"github.com/pgpkit/openpgp/errors"
)

// packetType is the packet tag as carried in the header octet (RFC 4880,
// section 4.3).
type packetType uint8

const (
	packetTypeEncryptedKey            packetType = 1
	packetTypeSignature                packetType = 2
	packetTypeSymmetricKeyEncrypted    packetType = 3
	packetTypeOnePassSignature         packetType = 4
	packetTypeSecretKey                packetType = 5
	packetTypePublicKey                packetType = 6
	packetTypeSecretSubkey             packetType = 7
	packetTypeCompressed               packetType = 8
	packetTypeSymmetricallyEncrypted   packetType = 9
	packetTypeMarker                   packetType = 10
	packetTypeLiteralData              packetType = 11
	packetTypeTrust                    packetType = 12
	packetTypeUserId                   packetType = 13
	packetTypePublicSubkey             packetType = 14
	packetTypeUserAttribute            packetType = 17
	packetTypeSymmetricallyEncryptedMDC packetType = 18
	packetTypeModificationDetectionCode packetType = 19
)

// Packet is implemented by every parsed OpenPGP packet body.
type Packet interface {
	parse(r io.Reader) error
}

// Read parses a single packet (header + tag-dispatched body) from r. It
// returns io.EOF if r is exhausted before any header bytes are read.
func Read(r io.Reader) (p Packet, err error) {
	tag, len64, contents, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	switch tag {
	case packetTypeEncryptedKey:
		p = &OpaquePacket{Tag: uint8(tag)}
	case packetTypeSignature:
		p = new(Signature)
	case packetTypeSymmetricKeyEncrypted:
		p = &OpaquePacket{Tag: uint8(tag)}
	case packetTypeOnePassSignature:
		p = new(OnePassSignature)
	case packetTypeSecretKey:
		p = new(PrivateKey)
	case packetTypePublicKey:
		p = new(PublicKey)
	case packetTypeSecretSubkey:
		p = &PrivateKey{PublicKey: PublicKey{IsSubkey: true}}
	case packetTypeCompressed:
		p = &OpaquePacket{Tag: uint8(tag)}
	case packetTypeSymmetricallyEncrypted, packetTypeSymmetricallyEncryptedMDC:
		p = &OpaquePacket{Tag: uint8(tag)}
	case packetTypeMarker:
		p = new(Marker)
	case packetTypeLiteralData:
		p = new(LiteralData)
	case packetTypeTrust:
		p = new(Trust)
	case packetTypeUserId:
		p = new(UserId)
	case packetTypePublicSubkey:
		p = &PublicKey{IsSubkey: true}
	case packetTypeUserAttribute:
		p = new(UserAttribute)
	case packetTypeModificationDetectionCode:
		p = new(ModDetectionCode)
	default:
		p = &OpaquePacket{Tag: uint8(tag)}
	}

	body := io.LimitReader(contents, len64)
	if err := p.parse(body); err != nil {
		return nil, err
	}
	return p, nil
}

// readHeader parses a single packet header (old- or new-format) from r,
// returning the tag, the body's declared length (partial-length bodies are
// stitched transparently into one logical stream by partialLengthReader),
// and a reader positioned at the start of the body.
func readHeader(r io.Reader) (tag packetType, length int64, contents io.Reader, err error) {
	var buf [1]byte
	if _, err = io.ReadFull(r, buf[:]); err != nil {
		return
	}
	if buf[0]&0x80 == 0 {
		err = &errors.MalformedInputError{Msg: "tag byte does not have MSB set"}
		return
	}
	if buf[0]&0x40 != 0 {
		// New format.
		tag = packetType(buf[0] & 0x3f)
		bodyLength, isPartial, err2 := readNewFormatLength(r)
		if err2 != nil {
			return 0, 0, nil, err2
		}
		if isPartial {
			contents = &partialLengthReader{
				remaining: bodyLength,
				isPartial: true,
				r:         r,
			}
			return tag, 1 << 62, contents, nil
		}
		return tag, bodyLength, r, nil
	}

	// Old format.
	tag = packetType((buf[0] & 0x3f) >> 2)
	lengthBytes := buf[0] & 3
	switch lengthBytes {
	case 0:
		var l [1]byte
		if _, err = io.ReadFull(r, l[:]); err != nil {
			return
		}
		length = int64(l[0])
	case 1:
		var l [2]byte
		if _, err = io.ReadFull(r, l[:]); err != nil {
			return
		}
		length = int64(l[0])<<8 | int64(l[1])
	case 2:
		var l [4]byte
		if _, err = io.ReadFull(r, l[:]); err != nil {
			return
		}
		length = int64(l[0])<<24 | int64(l[1])<<16 | int64(l[2])<<8 | int64(l[3])
	case 3:
		// Indeterminate length: read until EOF.
		length = 1 << 62
	default:
		err = &errors.MalformedInputError{Msg: "unreachable old-format length mode"}
		return
	}
	contents = r
	return tag, length, contents, nil
}

// readNewFormatLength parses the 1/2/5-octet new-format body length
// encoding (RFC 4880, section 4.2.2), including the 224..254 partial-body-
// length marker octets. isPartial is true iff the very first length octet
// read indicates a partial body chunk.
func readNewFormatLength(r io.Reader) (length int64, isPartial bool, err error) {
	var first [1]byte
	if _, err = io.ReadFull(r, first[:]); err != nil {
		return
	}
	switch {
	case first[0] < 192:
		return int64(first[0]), false, nil
	case first[0] < 224:
		var second [1]byte
		if _, err = io.ReadFull(r, second[:]); err != nil {
			return
		}
		return (int64(first[0])-192)<<8 + int64(second[0]) + 192, false, nil
	case first[0] < 255:
		return int64(1) << (first[0] & 0x1f), true, nil
	default:
		var l [4]byte
		if _, err = io.ReadFull(r, l[:]); err != nil {
			return
		}
		return int64(l[0])<<24 | int64(l[1])<<16 | int64(l[2])<<8 | int64(l[3]), false, nil
	}
}

// partialLengthReader stitches together a sequence of partial-length body
// chunks (RFC 4880, section 4.2.2.4) into one logical stream, transparently
// reading the next chunk's length octet(s) once the current chunk is
// exhausted, until a final definite-length chunk is seen.
type partialLengthReader struct {
	r         io.Reader
	remaining int64
	isPartial bool
}

func (pr *partialLengthReader) Read(p []byte) (n int, err error) {
	for pr.remaining == 0 {
		if !pr.isPartial {
			return 0, io.EOF
		}
		pr.remaining, pr.isPartial, err = readNewFormatLength(pr.r)
		if err != nil {
			return 0, err
		}
	}
	toRead := len(p)
	if int64(toRead) > pr.remaining {
		toRead = int(pr.remaining)
	}
	n, err = pr.r.Read(p[:toRead])
	pr.remaining -= int64(n)
	if err == io.EOF && pr.remaining != 0 {
		err = io.ErrUnexpectedEOF
	}
	return
}

// partialLengthWriter buffers writes and emits RFC 4880 partial-body-length
// chunks of a fixed power-of-two size, finishing with a definite-length
// final chunk when Close is called. Only packet tags that permit
// partial-length bodies (literal data, compressed data, encrypted data) may
// use it when writing.
type partialLengthWriter struct {
	w         io.WriteCloser
	buf       []byte
	chunkSize int
}

// newPartialLengthWriter wraps w, emitting chunkSize-byte partial chunks
// (chunkSize must be a power of two, 0 < chunkSize <= 1<<30).
func newPartialLengthWriter(w io.WriteCloser, chunkSize int) *partialLengthWriter {
	return &partialLengthWriter{w: w, chunkSize: chunkSize}
}

func (w *partialLengthWriter) Write(p []byte) (int, error) {
	total := len(p)
	w.buf = append(w.buf, p...)
	for len(w.buf) >= w.chunkSize {
		if err := w.flushChunk(w.chunkSize, true); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (w *partialLengthWriter) flushChunk(n int, partial bool) error {
	if partial {
		power := trailingZeros(n)
		if _, err := w.w.Write([]byte{224 + byte(power)}); err != nil {
			return err
		}
	} else {
		if err := writeNewFormatLength(w.w, n); err != nil {
			return err
		}
	}
	if _, err := w.w.Write(w.buf[:n]); err != nil {
		return err
	}
	w.buf = w.buf[n:]
	return nil
}

// Close flushes any buffered bytes as a final, definite-length chunk.
func (w *partialLengthWriter) Close() error {
	if err := w.flushChunk(len(w.buf), false); err != nil {
		return err
	}
	return w.w.Close()
}

func trailingZeros(n int) int {
	bits := 0
	for n > 1 {
		n >>= 1
		bits++
	}
	return bits
}

// writeNewFormatLength writes a definite new-format body length using the
// shortest applicable of the 1/2/5-octet encodings.
func writeNewFormatLength(w io.Writer, n int) error {
	switch {
	case n < 192:
		_, err := w.Write([]byte{byte(n)})
		return err
	case n < 8384:
		n -= 192
		_, err := w.Write([]byte{192 + byte(n>>8), byte(n)})
		return err
	default:
		_, err := w.Write([]byte{255, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
		return err
	}
}

// serializeHeader writes a new-format packet header (tag + definite body
// length) to w.
func serializeHeader(w io.Writer, tag packetType, length int) error {
	if _, err := w.Write([]byte{0x80 | 0x40 | byte(tag)}); err != nil {
		return err
	}
	return writeNewFormatLength(w, length)
}
