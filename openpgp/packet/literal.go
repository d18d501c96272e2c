package packet

import (
	"encoding/binary"
	"io"
	"time"
)

// LiteralData represents a literal data packet (RFC 4880, section 5.9):
// the format octet, original filename, modification time, and the
// (unread) content body. This module frames the packet but does not
// interpret Body as a message; callers that need streaming access
// should read directly from Body before the enclosing packet's limited
// reader is exhausted.
type LiteralData struct {
	IsBinary bool
	FileName string
	Time     time.Time
	Body     io.Reader
}

func (l *LiteralData) parse(r io.Reader) error {
	var buf [1]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	l.IsBinary = buf[0] == 'b'

	var nameLen [1]byte
	if _, err := readFull(r, nameLen[:]); err != nil {
		return err
	}
	name := make([]byte, nameLen[0])
	if _, err := readFull(r, name); err != nil {
		return err
	}
	l.FileName = string(name)

	var t [4]byte
	if _, err := readFull(r, t[:]); err != nil {
		return err
	}
	l.Time = time.Unix(int64(binary.BigEndian.Uint32(t[:])), 0)
	l.Body = r
	return nil
}

// Serialize writes the packet header and the fixed-field prologue to w,
// then copies from l.Body. length is the full body length including the
// prologue (callers typically know this up front since partial-length
// streaming writes aren't exercised by this module).
func (l *LiteralData) Serialize(w io.Writer, length int) error {
	if err := serializeHeader(w, packetTypeLiteralData, length); err != nil {
		return err
	}
	format := byte('t')
	if l.IsBinary {
		format = 'b'
	}
	name := []byte(l.FileName)
	if _, err := w.Write([]byte{format, byte(len(name))}); err != nil {
		return err
	}
	if _, err := w.Write(name); err != nil {
		return err
	}
	t := uint32(l.Time.Unix())
	if _, err := w.Write([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)}); err != nil {
		return err
	}
	_, err := io.Copy(w, l.Body)
	return err
}
