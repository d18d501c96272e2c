package packet

import (
	"bytes"
	"io"

	"github.com/pgpkit/openpgp/errors"
)

// Marker is the fixed "PGP" marker packet (RFC 4880, section 5.8).
// Implementations are required to ignore it; this module parses it only
// to stay well-formed when scanning a stream that contains one.
type Marker struct{}

var markerBody = []byte("PGP")

func (m *Marker) parse(r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if !bytes.Equal(body, markerBody) {
		return &errors.MalformedInputError{Msg: "invalid marker packet body"}
	}
	return nil
}

// Serialize writes the packet (header + body) to w.
func (m *Marker) Serialize(w io.Writer) error {
	if err := serializeHeader(w, packetTypeMarker, len(markerBody)); err != nil {
		return err
	}
	_, err := w.Write(markerBody)
	return err
}
