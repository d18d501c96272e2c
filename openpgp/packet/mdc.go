package packet

import (
	"io"
)

// ModDetectionCode is a modification detection code packet (RFC 4880,
// section 5.14): a 20-octet SHA-1 digest appended to a
// SymmetricallyEncryptedIntegrityProtected packet's plaintext. This
// module parses/serializes the packet structurally; verifying it against
// decrypted content is the decrypting collaborator's responsibility.
type ModDetectionCode struct {
	Hash [20]byte
}

func (m *ModDetectionCode) parse(r io.Reader) error {
	if _, err := readFull(r, m.Hash[:]); err != nil {
		return err
	}
	return nil
}

// Serialize writes the packet (header + body) to w.
func (m *ModDetectionCode) Serialize(w io.Writer) error {
	if err := serializeHeader(w, packetTypeModificationDetectionCode, len(m.Hash)); err != nil {
		return err
	}
	_, err := w.Write(m.Hash[:])
	return err
}
