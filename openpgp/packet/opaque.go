package packet

import "io"

// OpaquePacket is a packet whose content this module does not interpret:
// compressed data, symmetrically encrypted data (with or without
// integrity protection), public-key-encrypted session keys, and any
// packet tag this module does not otherwise recognize. Decryption and
// decompression of packet content are out of scope; callers that need
// them should hand the contents to an appropriate collaborator and
// re-frame the result with serializeHeader.
type OpaquePacket struct {
	Tag      uint8
	Contents []byte
}

func (op *OpaquePacket) parse(r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	op.Contents = body
	return nil
}

// Serialize writes the packet (header + untouched body) to w.
func (op *OpaquePacket) Serialize(w io.Writer) error {
	if err := serializeHeader(w, packetType(op.Tag), len(op.Contents)); err != nil {
		return err
	}
	_, err := w.Write(op.Contents)
	return err
}
