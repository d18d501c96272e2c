package packet

import "io"

// UserAttribute represents a user attribute packet (RFC 4880, section
// 5.12): a sequence of subpackets, most commonly a single JPEG image
// subpacket. This module preserves the subpacket stream opaquely; it
// does not decode image subpackets.
type UserAttribute struct {
	Contents []byte
}

func (ua *UserAttribute) parse(r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	ua.Contents = body
	return nil
}

// Serialize writes the packet (header + body) to w.
func (ua *UserAttribute) Serialize(w io.Writer) error {
	if err := serializeHeader(w, packetTypeUserAttribute, len(ua.Contents)); err != nil {
		return err
	}
	_, err := w.Write(ua.Contents)
	return err
}
