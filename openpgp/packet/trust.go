package packet

import "io"

// Trust represents a trust packet (RFC 4880, section 5.10). Trust
// packets are local to a given implementation's trust database; this
// module carries the raw bytes without interpreting them.
type Trust struct {
	Contents []byte
}

func (t *Trust) parse(r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	t.Contents = body
	return nil
}

// Serialize writes the packet (header + body) to w.
func (t *Trust) Serialize(w io.Writer) error {
	if err := serializeHeader(w, packetTypeTrust, len(t.Contents)); err != nil {
		return err
	}
	_, err := w.Write(t.Contents)
	return err
}
