package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	m := &Marker{}
	require.NoError(t, m.Serialize(&buf))

	p, err := Read(&buf)
	require.NoError(t, err)
	_, ok := p.(*Marker)
	require.True(t, ok)
}

func TestUserIdRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	uid := &UserId{Id: "Alice <alice@example.com>"}
	require.NoError(t, uid.Serialize(&buf))

	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*UserId)
	require.True(t, ok)
	require.Equal(t, uid.Id, round.Id)
}

func TestOpaquePacketPassthrough(t *testing.T) {
	orig := &OpaquePacket{Tag: 9, Contents: []byte{1, 2, 3, 4, 5}}
	var buf bytes.Buffer
	require.NoError(t, orig.Serialize(&buf))

	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*OpaquePacket)
	require.True(t, ok)
	require.Equal(t, orig.Tag, round.Tag)
	require.Equal(t, orig.Contents, round.Contents)
}

func TestNewFormatLengthRoundTripAcrossSizes(t *testing.T) {
	sizes := []int{0, 1, 191, 192, 193, 8383, 8384, 70000}
	for _, n := range sizes {
		var buf bytes.Buffer
		require.NoError(t, writeNewFormatLength(&buf, n))
		got, _, err := readNewFormatLength(&buf)
		require.NoError(t, err)
		require.Equal(t, int64(n), got, "size %d", n)
	}
}

func TestPartialLengthBodyStitchesChunks(t *testing.T) {
	// Build a new-format packet (tag 9, opaque to this module) whose body
	// is split across two partial-length chunks followed by a final
	// fixed-length chunk, and confirm the reader presents it as one
	// contiguous stream.
	body := bytes.Repeat([]byte{0x42}, 3)

	var raw bytes.Buffer
	raw.WriteByte(0xC0 | 9) // new-format header, tag 9 (symmetrically encrypted data)
	raw.WriteByte(224)      // partial length: 2^(224-224) = 1 octet chunk
	raw.Write(body[:1])
	raw.WriteByte(225) // partial length: 2 octets
	raw.Write(body[1:3])
	raw.WriteByte(0) // final, fixed-length chunk: zero bytes left

	p, err := Read(&raw)
	require.NoError(t, err)
	op, ok := p.(*OpaquePacket)
	require.True(t, ok)
	require.Equal(t, body, op.Contents)
}
