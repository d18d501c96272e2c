package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgpkit/openpgp/internal/algorithm"
)

func TestTrustRoundTrip(t *testing.T) {
	orig := &Trust{Contents: []byte{0x01, 0x02}}
	var buf bytes.Buffer
	require.NoError(t, orig.Serialize(&buf))
	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*Trust)
	require.True(t, ok)
	require.Equal(t, orig.Contents, round.Contents)
}

func TestModDetectionCodeRoundTrip(t *testing.T) {
	orig := &ModDetectionCode{}
	for i := range orig.Hash {
		orig.Hash[i] = byte(i)
	}
	var buf bytes.Buffer
	require.NoError(t, orig.Serialize(&buf))
	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*ModDetectionCode)
	require.True(t, ok)
	require.Equal(t, orig.Hash, round.Hash)
}

func TestUserAttributeRoundTrip(t *testing.T) {
	orig := &UserAttribute{Contents: []byte{0x10, 0x00, 0x01, 0xFF}}
	var buf bytes.Buffer
	require.NoError(t, orig.Serialize(&buf))
	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*UserAttribute)
	require.True(t, ok)
	require.Equal(t, orig.Contents, round.Contents)
}

func TestOnePassSignatureRoundTrip(t *testing.T) {
	orig := &OnePassSignature{
		SigType:    SigTypeBinary,
		Hash:       algorithm.SHA256,
		PubKeyAlgo: PubKeyAlgoRSA,
		KeyId:      0x1122334455667788,
		IsLast:     true,
	}
	var buf bytes.Buffer
	require.NoError(t, orig.Serialize(&buf))
	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*OnePassSignature)
	require.True(t, ok)
	require.Equal(t, orig.SigType, round.SigType)
	require.Equal(t, orig.Hash.Id(), round.Hash.Id())
	require.Equal(t, orig.PubKeyAlgo, round.PubKeyAlgo)
	require.Equal(t, orig.KeyId, round.KeyId)
	require.Equal(t, orig.IsLast, round.IsLast)
}

func TestLiteralDataRoundTrip(t *testing.T) {
	content := []byte("hello literal data")
	orig := &LiteralData{
		IsBinary: true,
		FileName: "note.txt",
		Body:     bytes.NewReader(content),
	}
	prologueLen := 1 + 1 + len(orig.FileName) + 4
	var buf bytes.Buffer
	require.NoError(t, orig.Serialize(&buf, prologueLen+len(content)))

	p, err := Read(&buf)
	require.NoError(t, err)
	round, ok := p.(*LiteralData)
	require.True(t, ok)
	require.Equal(t, orig.IsBinary, round.IsBinary)
	require.Equal(t, orig.FileName, round.FileName)

	var got bytes.Buffer
	_, err = got.ReadFrom(round.Body)
	require.NoError(t, err)
	require.Equal(t, content, got.Bytes())
}
