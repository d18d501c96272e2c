package packet

import (
	"io"
	"strconv"

	"github.com/pgpkit/openpgp/errors"
	"github.com/pgpkit/openpgp/internal/algorithm"
)

// OnePassSignature represents a one-pass signature packet (RFC 4880,
// section 5.4), which precedes a literal data packet to announce the
// signature that follows it so a streaming verifier can start hashing
// before it has seen the trailing Signature packet.
type OnePassSignature struct {
	SigType    SignatureType
	Hash       algorithm.Hash
	PubKeyAlgo PublicKeyAlgorithm
	KeyId      uint64
	IsLast     bool
}

func (ops *OnePassSignature) parse(r io.Reader) error {
	var buf [13]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	if buf[0] != 3 {
		return errors.UnsupportedError("one-pass signature packet version " + strconv.Itoa(int(buf[0])))
	}
	ops.SigType = SignatureType(buf[1])
	hash, ok := algorithm.HashById[buf[2]]
	if ok {
		ops.Hash = hash
	}
	ops.PubKeyAlgo = PublicKeyAlgorithm(buf[3])
	ops.KeyId = beUint64(buf[4:12])
	ops.IsLast = buf[12] != 0
	return nil
}

// Serialize writes the packet (header + body) to w.
func (ops *OnePassSignature) Serialize(w io.Writer) error {
	if err := serializeHeader(w, packetTypeOnePassSignature, 13); err != nil {
		return err
	}
	var buf [13]byte
	buf[0] = 3
	buf[1] = byte(ops.SigType)
	buf[2] = ops.Hash.Id()
	buf[3] = byte(ops.PubKeyAlgo)
	putUint64(buf[4:12], ops.KeyId)
	if ops.IsLast {
		buf[12] = 1
	}
	_, err := w.Write(buf[:])
	return err
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

func putUint64(b []byte, v uint64) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
