package dht

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
)

const (
	// MaxValueSize is the BEP44 limit of the stored value.
	MaxValueSize = 1000

	seqSize    = 8
	headerSize = ed25519.SignatureSize + seqSize
)

var ErrInvalidSignature = errors.New("invalid signature")

// Envelope is a signed BEP44 mutable item as the gateway relays it.
type Envelope struct {
	Sig []byte
	Seq int64
	V   []byte
}

// signable returns the bencoded seq and v the signature covers.
func signable(seq int64, v []byte) []byte {
	var b bytes.Buffer
	b.WriteString("3:seqi")
	b.WriteString(strconv.FormatInt(seq, 10))
	b.WriteString("e1:v")
	b.WriteString(strconv.Itoa(len(v)))
	b.WriteByte(':')
	b.Write(v)
	return b.Bytes()
}

// Sign makes a new signed envelope of v.
func Sign(priv ed25519.PrivateKey, seq int64, v []byte) (*Envelope, error) {
	if len(v) > MaxValueSize {
		return nil, fmt.Errorf("bep44 value size %d exceeds %d", len(v), MaxValueSize)
	}
	return &Envelope{
		Sig: ed25519.Sign(priv, signable(seq, v)),
		Seq: seq,
		V:   v,
	}, nil
}

func (e *Envelope) Verify(pub ed25519.PublicKey) error {
	if !ed25519.Verify(pub, signable(e.Seq, e.V), e.Sig) {
		return ErrInvalidSignature
	}
	return nil
}

// Bytes returns the relay format sig || seq || v.
func (e *Envelope) Bytes() []byte {
	b := make([]byte, headerSize, headerSize+len(e.V))
	copy(b, e.Sig)
	binary.BigEndian.PutUint64(b[ed25519.SignatureSize:], uint64(e.Seq))
	return append(b, e.V...)
}

func ParseEnvelope(b []byte) (*Envelope, error) {
	if len(b) < headerSize {
		return nil, fmt.Errorf("bep44 envelope too short: %d", len(b))
	}
	if len(b)-headerSize > MaxValueSize {
		return nil, fmt.Errorf("bep44 value size %d exceeds %d", len(b)-headerSize, MaxValueSize)
	}
	return &Envelope{
		Sig: append([]byte(nil), b[:ed25519.SignatureSize]...),
		Seq: int64(binary.BigEndian.Uint64(b[ed25519.SignatureSize:headerSize])),
		V:   append([]byte(nil), b[headerSize:]...),
	}, nil
}
