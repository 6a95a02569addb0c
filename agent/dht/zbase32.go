package dht

import (
	"crypto/ed25519"
	"encoding/base32"
	"fmt"
	"strings"
)

const zbase32Alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

var zbase32 = base32.NewEncoding(zbase32Alphabet).WithPadding(base32.NoPadding)

const (
	// Method is the DID method name handled by this package.
	Method = "dht"
	Prefix = "did:" + Method + ":"
)

func EncodeZBase32(b []byte) string {
	return zbase32.EncodeToString(b)
}

func DecodeZBase32(s string) ([]byte, error) {
	return zbase32.DecodeString(s)
}

// Identifier returns the did:dht DID of the Ed25519 identity key.
func Identifier(pub ed25519.PublicKey) string {
	return Prefix + EncodeZBase32(pub)
}

// Suffix returns the z-base-32 part of the DID, i.e. the DHT key.
func Suffix(did string) (string, error) {
	if !strings.HasPrefix(did, Prefix) {
		return "", fmt.Errorf("%q is not a did:%s", did, Method)
	}
	s := strings.TrimPrefix(did, Prefix)
	if i := strings.IndexAny(s, "#?/"); i >= 0 {
		s = s[:i]
	}
	return s, nil
}

// PublicKey decodes the identity key from the DID.
func PublicKey(did string) (ed25519.PublicKey, error) {
	s, err := Suffix(did)
	if err != nil {
		return nil, err
	}
	b, err := DecodeZBase32(s)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", did, err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("decode %s: identity key length %d", did, len(b))
	}
	return ed25519.PublicKey(b), nil
}
