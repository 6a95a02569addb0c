package method

import (
	"crypto/ed25519"
	"errors"

	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	"github.com/mr-tron/base58"
)

// AlgEdDSA is the JWS algorithm of bearer signatures.
const AlgEdDSA = "EdDSA"

// Bearer is a DID with its document and the private key of the identity
// verification method. It implements core.Signer.
type Bearer struct {
	uri    string
	kid    string
	method Method
	doc    *did.Doc
	priv   ed25519.PrivateKey
}

func newBearer(m Method, uri, kid string, doc *did.Doc, priv ed25519.PrivateKey) (*Bearer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid ed25519 private key")
	}
	return &Bearer{uri: uri, kid: kid, method: m, doc: doc, priv: priv}, nil
}

// String returns URI formated DID
func (b *Bearer) String() string {
	return b.uri
}

func (b *Bearer) URI() string {
	return b.uri
}

func (b *Bearer) Method() Method {
	return b.method
}

func (b *Bearer) Doc() *did.Doc {
	return b.doc
}

// KID returns the verification method ID of the signing key.
func (b *Bearer) KID() string {
	return b.kid
}

func (b *Bearer) PublicKey() ed25519.PublicKey {
	return b.priv.Public().(ed25519.PublicKey)
}

func (b *Bearer) PrivateKey() ed25519.PrivateKey {
	return b.priv
}

// VerKey returns base58 encoded public key.
func (b *Bearer) VerKey() string {
	return base58.Encode(b.PublicKey())
}

func (b *Bearer) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(b.priv, data), nil
}

func (b *Bearer) Alg() string {
	return AlgEdDSA
}
