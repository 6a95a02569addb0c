package method

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnonni/tool5/agent/dht"
	"github.com/hyperledger/aries-framework-go/pkg/doc/jose/jwk"
	"github.com/hyperledger/aries-framework-go/pkg/doc/jose/jwk/jwksupport"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Portable is the exported form of a Bearer including its private keys.
// Treat it as a secret.
type Portable struct {
	URI         string          `json:"uri"`
	Document    json.RawMessage `json:"document"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	PrivateKeys []*jwk.JWK      `json:"privateKeys"`
}

// Export returns the portable form of the bearer.
func (b *Bearer) Export() (p *Portable, err error) {
	defer err2.Handle(&err, "export %s", b.uri)

	k := try.To1(jwksupport.JWKFromKey(b.priv))
	k.KeyID = b.kid
	k.Algorithm = AlgEdDSA

	return &Portable{
		URI:      b.uri,
		Document: try.To1(b.doc.JSONBytes()),
		Metadata: map[string]any{
			"method": b.method.String(),
		},
		PrivateKeys: []*jwk.JWK{k},
	}, nil
}

// Import returns the bearer of the portable DID. The private key must
// match the DID.
func Import(p *Portable) (b *Bearer, err error) {
	defer err2.Handle(&err, "import %s", p.URI)

	if len(p.PrivateKeys) == 0 {
		return nil, fmt.Errorf("no private keys")
	}
	priv, ok := p.PrivateKeys[0].Key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", p.PrivateKeys[0].Key)
	}

	m := try.To1(Parse(String(p.URI)))
	switch m {
	case MethodKey:
		b = try.To1(KeyFromPrivate(priv))
	case MethodDHT:
		pub := priv.Public().(ed25519.PublicKey)
		if len(p.Document) == 0 {
			b = try.To1(DHTFromPrivate(priv))
			break
		}
		doc := try.To1(dht.ParseDocument(p.Document))
		if doc.ID != dht.Identifier(pub) {
			return nil, fmt.Errorf("document %s does not match the private key", doc.ID)
		}
		b = try.To1(newBearer(MethodDHT, doc.ID, doc.ID+"#"+identityKeyID, doc, priv))
	}
	if b.uri != p.URI {
		return nil, fmt.Errorf("private key is for %s", b.uri)
	}
	return b, nil
}

// ReadPortable reads a portable DID JSON file.
func ReadPortable(filename string) (p *Portable, err error) {
	defer err2.Handle(&err, "read portable did %s", filename)

	p = new(Portable)
	try.To(json.Unmarshal(try.To1(os.ReadFile(filename)), p))
	return p, nil
}

// ImportFile reads and imports a portable DID JSON file.
func ImportFile(filename string) (*Bearer, error) {
	p, err := ReadPortable(filename)
	if err != nil {
		return nil, err
	}
	return Import(p)
}

// Save writes the portable DID as JSON to filename with owner only
// permissions.
func (p *Portable) Save(filename string) (err error) {
	defer err2.Handle(&err, "save portable did %s", filename)

	try.To(os.MkdirAll(filepath.Dir(filename), 0700))
	data := try.To1(json.MarshalIndent(p, "", "  "))
	return os.WriteFile(filename, data, 0600)
}
