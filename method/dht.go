package method

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/bnonni/tool5/agent/dht"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// identityKeyID is the fragment of the did:dht identity key.
const identityKeyID = "0"

// NewDHT creates a did:dht bearer with a new Ed25519 identity key. Non
// empty endpoints are added as a DWN service.
func NewDHT(endpoints ...string) (b *Bearer, err error) {
	defer err2.Handle(&err, "new did:dht")

	_, priv := try.To2(ed25519.GenerateKey(rand.Reader))
	return DHTFromPrivate(priv, endpoints...)
}

// DHTFromPrivate returns the did:dht bearer of the identity key.
func DHTFromPrivate(priv ed25519.PrivateKey, endpoints ...string) (b *Bearer, err error) {
	defer err2.Handle(&err, "did:dht from private key")

	pub := priv.Public().(ed25519.PublicKey)
	uri := dht.Identifier(pub)

	var services []dht.Service
	if len(endpoints) > 0 {
		services = append(services, dht.DWNService(endpoints...))
	}
	doc := try.To1(dht.NewDocument(uri,
		[]dht.Key{{ID: identityKeyID, PublicKey: pub}},
		dht.AllOf(identityKeyID),
		services))

	return newBearer(MethodDHT, uri, uri+"#"+identityKeyID, doc, priv)
}
