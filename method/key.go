package method

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/hyperledger/aries-framework-go/pkg/vdr/fingerprint"
	"github.com/hyperledger/aries-framework-go/pkg/vdr/key"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// NewKey creates a did:key bearer with a new Ed25519 key.
func NewKey() (b *Bearer, err error) {
	defer err2.Handle(&err, "new did:key")

	_, priv := try.To2(ed25519.GenerateKey(rand.Reader))
	return KeyFromPrivate(priv)
}

// KeyFromPrivate returns the did:key bearer of the Ed25519 key.
func KeyFromPrivate(priv ed25519.PrivateKey) (b *Bearer, err error) {
	defer err2.Handle(&err, "did:key from private key")

	pub := priv.Public().(ed25519.PublicKey)
	uri, kid := fingerprint.CreateDIDKey(pub)

	res := try.To1((&key.VDR{}).Read(uri))
	return newBearer(MethodKey, uri, kid, res.DIDDocument, priv)
}
