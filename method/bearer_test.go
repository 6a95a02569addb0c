package method

import (
	"crypto/ed25519"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnonni/tool5/core"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
	"github.com/mr-tron/base58"
)

var _ core.Signer = (*Bearer)(nil)

func TestNewKey(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	b, err := NewKey()
	assert.NoError(err)
	assert.That(strings.HasPrefix(b.URI(), "did:key:z6Mk"))
	assert.Equal(b.Method(), MethodKey)
	assert.Equal(b.Doc().ID, b.URI())
	assert.That(strings.HasPrefix(b.KID(), b.URI()+"#"))
	assert.Equal(b.Alg(), "EdDSA")

	pk := try.To1(base58.Decode(b.VerKey()))
	assert.DeepEqual(pk, []byte(b.PublicKey()))

	sig, err := b.Sign([]byte("msg"))
	assert.NoError(err)
	assert.That(ed25519.Verify(b.PublicKey(), []byte("msg"), sig))
}

func TestNewDHT(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	b, err := NewDHT("https://dwn.example.com")
	assert.NoError(err)
	assert.That(strings.HasPrefix(b.String(), "did:dht:"))
	assert.Equal(b.KID(), b.URI()+"#0")
	assert.SLen(b.Doc().Service, 1)
	assert.SLen(b.Doc().VerificationMethod, 1)
	assert.SLen(b.Doc().Authentication, 1)

	raw := try.To1(b.Doc().JSONBytes())
	var m map[string]any
	try.To(json.Unmarshal(raw, &m))
	svc := m["service"].([]any)[0].(map[string]any)
	assert.Equal(svc["type"].(string), "DecentralizedWebNode")
	assert.Equal(svc["enc"].(string), "#enc")
	assert.Equal(svc["sig"].(string), "#sig")

	noSvc := try.To1(NewDHT())
	assert.SLen(noSvc.Doc().Service, 0)
}

func TestPortableRoundTrip(t *testing.T) {
	for _, m := range []Method{MethodDHT, MethodKey} {
		t.Run(m.String(), func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			var b *Bearer
			if m == MethodDHT {
				b = try.To1(NewDHT("https://dwn.example.com"))
			} else {
				b = try.To1(NewKey())
			}

			p, err := b.Export()
			assert.NoError(err)
			assert.Equal(p.URI, b.URI())
			assert.SLen(p.PrivateKeys, 1)

			filename := filepath.Join(t.TempDir(), b.URI(), "portable-did.json")
			assert.NoError(p.Save(filename))

			got, err := ImportFile(filename)
			assert.NoError(err)
			assert.Equal(got.URI(), b.URI())
			assert.Equal(got.KID(), b.KID())
			assert.Equal(got.Method(), m)
			assert.DeepEqual(got.PrivateKey(), b.PrivateKey())
			assert.SLen(got.Doc().Service, len(b.Doc().Service))
		})
	}
}

func TestImportMismatch(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	b1 := try.To1(NewDHT())
	b2 := try.To1(NewDHT())
	p1 := try.To1(b1.Export())
	p2 := try.To1(b2.Export())

	p1.PrivateKeys = p2.PrivateKeys
	_, err := Import(p1)
	assert.Error(err)

	p2.PrivateKeys = nil
	_, err = Import(p2)
	assert.Error(err)

	_, err = ImportFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(err)
}
