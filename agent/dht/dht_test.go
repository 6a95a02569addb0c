package dht

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bnonni/tool5/core"
	"github.com/go-chi/chi/v5"
	vdrapi "github.com/hyperledger/aries-framework-go/pkg/framework/aries/api/vdr"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
	"github.com/stretchr/testify/require"
)

type testGateway struct {
	sync.Mutex
	records map[string][]byte
}

func newTestGateway() (*testGateway, *httptest.Server) {
	g := &testGateway{records: make(map[string][]byte)}
	r := chi.NewRouter()
	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		g.Lock()
		g.records[chi.URLParam(r, "id")] = data
		g.Unlock()
	})
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		g.Lock()
		data, ok := g.records[chi.URLParam(r, "id")]
		g.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	})
	return g, httptest.NewServer(r)
}

func newIdentity(t *testing.T) (ed25519.PrivateKey, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv, Identifier(pub)
}

func TestZBase32(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte{}, ""},
		{[]byte{0}, "yy"},
		{[]byte("hello"), "pb1sa5dx"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, EncodeZBase32(tt.in))
			got, err := DecodeZBase32(tt.want)
			require.NoError(t, err)
			require.Equal(t, len(tt.in), len(got))
		})
	}

	b := make([]byte, 32)
	_, _ = rand.Read(b)
	s := EncodeZBase32(b)
	require.Len(t, s, 52)
	got, err := DecodeZBase32(s)
	require.NoError(t, err)
	require.Equal(t, b, got)
}

func TestIdentifier(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	priv, id := newIdentity(t)
	assert.That(strings.HasPrefix(id, "did:dht:"))

	pub, err := PublicKey(id + "#0")
	assert.NoError(err)
	assert.DeepEqual(priv.Public().(ed25519.PublicKey), pub)

	_, err = PublicKey("did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK")
	assert.Error(err)
	_, err = PublicKey("did:dht:yy")
	assert.Error(err)
}

func TestDNSRoundTrip(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	priv, id := newIdentity(t)
	pub := priv.Public().(ed25519.PublicKey)
	doc, err := NewDocument(id,
		[]Key{{ID: "0", PublicKey: pub}},
		AllOf("0"),
		[]Service{DWNService("https://dwn.example.com", "https://dwn2.example.com")})
	assert.NoError(err)
	assert.Equal(doc.ID, id)
	assert.SLen(doc.VerificationMethod, 1)
	assert.SLen(doc.Service, 1)

	packet, err := ToDNS(doc)
	assert.NoError(err)
	assert.That(len(packet) <= MaxValueSize)

	got, err := FromDNS(id, packet)
	assert.NoError(err)
	assert.Equal(got.ID, id)

	keys, rels, services := try.To3(parts(got))
	assert.SLen(keys, 1)
	assert.Equal(keys[0].ID, "0")
	assert.DeepEqual(keys[0].PublicKey, pub)
	assert.DeepEqual(rels.Authentication, []string{"0"})
	assert.DeepEqual(rels.CapabilityDelegation, []string{"0"})
	assert.SLen(rels.KeyAgreement, 0)
	assert.SLen(services, 1)
	assert.Equal(services[0].ID, "dwn")
	assert.Equal(services[0].Type, ServiceTypeDWN)
	assert.DeepEqual(services[0].Endpoints, []string{"https://dwn.example.com", "https://dwn2.example.com"})
	assert.Equal(services[0].Extra["enc"], "#enc")
	assert.Equal(services[0].Extra["sig"], "#sig")
}

func TestDocumentJSON(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	priv, id := newIdentity(t)
	pub := priv.Public().(ed25519.PublicKey)
	doc := try.To1(NewDocument(id,
		[]Key{{ID: "0", PublicKey: pub}},
		AllOf("0"),
		[]Service{DWNService("https://dwn.tbddev.org/beta")}))

	data, err := doc.JSONBytes()
	assert.NoError(err)

	var raw struct {
		Service []map[string]any `json:"service"`
	}
	try.To(json.Unmarshal(data, &raw))
	assert.SLen(raw.Service, 1)
	assert.Equal(raw.Service[0]["id"].(string), id+"#dwn")
	assert.Equal(raw.Service[0]["enc"].(string), "#enc")
	eps, ok := raw.Service[0]["serviceEndpoint"].([]any)
	assert.That(ok, "endpoint list: %v", raw.Service[0]["serviceEndpoint"])
	assert.SLen(eps, 1)

	got, err := ParseDocument(data)
	assert.NoError(err)
	assert.Equal(got.ID, id)
	_, _, services := try.To3(parts(got))
	assert.SLen(services, 1)
	assert.DeepEqual(services[0].Endpoints, []string{"https://dwn.tbddev.org/beta"})

	_, err = NewDocument(id, []Key{{ID: "0", PublicKey: pub}}, AllOf("1"), nil)
	assert.Error(err)
	_, err = NewDocument(id, []Key{{ID: "0", PublicKey: pub}}, AllOf("0"), []Service{DWNService()})
	assert.Error(err)
}

func TestDNSBrokenPacket(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	_, id := newIdentity(t)
	_, err := FromDNS(id, []byte("not a dns packet"))
	assert.Error(err)

	_, other := newIdentity(t)
	priv, _ := newIdentity(t)
	doc, err := NewDocument(other, []Key{{ID: "0", PublicKey: priv.Public().(ed25519.PublicKey)}}, AllOf("0"), nil)
	assert.NoError(err)
	packet := try.To1(ToDNS(doc))
	_, err = FromDNS(id, packet)
	assert.Error(err)
}

func TestSplit(t *testing.T) {
	long := strings.Repeat("a", 600)
	parts := split(long)
	require.Len(t, parts, 3)
	require.Equal(t, long, strings.Join(parts, ""))
	require.Equal(t, []string{"short"}, split("short"))
}

func TestEnvelope(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	priv, _ := newIdentity(t)
	pub := priv.Public().(ed25519.PublicKey)

	e, err := Sign(priv, 1700000000, []byte("value"))
	assert.NoError(err)
	assert.NoError(e.Verify(pub))
	assert.That(bytes.HasPrefix(signable(1, []byte("v")), []byte("3:seqi1e1:v1:v")))

	b := e.Bytes()
	assert.SLen(b, 64+8+5)

	got, err := ParseEnvelope(b)
	assert.NoError(err)
	assert.Equal(got.Seq, int64(1700000000))
	assert.DeepEqual(got.V, []byte("value"))
	assert.NoError(got.Verify(pub))

	got.Seq++
	assert.That(errors.Is(got.Verify(pub), ErrInvalidSignature))

	_, err = Sign(priv, 1, make([]byte, MaxValueSize+1))
	assert.Error(err)
	_, err = ParseEnvelope(b[:10])
	assert.Error(err)
}

func TestPublishAndResolve(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	g, srv := newTestGateway()
	defer srv.Close()

	priv, id := newIdentity(t)
	doc := try.To1(NewDocument(id,
		[]Key{{ID: "0", PublicKey: priv.Public().(ed25519.PublicKey)}},
		AllOf("0"),
		[]Service{DWNService("https://dwn.example.com")}))

	gw := NewGateway(srv.URL + "/")
	reg, err := gw.Publish(context.Background(), priv, doc)
	assert.NoError(err)
	assert.Equal(reg.DID, id)
	assert.Equal(reg.Gateway, srv.URL)
	assert.That(reg.Seq > 0)
	assert.MLen(g.records, 1)

	got, seq, err := gw.Resolve(context.Background(), id)
	assert.NoError(err)
	assert.Equal(seq, reg.Seq)
	assert.Equal(got.ID, id)

	other, _ := newIdentity(t)
	_, err = gw.Publish(context.Background(), other, doc)
	assert.Error(err)

	_, missing := newIdentity(t)
	_, _, err = gw.Resolve(context.Background(), missing)
	assert.That(errors.Is(err, ErrNotFound))
}

func TestVDR(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	_, srv := newTestGateway()
	defer srv.Close()

	priv, id := newIdentity(t)
	doc := try.To1(NewDocument(id,
		[]Key{{ID: "0", PublicKey: priv.Public().(ed25519.PublicKey)}},
		AllOf("0"), nil))
	try.To1(NewGateway(srv.URL).Publish(context.Background(), priv, doc))

	v := NewVDR()
	assert.That(v.Accept("dht"))
	assert.ThatNot(v.Accept("key"))

	res, err := v.Read(id,
		vdrapi.WithOption(GatewayOpt, srv.URL),
		vdrapi.WithOption(ContextOpt, context.Background()))
	assert.NoError(err)
	assert.Equal(res.DIDDocument.ID, id)
	assert.NotEmpty(res.DocumentMetadata.VersionID)

	_, err = v.Create(doc)
	assert.That(errors.Is(err, core.ErrNotSupported))
	assert.That(errors.Is(v.Update(doc), core.ErrNotSupported))
	assert.That(errors.Is(v.Deactivate(id), core.ErrNotSupported))
	assert.NoError(v.Close())
}
