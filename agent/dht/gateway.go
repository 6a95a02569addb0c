package dht

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnonni/tool5/agent/comm"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// ErrNotFound is returned when the gateway has no record for the DID.
var ErrNotFound = errors.New("did:dht record not found")

// Registration is the result of a publish.
type Registration struct {
	Gateway   string    `json:"gateway"`
	DID       string    `json:"did"`
	Seq       int64     `json:"seq"`
	Published time.Time `json:"published"`
}

// Gateway is a client of a DHT relay gateway.
type Gateway struct {
	URL string
}

func NewGateway(url string) *Gateway {
	return &Gateway{URL: strings.TrimSuffix(url, "/")}
}

func (g *Gateway) path(suffix string) string {
	return g.URL + "/" + suffix
}

// Put stores the envelope under the DHT key suffix.
func (g *Gateway) Put(ctx context.Context, suffix string, e *Envelope) (err error) {
	defer err2.Handle(&err, "gateway put %s", suffix)

	_, err = comm.SendAndWaitReq(ctx, comm.Request{
		Method:      http.MethodPut,
		URL:         g.path(suffix),
		ContentType: "application/octet-stream",
		Body:        bytes.NewReader(e.Bytes()),
	})
	return err
}

// Get fetches the envelope stored under suffix.
func (g *Gateway) Get(ctx context.Context, suffix string) (e *Envelope, err error) {
	defer err2.Handle(&err, "gateway get %s", suffix)

	resp, err := comm.SendAndWaitReq(ctx, comm.Request{
		Method: http.MethodGet,
		URL:    g.path(suffix),
	})
	if errors.Is(err, comm.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", suffix, ErrNotFound)
	}
	try.To(err)

	return ParseEnvelope(resp.Data)
}

// Publish signs the DNS packet of doc with the identity key and puts it to
// the gateway. The sequence number is the current unix time.
func (g *Gateway) Publish(ctx context.Context, priv ed25519.PrivateKey, doc *did.Doc) (r *Registration, err error) {
	defer err2.Handle(&err, "publish %s", doc.ID)

	pub := priv.Public().(ed25519.PublicKey)
	if Identifier(pub) != doc.ID {
		return nil, fmt.Errorf("identity key does not match %s", doc.ID)
	}
	suffix := try.To1(Suffix(doc.ID))

	packet := try.To1(ToDNS(doc))
	now := time.Now().UTC()
	e := try.To1(Sign(priv, now.Unix(), packet))
	try.To(g.Put(ctx, suffix, e))

	glog.V(1).Infof("published %s to %s seq %d (%d bytes)", doc.ID, g.URL, e.Seq, len(packet))
	return &Registration{
		Gateway:   g.URL,
		DID:       doc.ID,
		Seq:       e.Seq,
		Published: now,
	}, nil
}

// Resolve fetches, verifies and decodes the document of the DID.
func (g *Gateway) Resolve(ctx context.Context, id string) (doc *did.Doc, seq int64, err error) {
	defer err2.Handle(&err, "resolve %s", id)

	pub := try.To1(PublicKey(id))
	suffix := try.To1(Suffix(id))

	e := try.To1(g.Get(ctx, suffix))
	try.To(e.Verify(pub))

	doc = try.To1(FromDNS(Prefix+suffix, e.V))
	return doc, e.Seq, nil
}
