package dht

import (
	"context"
	"strconv"

	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/core"
	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	vdrapi "github.com/hyperledger/aries-framework-go/pkg/framework/aries/api/vdr"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Method options understood by VDR.Read.
const (
	GatewayOpt = "gateway"
	ContextOpt = "context"
)

// VDR resolves did:dht documents through a gateway. Writes go through
// Gateway.Publish as they need the identity private key.
type VDR struct{}

func NewVDR() *VDR {
	return &VDR{}
}

func (v *VDR) Accept(method string, _ ...vdrapi.DIDMethodOption) bool {
	return method == Method
}

func (v *VDR) Read(id string, opts ...vdrapi.DIDMethodOption) (res *did.DocResolution, err error) {
	defer err2.Handle(&err, "did:dht read")

	o := &vdrapi.DIDMethodOpts{Values: make(map[string]interface{})}
	for _, opt := range opts {
		opt(o)
	}

	gateway := utils.Settings.Gateway()
	if gw, ok := o.Values[GatewayOpt].(string); ok && gw != "" {
		gateway = gw
	}
	ctx, ok := o.Values[ContextOpt].(context.Context)
	if !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), utils.Settings.Timeout())
		defer cancel()
	}

	doc, seq := try.To2(NewGateway(gateway).Resolve(ctx, id))

	return &did.DocResolution{
		Context:     []string{"https://w3id.org/did-resolution/v1"},
		DIDDocument: doc,
		DocumentMetadata: &did.DocumentMetadata{
			VersionID: strconv.FormatInt(seq, 10),
		},
	}, nil
}

func (v *VDR) Create(_ *did.Doc, _ ...vdrapi.DIDMethodOption) (*did.DocResolution, error) {
	return nil, core.NotSupported(Method, "create through vdr")
}

func (v *VDR) Update(_ *did.Doc, _ ...vdrapi.DIDMethodOption) error {
	return core.NotSupported(Method, "update through vdr")
}

func (v *VDR) Deactivate(_ string, _ ...vdrapi.DIDMethodOption) error {
	return core.NotSupported(Method, "deactivate")
}

func (v *VDR) Close() error {
	return nil
}
