// Package dids is the DID façade of the tool: create, publish and resolve
// DIDs and keep their public and portable documents on disk.
package dids

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnonni/tool5/agent/dht"
	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/agent/vdr"
	"github.com/bnonni/tool5/core"
	"github.com/bnonni/tool5/method"
	"github.com/go-co-op/gocron"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type CreateParams struct {
	Method   string `validate:"omitempty,oneof=dht key did:dht did:key"`
	Endpoint string `validate:"omitempty,url"`
	Gateway  string `validate:"omitempty,url"`
	Out      string `validate:"required"`
}

type PublishParams struct {
	DID      string `validate:"required_without=Portable"`
	Portable string // portable DID file, overrides the lookup by DID
	Gateway  string `validate:"omitempty,url"`
	Out      string `validate:"required"`
}

type ResolveParams struct {
	DID     string `validate:"required"`
	Gateway string `validate:"omitempty,url"`
	Out     string `validate:"required"`
}

// Facade implements the did operations. Home is the tool home where the
// DID register and the default create output live.
type Facade struct {
	home string
	vdr  *vdr.VDR
}

func New(home string) *Facade {
	return &Facade{
		home: home,
		vdr:  vdr.New(),
	}
}

func (f *Facade) registerName() string {
	return filepath.Join(f.home, "dids.json")
}

func gatewayOf(gw string) string {
	if gw == "" {
		return utils.Settings.Gateway()
	}
	return gw
}

// Create creates a new DID. A did:dht gets a DWN service of the endpoint and
// is published to the gateway.
func (f *Facade) Create(ctx context.Context, p CreateParams) (b *method.Bearer, err error) {
	defer err2.Handle(&err, "did create")

	try.To(utils.Validate(p))
	m := try.To1(method.Parse(p.Method))

	switch m {
	case method.MethodKey:
		b = try.To1(method.NewKey())
	default:
		endpoint := p.Endpoint
		if endpoint == "" {
			endpoint = utils.Settings.Endpoint()
		}
		b = try.To1(method.NewDHT(endpoint))
	}

	out := filepath.Join(p.Out, b.URI())
	if m == method.MethodDHT {
		try.To1(f.publish(ctx, b, p.Gateway, out))
	}
	try.To(writeDid(out, b))
	f.register(b.URI(), out)

	glog.Infof("[create] created did %s - saved public document to %s - saved private document to %s",
		b.URI(), filepath.Join(out, DocumentFile), filepath.Join(out, PortableFile))
	return b, nil
}

func (f *Facade) publish(ctx context.Context, b *method.Bearer, gateway, out string) (r *dht.Registration, err error) {
	defer err2.Handle(&err, nil)

	if b.Method() != method.MethodDHT {
		return nil, core.NotSupported(b.Method().String(), "publish")
	}
	r = try.To1(dht.NewGateway(gatewayOf(gateway)).Publish(ctx, b.PrivateKey(), b.Doc()))
	f.vdr.Forget(b.URI(), gateway)
	try.To(writeRegistration(out, r))
	return r, nil
}

// PublishBearer publishes the bearer to the gateway and writes its files to
// <out>/<did>.
func (f *Facade) PublishBearer(ctx context.Context, b *method.Bearer, gateway, out string) (r *dht.Registration, err error) {
	defer err2.Handle(&err, "did publish")

	out = filepath.Join(out, b.URI())
	r = try.To1(f.publish(ctx, b, gateway, out))
	try.To(writeDid(out, b))
	f.register(b.URI(), out)

	glog.Infof("[publish] published did %s to %s - saved to %s", b.URI(), r.Gateway, out)
	return r, nil
}

// Publish loads the portable DID and publishes it.
func (f *Facade) Publish(ctx context.Context, p PublishParams) (uri string, err error) {
	defer err2.Handle(&err, "did publish")

	try.To(utils.Validate(p))
	b := try.To1(f.load(p))
	if p.DID != "" && b.URI() != p.DID {
		return "", fmt.Errorf("portable DID is %s, not %s", b.URI(), p.DID)
	}
	try.To1(f.PublishBearer(ctx, b, p.Gateway, p.Out))
	return b.URI(), nil
}

// Republish publishes the DID every interval until ctx is done. did:dht
// records drop from the DHT unless they are refreshed.
func (f *Facade) Republish(ctx context.Context, p PublishParams, interval time.Duration) (err error) {
	defer err2.Handle(&err, "did republish")

	try.To(utils.Validate(p))
	if interval <= 0 {
		return fmt.Errorf("invalid republish interval %v", interval)
	}
	b := try.To1(f.load(p))
	if b.Method() != method.MethodDHT {
		return core.NotSupported(b.Method().String(), "republish")
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	try.To1(s.Every(interval).Do(func() {
		pubCtx, cancel := context.WithTimeout(ctx, utils.Settings.Timeout())
		defer cancel()

		r, err := f.PublishBearer(pubCtx, b, p.Gateway, p.Out)
		if err != nil {
			glog.Errorf("[republish] %s: %v", b.URI(), err)
			return
		}
		glog.V(1).Infof("[republish] %s seq %d", b.URI(), r.Seq)
	}))

	glog.Infof("[republish] republishing %s every %v", b.URI(), interval)
	s.StartAsync()
	<-ctx.Done()
	s.Stop()

	return nil
}

// Resolve resolves the DID and writes the resolution to <out>/<did>/did.json.
func (f *Facade) Resolve(ctx context.Context, p ResolveParams) (uri string, err error) {
	defer err2.Handle(&err, "did resolve")

	try.To(utils.Validate(p))
	res := try.To1(f.vdr.Resolve(ctx, p.DID, p.Gateway))

	out := filepath.Join(p.Out, p.DID)
	try.To(writeResolution(out, res))

	glog.Infof("[resolve] resolved did %s - saved to %s", p.DID, filepath.Join(out, DocumentFile))
	return p.DID, nil
}

// ImportPortable reads a portable DID file.
func (f *Facade) ImportPortable(filename string) (*method.Bearer, error) {
	return method.ImportFile(filename)
}

// load finds the portable DID: the explicit file, the latest directory of the
// register, or the default create output.
func (f *Facade) load(p PublishParams) (b *method.Bearer, err error) {
	defer err2.Handle(&err, "load portable did")

	if p.Portable != "" {
		return method.ImportFile(p.Portable)
	}
	switch m := method.String(p.DID); m {
	case method.MethodDHT.String():
	case "":
		return nil, fmt.Errorf("invalid DID %q", p.DID)
	default:
		return nil, core.NotSupported(m, "publish")
	}

	candidates := make([]string, 0, 2)
	if reg, err := utils.LoadRegister(f.registerName()); err != nil {
		glog.Warningf("DID register: %v", err)
	} else if reg.Exist(p.DID) {
		dirs := reg.Get(p.DID)
		for i := len(dirs) - 1; i >= 0; i-- {
			candidates = append(candidates, filepath.Join(dirs[i], PortableFile))
		}
	}
	candidates = append(candidates, filepath.Join(f.home, "did", "create", p.DID, PortableFile))

	for _, filename := range candidates {
		if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
			continue
		}
		glog.V(3).Infoln("portable DID from", filename)
		return method.ImportFile(filename)
	}
	return nil, fmt.Errorf("portable DID of %s not found, use --portable", p.DID)
}

func (f *Facade) register(uri, dir string) {
	defer err2.Catch(func(err error) error {
		glog.Warningf("DID register: %v", err)
		return nil
	})

	reg := try.To1(utils.LoadRegister(f.registerName()))
	abs := try.To1(filepath.Abs(dir))
	reg.Add(uri, abs)
	try.To(reg.Save(f.registerName()))
}
