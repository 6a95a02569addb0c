package vdr

import (
	"context"
	"time"

	"github.com/bluele/gcache"
	"github.com/bnonni/tool5/agent/dht"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	"github.com/hyperledger/aries-framework-go/pkg/framework/aries/api/vdr"
	registry "github.com/hyperledger/aries-framework-go/pkg/vdr"
	"github.com/hyperledger/aries-framework-go/pkg/vdr/key"
	"github.com/hyperledger/aries-framework-go/pkg/vdr/web"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	cacheSize = 256
	cacheTTL  = 15 * time.Minute
)

type VDR struct {
	registry vdr.Registry

	// resolutions by DID and gateway
	cache gcache.Cache

	keyVDR vdr.VDR
	dhtVDR vdr.VDR
	webVDR vdr.VDR
}

func New() *VDR {
	v := &VDR{
		keyVDR: &key.VDR{},
		dhtVDR: dht.NewVDR(),
		webVDR: web.New(),
		cache:  gcache.New(cacheSize).LRU().Expiration(cacheTTL).Build(),
	}

	v.registry = registry.New(
		registry.WithVDR(v.dhtVDR),
		registry.WithVDR(v.keyVDR),
		registry.WithVDR(v.webVDR),
	)

	return v
}

func (v *VDR) Key() vdr.VDR {
	return v.keyVDR
}

func (v *VDR) DHT() vdr.VDR {
	return v.dhtVDR
}

func (v *VDR) Web() vdr.VDR {
	return v.webVDR
}

func (v *VDR) Registry() vdr.Registry {
	return v.registry
}

// Resolve resolves the DID with the registry. Gateway is used for did:dht,
// empty means the default of the settings. Successful resolutions are cached
// for cacheTTL.
func (v *VDR) Resolve(ctx context.Context, id, gateway string) (res *did.DocResolution, err error) {
	defer err2.Handle(&err, "resolve %s", id)

	key := cacheKey(id, gateway)
	if cached, err := v.cache.Get(key); err == nil {
		glog.V(3).Infoln("resolution cache hit:", id)
		return cached.(*did.DocResolution), nil
	}

	opts := []vdr.DIDMethodOption{vdr.WithOption(dht.ContextOpt, ctx)}
	if gateway != "" {
		opts = append(opts, vdr.WithOption(dht.GatewayOpt, gateway))
	}
	res = try.To1(v.registry.Resolve(id, opts...))
	try.To(v.cache.Set(key, res))
	return res, nil
}

// Forget drops the cached resolution of the DID, e.g. after it's published
// again.
func (v *VDR) Forget(id, gateway string) {
	v.cache.Remove(cacheKey(id, gateway))
}

func cacheKey(id, gateway string) string {
	return id + " " + gateway
}

func (v *VDR) Close() error {
	return v.registry.Close()
}
