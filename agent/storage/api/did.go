package api

import (
	"strings"

	"github.com/golang/glog"
)

type DIDMethod string

const (
	DIDMethodPrefix                = "did:"
	DIDMethodKey         DIDMethod = DIDMethodPrefix + "key"
	DIDMethodDHT         DIDMethod = DIDMethodPrefix + "dht"
	DIDMethodJWK         DIDMethod = DIDMethodPrefix + "jwk"
	DIDMethodWeb         DIDMethod = DIDMethodPrefix + "web"
	DIDMethodUnsupported DIDMethod = "unsupported"
)

type DID struct {
	ID  string // ID is the key. Use real DID value for that
	DID string
	KID string // key ID in the KMS
	Doc []byte // JSON of the DID document
}

func (d *DID) Method() DIDMethod {
	methods := []DIDMethod{
		DIDMethodKey, DIDMethodDHT, DIDMethodJWK, DIDMethodWeb,
	}
	for _, method := range methods {
		if strings.HasPrefix(d.DID, string(method)+":") {
			return method
		}
	}
	glog.Warningf("DID method not found for %s", d.DID)
	return DIDMethodUnsupported
}
