package dht

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/models/did/endpoint"
	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	"github.com/hyperledger/aries-framework-go/pkg/doc/jose/jwk/jwksupport"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	VerificationMethodType = "JsonWebKey2020"

	// ServiceTypeDWN is the service type of a decentralized web node.
	ServiceTypeDWN = "DecentralizedWebNode"

	crvEd25519 = "Ed25519"
)

// Key is a verification method of a did:dht document. ID is the fragment
// without the '#'.
type Key struct {
	ID        string
	PublicKey ed25519.PublicKey
}

// Service is a service entry of a did:dht document. ID is the fragment
// without the '#'. Extra holds string valued properties like enc and sig.
type Service struct {
	ID        string
	Type      string
	Endpoints []string
	Extra     map[string]string
}

// Relationships lists the key fragments per verification relationship.
type Relationships struct {
	Authentication       []string
	AssertionMethod      []string
	KeyAgreement         []string
	CapabilityInvocation []string
	CapabilityDelegation []string
}

// AllOf returns relationships where every listed key is in the sign
// relationships, the default for an identity key.
func AllOf(ids ...string) Relationships {
	return Relationships{
		Authentication:       ids,
		AssertionMethod:      ids,
		CapabilityInvocation: ids,
		CapabilityDelegation: ids,
	}
}

// NewDocument builds the DID document of id from keys, relationships and
// services.
func NewDocument(id string, keys []Key, rels Relationships, services []Service) (doc *did.Doc, err error) {
	defer err2.Handle(&err, "new did:dht document")

	vms := make(map[string]*did.VerificationMethod, len(keys))
	methods := make([]did.VerificationMethod, 0, len(keys))
	for _, k := range keys {
		if len(k.PublicKey) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("key %s: length %d", k.ID, len(k.PublicKey))
		}
		j := try.To1(jwksupport.JWKFromKey(k.PublicKey))
		vm := try.To1(did.NewVerificationMethodFromJWK(id+"#"+k.ID, VerificationMethodType, id, j))
		vms[k.ID] = vm
		methods = append(methods, *vm)
	}
	refs := func(ids []string, r did.VerificationRelationship) []did.Verification {
		var res []did.Verification
		for _, i := range ids {
			vm, ok := vms[i]
			if !ok {
				err2.Throwf("relationship references unknown key %s", i)
			}
			res = append(res, *did.NewReferencedVerification(vm, r))
		}
		return res
	}

	var svcs []did.Service
	for _, s := range services {
		if len(s.Endpoints) == 0 {
			return nil, fmt.Errorf("service %s: no endpoints", s.ID)
		}
		props := make(map[string]interface{}, len(s.Extra))
		for k, v := range s.Extra {
			props[k] = v
		}
		svcs = append(svcs, did.Service{
			ID:              id + "#" + s.ID,
			Type:            s.Type,
			ServiceEndpoint: endpoint.NewDIDCoreEndpoint(s.Endpoints),
			Properties:      props,
		})
	}

	doc = did.BuildDoc(
		did.WithVerificationMethod(methods),
		did.WithAuthentication(refs(rels.Authentication, did.Authentication)),
		did.WithAssertion(refs(rels.AssertionMethod, did.AssertionMethod)),
		did.WithKeyAgreement(refs(rels.KeyAgreement, did.KeyAgreement)),
		did.WithService(svcs),
	)
	doc.ID = id
	doc.CapabilityInvocation = refs(rels.CapabilityInvocation, did.CapabilityInvocation)
	doc.CapabilityDelegation = refs(rels.CapabilityDelegation, did.CapabilityDelegation)
	return doc, nil
}

// DWNService returns the decentralized web node service entry for the
// endpoints.
func DWNService(endpoints ...string) Service {
	return Service{
		ID:        "dwn",
		Type:      ServiceTypeDWN,
		Endpoints: endpoints,
		Extra: map[string]string{
			"enc": "#enc",
			"sig": "#sig",
		},
	}
}

// parts converts an aries document to its keys, relationships and
// services.
func parts(doc *did.Doc) (keys []Key, rels Relationships, services []Service, err error) {
	defer err2.Handle(&err, "document %s", doc.ID)

	for _, vm := range doc.VerificationMethod {
		if j := vm.JSONWebKey(); j != nil && j.Crv != crvEd25519 {
			return nil, rels, nil, fmt.Errorf("key %s: unsupported curve %q", vm.ID, j.Crv)
		}
		if len(vm.Value) != ed25519.PublicKeySize {
			return nil, rels, nil, fmt.Errorf("key %s: length %d", vm.ID, len(vm.Value))
		}
		keys = append(keys, Key{ID: fragment(vm.ID), PublicKey: ed25519.PublicKey(vm.Value)})
	}
	frags := func(vs []did.Verification) []string {
		res := make([]string, 0, len(vs))
		for _, v := range vs {
			res = append(res, fragment(v.VerificationMethod.ID))
		}
		return res
	}
	rels = Relationships{
		Authentication:       frags(doc.Authentication),
		AssertionMethod:      frags(doc.AssertionMethod),
		KeyAgreement:         frags(doc.KeyAgreement),
		CapabilityInvocation: frags(doc.CapabilityInvocation),
		CapabilityDelegation: frags(doc.CapabilityDelegation),
	}
	for _, s := range doc.Service {
		extra := make(map[string]string, len(s.Properties))
		for k, v := range s.Properties {
			if str, ok := v.(string); ok {
				extra[k] = str
			}
		}
		services = append(services, Service{
			ID:        fragment(s.ID),
			Type:      fmt.Sprint(s.Type),
			Endpoints: try.To1(endpointURIs(s.ServiceEndpoint)),
			Extra:     extra,
		})
	}
	return keys, rels, services, nil
}

// endpointURIs returns every URI of a generic endpoint, or the single URI of
// a DIDComm endpoint.
func endpointURIs(e endpoint.Endpoint) ([]string, error) {
	if data, err := e.MarshalJSON(); err == nil {
		if uris, err := stringOrList(data); err == nil {
			return uris, nil
		}
	}
	uri, err := e.URI()
	if err != nil {
		return nil, err
	}
	return []string{uri}, nil
}

type jwkModel struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
}

type vmModel struct {
	ID           string   `json:"id"`
	PublicKeyJwk jwkModel `json:"publicKeyJwk"`
}

type serviceModel struct {
	ID              string
	Type            string
	ServiceEndpoint []string
	Extra           map[string]string
}

func (s *serviceModel) UnmarshalJSON(data []byte) (err error) {
	defer err2.Handle(&err, "service")

	raw := make(map[string]json.RawMessage)
	try.To(json.Unmarshal(data, &raw))

	s.Extra = make(map[string]string)
	for k, v := range raw {
		switch k {
		case "id":
			try.To(json.Unmarshal(v, &s.ID))
		case "type":
			try.To(json.Unmarshal(v, &s.Type))
		case "serviceEndpoint":
			s.ServiceEndpoint = try.To1(stringOrList(v))
		default:
			vals, err := stringOrList(v)
			if err != nil {
				continue
			}
			s.Extra[k] = strings.Join(vals, ",")
		}
	}
	return nil
}

// refs is a relationship list which may hold references or embedded
// verification methods.
type refs []string

func (r *refs) UnmarshalJSON(data []byte) (err error) {
	defer err2.Handle(&err, "verification relationship")

	var items []json.RawMessage
	try.To(json.Unmarshal(data, &items))
	for _, item := range items {
		var ref string
		if json.Unmarshal(item, &ref) == nil {
			*r = append(*r, ref)
			continue
		}
		var vm struct {
			ID string `json:"id"`
		}
		try.To(json.Unmarshal(item, &vm))
		*r = append(*r, vm.ID)
	}
	return nil
}

type docModel struct {
	ID                   string         `json:"id"`
	VerificationMethod   []vmModel      `json:"verificationMethod"`
	Authentication       refs           `json:"authentication"`
	AssertionMethod      refs           `json:"assertionMethod"`
	KeyAgreement         refs           `json:"keyAgreement"`
	CapabilityInvocation refs           `json:"capabilityInvocation"`
	CapabilityDelegation refs           `json:"capabilityDelegation"`
	Service              []serviceModel `json:"service"`
}

// ParseDocument parses the JSON of a did:dht document. Unlike
// did.ParseDocument it accepts a list of URIs as a service endpoint.
func ParseDocument(data []byte) (doc *did.Doc, err error) {
	defer err2.Handle(&err, "parse did:dht document")

	var m docModel
	try.To(json.Unmarshal(data, &m))

	keys := make([]Key, 0, len(m.VerificationMethod))
	for _, vm := range m.VerificationMethod {
		if vm.PublicKeyJwk.Crv != crvEd25519 {
			return nil, fmt.Errorf("key %s: unsupported curve %q", vm.ID, vm.PublicKeyJwk.Crv)
		}
		keys = append(keys, Key{
			ID:        fragment(vm.ID),
			PublicKey: try.To1(decodeKey(vm.PublicKeyJwk.X)),
		})
	}
	frags := func(r refs) []string {
		res := make([]string, 0, len(r))
		for _, ref := range r {
			res = append(res, fragment(ref))
		}
		return res
	}
	rels := Relationships{
		Authentication:       frags(m.Authentication),
		AssertionMethod:      frags(m.AssertionMethod),
		KeyAgreement:         frags(m.KeyAgreement),
		CapabilityInvocation: frags(m.CapabilityInvocation),
		CapabilityDelegation: frags(m.CapabilityDelegation),
	}
	services := make([]Service, 0, len(m.Service))
	for _, s := range m.Service {
		services = append(services, Service{
			ID:        fragment(s.ID),
			Type:      s.Type,
			Endpoints: s.ServiceEndpoint,
			Extra:     s.Extra,
		})
	}
	return NewDocument(m.ID, keys, rels, services)
}

func stringOrList(v json.RawMessage) ([]string, error) {
	var one string
	if err := json.Unmarshal(v, &one); err == nil {
		return []string{one}, nil
	}
	var list []string
	if err := json.Unmarshal(v, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func fragment(id string) string {
	if i := strings.LastIndex(id, "#"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func sortedKeys(m map[string]string) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
