package dht

import (
	"crypto/ed25519"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnonni/tool5/agent/utils"
	"github.com/golang/glog"
	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"golang.org/x/net/dns/dnsmessage"
)

const (
	// TTL of the published records in seconds.
	TTL = 7200

	version = "0"

	keyTypeEd25519 = "0"

	maxTXTString = 255
)

// ToDNS encodes the document as a did:dht DNS packet.
func ToDNS(doc *did.Doc) (packet []byte, err error) {
	defer err2.Handle(&err, "dns encode")

	suffix := try.To1(Suffix(doc.ID))
	keys, rels, services := try.To3(parts(doc))

	b := dnsmessage.NewBuilder(nil, dnsmessage.Header{
		Response:      true,
		Authoritative: true,
	})
	try.To(b.StartAnswers())

	keyRef := make(map[string]string, len(keys))
	vms := make([]string, 0, len(keys))
	for i, k := range keys {
		ref := "k" + strconv.Itoa(i)
		keyRef[k.ID] = ref
		vms = append(vms, ref)
		txt := fmt.Sprintf("id=%s;t=%s;k=%s", k.ID, keyTypeEd25519, encodeKey(k.PublicKey))
		try.To(addTXT(&b, "_"+ref+"._did.", txt))
	}

	svcs := make([]string, 0, len(services))
	for i, s := range services {
		ref := "s" + strconv.Itoa(i)
		svcs = append(svcs, ref)
		fields := []string{
			"id=" + s.ID,
			"t=" + s.Type,
			"se=" + strings.Join(s.Endpoints, ","),
		}
		for _, name := range sortedKeys(s.Extra) {
			fields = append(fields, name+"="+s.Extra[name])
		}
		try.To(addTXT(&b, "_"+ref+"._did.", strings.Join(fields, ";")))
	}

	root := []string{"v=" + version, "vm=" + strings.Join(vms, ",")}
	for _, r := range []struct {
		name string
		ids  []string
	}{
		{"auth", rels.Authentication},
		{"asm", rels.AssertionMethod},
		{"agm", rels.KeyAgreement},
		{"inv", rels.CapabilityInvocation},
		{"del", rels.CapabilityDelegation},
	} {
		if len(r.ids) == 0 {
			continue
		}
		list := make([]string, 0, len(r.ids))
		for _, id := range r.ids {
			ref, ok := keyRef[id]
			if !ok {
				return nil, fmt.Errorf("%s references unknown key %s", r.name, id)
			}
			list = append(list, ref)
		}
		root = append(root, r.name+"="+strings.Join(list, ","))
	}
	if len(svcs) > 0 {
		root = append(root, "svc="+strings.Join(svcs, ","))
	}
	try.To(addTXT(&b, "_did."+suffix+".", strings.Join(root, ";")))

	return b.Finish()
}

func addTXT(b *dnsmessage.Builder, name, txt string) error {
	n, err := dnsmessage.NewName(name)
	if err != nil {
		return err
	}
	return b.TXTResource(dnsmessage.ResourceHeader{
		Name:  n,
		Type:  dnsmessage.TypeTXT,
		Class: dnsmessage.ClassINET,
		TTL:   TTL,
	}, dnsmessage.TXTResource{TXT: split(txt)})
}

func split(s string) []string {
	res := make([]string, 0, len(s)/maxTXTString+1)
	for len(s) > maxTXTString {
		res = append(res, s[:maxTXTString])
		s = s[maxTXTString:]
	}
	return append(res, s)
}

// FromDNS decodes the did:dht DNS packet of the DID id to a document.
func FromDNS(id string, packet []byte) (doc *did.Doc, err error) {
	defer err2.Handle(&err, "dns decode %s", id)

	suffix := try.To1(Suffix(id))
	records := try.To1(txtRecords(packet))

	rootTXT, ok := records["_did."+suffix+"."]
	if !ok {
		return nil, fmt.Errorf("root record missing")
	}
	root := fields(rootTXT)
	if v := root["v"]; v != version {
		return nil, fmt.Errorf("unsupported version %q", v)
	}

	var keys []Key
	idOf := make(map[string]string)
	for _, ref := range list(root["vm"]) {
		txt, ok := records["_"+ref+"._did."]
		if !ok {
			return nil, fmt.Errorf("key record %s missing", ref)
		}
		f := fields(txt)
		if f["t"] != keyTypeEd25519 {
			return nil, fmt.Errorf("key %s: unsupported type %q", ref, f["t"])
		}
		pk := try.To1(decodeKey(f["k"]))
		keys = append(keys, Key{ID: f["id"], PublicKey: pk})
		idOf[ref] = f["id"]
	}
	ids := func(name string) []string {
		res := make([]string, 0)
		for _, ref := range list(root[name]) {
			if id, ok := idOf[ref]; ok {
				res = append(res, id)
			} else {
				glog.Warningf("did:dht %s: %s references unknown key %s", suffix, name, ref)
			}
		}
		return res
	}
	rels := Relationships{
		Authentication:       ids("auth"),
		AssertionMethod:      ids("asm"),
		KeyAgreement:         ids("agm"),
		CapabilityInvocation: ids("inv"),
		CapabilityDelegation: ids("del"),
	}

	var services []Service
	for _, ref := range list(root["svc"]) {
		txt, ok := records["_"+ref+"._did."]
		if !ok {
			return nil, fmt.Errorf("service record %s missing", ref)
		}
		f := fields(txt)
		s := Service{
			ID:        f["id"],
			Type:      f["t"],
			Endpoints: list(f["se"]),
			Extra:     make(map[string]string),
		}
		for k, v := range f {
			switch k {
			case "id", "t", "se":
			default:
				s.Extra[k] = v
			}
		}
		services = append(services, s)
	}

	return NewDocument(id, keys, rels, services)
}

func txtRecords(packet []byte) (records map[string]string, err error) {
	defer err2.Handle(&err, "parse packet")

	var p dnsmessage.Parser
	try.To1(p.Start(packet))
	try.To(p.SkipAllQuestions())

	records = make(map[string]string)
	for {
		h, err := p.AnswerHeader()
		if err == dnsmessage.ErrSectionDone {
			break
		}
		try.To(err)
		if h.Type != dnsmessage.TypeTXT {
			try.To(p.SkipAnswer())
			continue
		}
		txt := try.To1(p.TXTResource())
		records[h.Name.String()] = strings.Join(txt.TXT, "")
	}
	return records, nil
}

func fields(txt string) map[string]string {
	res := make(map[string]string)
	for _, f := range strings.Split(txt, ";") {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		res[k] = v
	}
	return res
}

func list(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func encodeKey(pk []byte) string {
	return utils.EncodeB64(pk)
}

func decodeKey(s string) (ed25519.PublicKey, error) {
	pk, err := utils.DecodeB64(s)
	if err != nil {
		return nil, err
	}
	if len(pk) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("key length %d", len(pk))
	}
	return pk, nil
}
