package dwn

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/core"
	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/multiformats/go-multihash"
)

const (
	InterfaceRecords = "Records"

	MethodWrite  = "Write"
	MethodRead   = "Read"
	MethodDelete = "Delete"

	DefaultDataFormat = "application/json"

	// timestampFormat is the microsecond precision UTC format of DWN
	// timestamps.
	timestampFormat = "2006-01-02T15:04:05.000000Z"
)

func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// Descriptor is the signed part of a DWN message. Fields of other methods
// are omitted.
type Descriptor struct {
	Interface        string  `json:"interface"`
	Method           string  `json:"method"`
	MessageTimestamp string  `json:"messageTimestamp"`
	DataCID          string  `json:"dataCid,omitempty"`
	DataSize         int     `json:"dataSize,omitempty"`
	DateCreated      string  `json:"dateCreated,omitempty"`
	DataFormat       string  `json:"dataFormat,omitempty"`
	RecordID         string  `json:"recordId,omitempty"`
	Filter           *Filter `json:"filter,omitempty"`
}

type Filter struct {
	RecordID string `json:"recordId"`
}

type Message struct {
	RecordID      string         `json:"recordId,omitempty"`
	Descriptor    Descriptor     `json:"descriptor"`
	Authorization *Authorization `json:"authorization,omitempty"`
}

// Authorization is a general JWS over the descriptor CID.
type Authorization struct {
	Signature GeneralJWS `json:"signature"`
}

type GeneralJWS struct {
	Payload    string         `json:"payload"`
	Signatures []JWSSignature `json:"signatures"`
}

type JWSSignature struct {
	Protected string `json:"protected"`
	Signature string `json:"signature"`
}

type protectedHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

type signaturePayload struct {
	DescriptorCID string `json:"descriptorCid"`
	RecordID      string `json:"recordId,omitempty"`
}

// CID returns the CIDv1 raw sha2-256 content ID of data.
func CID(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// dagCBOR encodes maps and structs with length-first sorted keys, which is
// the key order of DAG-CBOR. Struct fields use their json tags.
var dagCBOR = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// CIDOf returns the CIDv1 dag-cbor sha2-256 content ID of v.
func CIDOf(v any) (string, error) {
	data, err := dagCBOR.Marshal(v)
	if err != nil {
		return "", err
	}
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.DagCBOR, sum).String(), nil
}

// VerifyCID checks that c is the CID of data.
func VerifyCID(c string, data []byte) (err error) {
	defer err2.Handle(&err, "verify cid")

	want := try.To1(cid.Decode(c))
	sum := try.To1(multihash.Sum(data, want.Prefix().MhType, -1))
	got := cid.NewCidV1(want.Prefix().Codec, sum)
	if !got.Equals(want) {
		return fmt.Errorf("data does not match %s", c)
	}
	return nil
}

// RecordID is derived from the initial write descriptor and the author.
func RecordID(author string, d Descriptor) (string, error) {
	descriptorCID, err := CIDOf(d)
	if err != nil {
		return "", err
	}
	return CIDOf(struct {
		DescriptorCID string `json:"descriptorCid"`
		Author        string `json:"author"`
	}{descriptorCID, author})
}

// Sign sets the authorization of the message signed by signer.
func (m *Message) Sign(signer core.Signer) (err error) {
	defer err2.Handle(&err, "sign %s%s", m.Descriptor.Interface, m.Descriptor.Method)

	descriptorCID := try.To1(CIDOf(m.Descriptor))
	payload := utils.EncodeB64(try.To1(json.Marshal(signaturePayload{
		DescriptorCID: descriptorCID,
		RecordID:      m.RecordID,
	})))
	protected := utils.EncodeB64(try.To1(json.Marshal(protectedHeader{
		Alg: signer.Alg(),
		Kid: signer.KID(),
	})))
	sig := try.To1(signer.Sign([]byte(protected + "." + payload)))

	m.Authorization = &Authorization{Signature: GeneralJWS{
		Payload: payload,
		Signatures: []JWSSignature{{
			Protected: protected,
			Signature: utils.EncodeB64(sig),
		}},
	}}
	return nil
}

// NewWrite returns an unsigned RecordsWrite of data. Empty recordID starts a
// new record, otherwise dateCreated must be the one of the initial write.
func NewWrite(author, recordID, dateCreated, format string, data []byte, now time.Time) (m *Message, err error) {
	defer err2.Handle(&err, "new records write")

	if format == "" {
		format = DefaultDataFormat
	}
	ts := Timestamp(now)
	if dateCreated == "" {
		dateCreated = ts
	}
	m = &Message{
		Descriptor: Descriptor{
			Interface:        InterfaceRecords,
			Method:           MethodWrite,
			MessageTimestamp: ts,
			DataCID:          try.To1(CID(data)),
			DataSize:         len(data),
			DateCreated:      dateCreated,
			DataFormat:       format,
		},
	}
	if recordID == "" {
		recordID = try.To1(RecordID(author, m.Descriptor))
	}
	m.RecordID = recordID
	return m, nil
}

func NewRead(recordID string, now time.Time) *Message {
	return &Message{
		Descriptor: Descriptor{
			Interface:        InterfaceRecords,
			Method:           MethodRead,
			MessageTimestamp: Timestamp(now),
			Filter:           &Filter{RecordID: recordID},
		},
	}
}

func NewDelete(recordID string, now time.Time) *Message {
	return &Message{
		Descriptor: Descriptor{
			Interface:        InterfaceRecords,
			Method:           MethodDelete,
			MessageTimestamp: Timestamp(now),
			RecordID:         recordID,
		},
	}
}
