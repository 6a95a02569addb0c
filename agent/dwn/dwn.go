// Package dwn writes, reads, updates and deletes records of a decentralized
// web node on behalf of the agent DID.
package dwn

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnonni/tool5/agent/storage/api"
	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/core"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Author is the agent signing the messages. Its DID is the tenant.
type Author interface {
	core.Identity
	Storage() api.AgentStorage
}

type CreateParams struct {
	Endpoint string `validate:"required,url"`
	Data     string `validate:"required"`
	Format   string
}

type ReadParams struct {
	Endpoint string `validate:"required,url"`
	Data     string `validate:"required"` // record ID
}

type UpdateParams struct {
	Endpoint string `validate:"required,url"`
	Record   string `validate:"required"`
	Data     string `validate:"required"`
	Format   string
}

type DeleteParams struct {
	Endpoint string `validate:"required,url"`
	Data     string `validate:"required"` // record ID
}

// Facade implements the dwn operations. Inputs are validated before the
// author is opened.
type Facade struct {
	author func() (Author, error)
	now    func() time.Time
}

func New(author func() (Author, error)) *Facade {
	return &Facade{
		author: author,
		now:    time.Now,
	}
}

// Create writes a new record of the data and returns its ID.
func (f *Facade) Create(ctx context.Context, p CreateParams) (id string, err error) {
	defer err2.Handle(&err, "dwn create")

	try.To(utils.Validate(p))
	a := try.To1(f.author())

	data := []byte(p.Data)
	m := try.To1(NewWrite(a.DID(), "", "", p.Format, data, f.now()))
	try.To(m.Sign(a))
	try.To1(send(ctx, p.Endpoint, a.DID(), m, data))

	try.To(a.Storage().RecordStorage().SaveRecord(api.Record{
		ID:          m.RecordID,
		Endpoint:    p.Endpoint,
		Target:      a.DID(),
		DataCID:     m.Descriptor.DataCID,
		DataFormat:  m.Descriptor.DataFormat,
		DateCreated: m.Descriptor.DateCreated,
	}))
	glog.V(1).Infof("record %s written to %s", m.RecordID, p.Endpoint)
	return m.RecordID, nil
}

// Read returns the record's data.
func (f *Facade) Read(ctx context.Context, p ReadParams) (r *Reply, err error) {
	defer err2.Handle(&err, "dwn read")

	try.To(utils.Validate(p))
	a := try.To1(f.author())

	m := NewRead(p.Data, f.now())
	try.To(m.Sign(a))
	r = try.To1(send(ctx, p.Endpoint, a.DID(), m, nil))

	if stored, err := a.Storage().RecordStorage().GetRecord(p.Data); err == nil && len(r.Data) > 0 {
		try.To(VerifyCID(stored.DataCID, r.Data))
	}
	return r, nil
}

// Update writes new data to an existing record. The initial dateCreated comes
// from the local record store.
func (f *Facade) Update(ctx context.Context, p UpdateParams) (id string, err error) {
	defer err2.Handle(&err, "dwn update")

	try.To(utils.Validate(p))
	a := try.To1(f.author())

	stored, err := a.Storage().RecordStorage().GetRecord(p.Record)
	if err != nil {
		glog.V(3).Infof("record %s not in store, reading it: %v", p.Record, err)
		stored = try.To1(f.remoteRecord(ctx, a, p.Endpoint, p.Record))
	}
	format := p.Format
	if format == "" {
		format = stored.DataFormat
	}

	data := []byte(p.Data)
	m := try.To1(NewWrite(a.DID(), p.Record, stored.DateCreated, format, data, f.now()))
	try.To(m.Sign(a))
	try.To1(send(ctx, p.Endpoint, a.DID(), m, data))

	stored.DataCID = m.Descriptor.DataCID
	stored.DataFormat = format
	stored.Endpoint = p.Endpoint
	try.To(a.Storage().RecordStorage().SaveRecord(*stored))

	glog.V(1).Infof("record %s updated at %s", p.Record, p.Endpoint)
	return p.Record, nil
}

// Delete deletes the record.
func (f *Facade) Delete(ctx context.Context, p DeleteParams) (r *Reply, err error) {
	defer err2.Handle(&err, "dwn delete")

	try.To(utils.Validate(p))
	a := try.To1(f.author())

	m := NewDelete(p.Data, f.now())
	try.To(m.Sign(a))
	r = try.To1(send(ctx, p.Endpoint, a.DID(), m, nil))

	if stored, err := a.Storage().RecordStorage().GetRecord(p.Data); err == nil {
		stored.Deleted = true
		try.To(a.Storage().RecordStorage().SaveRecord(*stored))
	}
	return r, nil
}

// remoteRecord reads the record's initial write from the endpoint.
func (f *Facade) remoteRecord(ctx context.Context, a Author, endpoint, id string) (r *api.Record, err error) {
	defer err2.Handle(&err, "record %s", id)

	m := NewRead(id, f.now())
	try.To(m.Sign(a))
	reply := try.To1(send(ctx, endpoint, a.DID(), m, nil))
	if len(reply.Record) == 0 {
		return nil, fmt.Errorf("no record in reply")
	}

	var rec Message
	try.To(json.Unmarshal(reply.Record, &rec))
	return &api.Record{
		ID:          id,
		Endpoint:    endpoint,
		Target:      a.DID(),
		DataCID:     rec.Descriptor.DataCID,
		DataFormat:  rec.Descriptor.DataFormat,
		DateCreated: rec.Descriptor.DateCreated,
	}, nil
}
