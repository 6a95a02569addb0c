// Package dwn implements the dwn command: create, read, update and delete
// records of a decentralized web node with the DWN façade.
package dwn

import (
	"context"
	"encoding/json"
	"io"

	"github.com/bnonni/tool5/agent/dwn"
	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/cmds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

var Actions = []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

type Facade interface {
	Create(ctx context.Context, p dwn.CreateParams) (string, error)
	Read(ctx context.Context, p dwn.ReadParams) (*dwn.Reply, error)
	Update(ctx context.Context, p dwn.UpdateParams) (string, error)
	Delete(ctx context.Context, p dwn.DeleteParams) (*dwn.Reply, error)
}

// Cmd is the dwn command. Data is the record data of create and update, and
// the record ID of read and delete.
type Cmd struct {
	Action   string
	Endpoint string
	Data     string
	Record   string
	Format   string

	Facade Facade `json:"-"`
}

type Result struct {
	RecordID string     `json:"recordId,omitempty"`
	Reply    *dwn.Reply `json:"reply,omitempty"`
}

func (r Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// WithDefaults returns the command as is. The endpoint has no default, the
// façade reports missing input.
func (c Cmd) WithDefaults(string) Cmd {
	return c
}

func (c Cmd) Validate() error {
	return cmds.ValidateAction("dwn", c.Action, Actions...)
}

// recordID is the record of read and delete: data, or the record option.
func (c Cmd) recordID() string {
	if c.Data == "" {
		return c.Record
	}
	return c.Data
}

func (c Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, nil)

	try.To(c.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), utils.Settings.Timeout())
	defer cancel()

	glog.Infof("[dwn] %s endpoint: %s, record: %s, format: %s, data: %s",
		c.Action, c.Endpoint, c.Record, c.Format, c.Data)

	var res Result
	switch c.Action {
	case ActionCreate:
		res.RecordID = try.To1(c.Facade.Create(ctx, dwn.CreateParams{
			Endpoint: c.Endpoint,
			Data:     c.Data,
			Format:   c.Format,
		}))
		cmds.Fprintln(w, res.RecordID)
	case ActionRead:
		res.RecordID = c.recordID()
		res.Reply = try.To1(c.Facade.Read(ctx, dwn.ReadParams{
			Endpoint: c.Endpoint,
			Data:     res.RecordID,
		}))
		if res.Reply != nil {
			cmds.Fprintln(w, string(res.Reply.Data))
		}
	case ActionUpdate:
		res.RecordID = try.To1(c.Facade.Update(ctx, dwn.UpdateParams{
			Endpoint: c.Endpoint,
			Record:   c.Record,
			Data:     c.Data,
			Format:   c.Format,
		}))
		cmds.Fprintln(w, res.RecordID)
	case ActionDelete:
		res.RecordID = c.recordID()
		res.Reply = try.To1(c.Facade.Delete(ctx, dwn.DeleteParams{
			Endpoint: c.Endpoint,
			Data:     res.RecordID,
		}))
		cmds.Fprintln(w, "deleted", res.RecordID)
	}
	glog.Infof("[dwn] %s done, record: %s", c.Action, res.RecordID)
	return res, nil
}
