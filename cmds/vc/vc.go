// Package vc implements the vc command: issue and verify verifiable
// credentials with the VC façade.
package vc

import (
	"context"
	"encoding/json"
	"io"

	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/agent/vc"
	"github.com/bnonni/tool5/cmds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	ActionCreate = "create"
	ActionVerify = "verify"
)

var Actions = []string{ActionCreate, ActionVerify}

type Facade interface {
	Create(ctx context.Context, p vc.CreateParams) (string, error)
	Verify(ctx context.Context, p vc.VerifyParams) (*vc.Result, error)
}

type Cmd struct {
	Action  string
	Data    string
	Type    string
	Subject string

	Facade Facade `json:"-"`
}

type Result struct {
	JWT      string     `json:"jwt,omitempty"`
	Verified *vc.Result `json:"verified,omitempty"`
}

func (r Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// WithDefaults returns the command as is, vc options have no defaults.
func (c Cmd) WithDefaults(string) Cmd {
	return c
}

func (c Cmd) Validate() error {
	return cmds.ValidateAction("vc", c.Action, Actions...)
}

func (c Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, nil)

	try.To(c.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), utils.Settings.Timeout())
	defer cancel()

	var res Result
	switch c.Action {
	case ActionCreate:
		glog.Infof("[vc] create type: %s, subject: %s, data: %s", c.Type, c.Subject, c.Data)
		res.JWT = try.To1(c.Facade.Create(ctx, vc.CreateParams{
			Data:    c.Data,
			Type:    c.Type,
			Subject: c.Subject,
		}))
		glog.Infoln("[vc] created credential")
		cmds.Fprintln(w, res.JWT)
	case ActionVerify:
		glog.Infof("[vc] verify data: %s", c.Data)
		res.Verified = try.To1(c.Facade.Verify(ctx, vc.VerifyParams{Data: c.Data}))
		glog.Infof("[vc] verified: %v", res.Verified != nil)
		if res.Verified != nil {
			cmds.Fprintf(w, "verified %s issued by %s\n",
				res.Verified.ID, res.Verified.Issuer)
		}
	}
	return res, nil
}
