// Package agent implements the agent command which provisions the local user
// agent.
package agent

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/bnonni/tool5/agent/useragent"
	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/cmds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const ActionCreate = "create"

var Actions = []string{ActionCreate}

type Facade interface {
	Create(ctx context.Context, p useragent.CreateParams) (useragent.Meta, string, error)
}

type Cmd struct {
	Action         string
	Path           string
	Password       string `json:"-"`
	RecoveryPhrase string `json:"-"`

	Facade Facade `json:"-"`
}

type Result struct {
	DID            string `json:"did"`
	Path           string `json:"path"`
	RecoveryPhrase string `json:"recoveryPhrase"`
}

func (r Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// WithDefaults returns a copy of the command with the default agent path
// <home>/agent.
func (c Cmd) WithDefaults(home string) Cmd {
	if c.Path == "" {
		c.Path = filepath.Join(home, "agent")
	}
	return c
}

func (c Cmd) Validate() error {
	return cmds.ValidateAction("agent", c.Action, Actions...)
}

func (c Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, nil)

	try.To(c.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), utils.Settings.Timeout())
	defer cancel()

	glog.Infof("[agent] create path: %s, recovery phrase given: %v",
		c.Path, c.RecoveryPhrase != "")
	meta, phrase := try.To2(c.Facade.Create(ctx, useragent.CreateParams{
		Path:           c.Path,
		Password:       c.Password,
		RecoveryPhrase: c.RecoveryPhrase,
	}))
	glog.Infof("[agent] created agent %s to %s", meta.DID, c.Path)

	cmds.Fprintln(w, "did:", meta.DID)
	cmds.Fprintln(w, "recovery phrase:", phrase)
	return Result{DID: meta.DID, Path: c.Path, RecoveryPhrase: phrase}, nil
}
