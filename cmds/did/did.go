// Package did implements the did command: create, publish and resolve DIDs
// with the DID façade.
package did

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bnonni/tool5/agent/dids"
	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/cmds"
	"github.com/bnonni/tool5/method"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	ActionCreate  = "create"
	ActionPublish = "publish"
	ActionResolve = "resolve"
)

var Actions = []string{ActionCreate, ActionPublish, ActionResolve}

// Facade is the DID service the command calls.
type Facade interface {
	Create(ctx context.Context, p dids.CreateParams) (*method.Bearer, error)
	Publish(ctx context.Context, p dids.PublishParams) (string, error)
	Republish(ctx context.Context, p dids.PublishParams, interval time.Duration) error
	Resolve(ctx context.Context, p dids.ResolveParams) (string, error)
}

type Cmd struct {
	Action   string
	Method   string
	Endpoint string
	Gateway  string
	Out      string
	DID      string
	Portable string

	// Republish keeps publishing with the interval until the context is
	// cancelled. Zero publishes once.
	Republish time.Duration

	Facade Facade `json:"-"`
}

type Result struct {
	DID    string `json:"did"`
	Out    string `json:"out"`
	VerKey string `json:"verKey,omitempty"` // base58 identity key of a created DID
}

func (r Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// WithDefaults returns a copy of the command where the unset endpoint,
// gateway and output directory have their default values. The output
// directory is <home>/did/<action>.
func (c Cmd) WithDefaults(home string) Cmd {
	if c.Endpoint == "" {
		c.Endpoint = utils.Settings.Endpoint()
	}
	if c.Gateway == "" {
		c.Gateway = utils.Settings.Gateway()
	}
	if c.Out == "" {
		c.Out = filepath.Join(home, "did", c.Action)
	}
	return c
}

func (c Cmd) Validate() error {
	return cmds.ValidateAction("did", c.Action, Actions...)
}

func (c Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, nil)

	try.To(c.Validate())

	if c.Action == ActionPublish && c.Republish > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return c.republish(ctx, w)
	}
	ctx, cancel := context.WithTimeout(context.Background(), utils.Settings.Timeout())
	defer cancel()

	var res Result
	switch c.Action {
	case ActionCreate:
		glog.Infof("[did] create method: %s, endpoint: %s, gateway: %s, out: %s",
			c.Method, c.Endpoint, c.Gateway, c.Out)
		b := try.To1(c.Facade.Create(ctx, dids.CreateParams{
			Method:   c.Method,
			Endpoint: c.Endpoint,
			Gateway:  c.Gateway,
			Out:      c.Out,
		}))
		res = Result{DID: b.URI(), Out: filepath.Join(c.Out, b.URI()), VerKey: b.VerKey()}
		glog.Infof("[did] created %s verkey: %s", res.DID, res.VerKey)
	case ActionPublish:
		glog.Infof("[did] publish did: %s, portable: %s, gateway: %s, out: %s",
			c.DID, c.Portable, c.Gateway, c.Out)
		uri := try.To1(c.Facade.Publish(ctx, c.publishParams()))
		res = Result{DID: uri, Out: filepath.Join(c.Out, uri)}
		glog.Infof("[did] published %s", uri)
	case ActionResolve:
		glog.Infof("[did] resolve did: %s, gateway: %s, out: %s",
			c.DID, c.Gateway, c.Out)
		uri := try.To1(c.Facade.Resolve(ctx, dids.ResolveParams{
			DID:     c.DID,
			Gateway: c.Gateway,
			Out:     c.Out,
		}))
		res = Result{DID: uri, Out: filepath.Join(c.Out, uri)}
		glog.Infof("[did] resolved %s", uri)
	}
	cmds.Fprintln(w, res.DID)
	return res, nil
}

func (c Cmd) publishParams() dids.PublishParams {
	return dids.PublishParams{
		DID:      c.DID,
		Portable: c.Portable,
		Gateway:  c.Gateway,
		Out:      c.Out,
	}
}

func (c Cmd) republish(ctx context.Context, w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, nil)

	glog.Infof("[did] republish did: %s every %s, gateway: %s",
		c.DID, c.Republish, c.Gateway)
	cmds.Fprintf(w, "republishing %s every %s\n", c.DID, c.Republish)
	try.To(c.Facade.Republish(ctx, c.publishParams(), c.Republish))
	glog.Infof("[did] republish of %s stopped", c.DID)
	return Result{DID: c.DID, Out: filepath.Join(c.Out, c.DID)}, nil
}
