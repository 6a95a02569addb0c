package cmds

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lainio/err2/assert"
)

func TestValidateAction(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	assert.NoError(ValidateAction("did", "create", "create", "publish", "resolve"))

	err := ValidateAction("did", "destroy", "create", "publish", "resolve")
	assert.Error(err)
	assert.Equal(err.Error(),
		"invalid did action destroy: must be one of create, publish, resolve")
	assert.That(errors.Is(err, ErrInvalid))

	var ae *ActionError
	assert.That(errors.As(err, &ae))
	assert.Equal(ae.Action, "destroy")
	assert.SLen(ae.Allowed, 3)

	err = ValidateAction("vc", "", "create", "verify")
	assert.Equal(err.Error(), "invalid vc action : must be one of create, verify")
}

func TestFprintNilWriter(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	Fprintln(nil, "nothing")
	Fprintf(nil, "%s", "nothing")

	var b bytes.Buffer
	Fprintf(&b, "%s:%d", "a", 1)
	Fprintln(&b)
	assert.Equal(b.String(), "a:1\n")
}

func TestEnvAgentPath(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	env := &Env{Home: "/tmp/home"}
	assert.Equal(env.agentPath(), "/tmp/home/agent")
	env.AgentPath = "/data/agent"
	assert.Equal(env.agentPath(), "/data/agent")
	assert.NoError(env.Close())
}

func TestEnvAgent(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	env := &Env{Home: t.TempDir(), AgentPassword: "secret"}
	a, err := env.Agent()
	assert.NoError(err)
	assert.NotEmpty(a.DID())

	again, err := env.Agent()
	assert.NoError(err)
	assert.Equal(again.DID(), a.DID())
	assert.NoError(env.Close())

	// the created agent is opened from disk by the next invocation
	next := &Env{Home: env.Home, AgentPassword: "secret"}
	b, err := next.Agent()
	assert.NoError(err)
	assert.Equal(b.DID(), a.DID())
	assert.NoError(next.Close())

	wrong := &Env{Home: env.Home, AgentPassword: "wrong"}
	_, err = wrong.Agent()
	assert.Error(err)
}
