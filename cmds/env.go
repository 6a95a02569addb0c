package cmds

import (
	"path/filepath"

	"github.com/bnonni/tool5/agent/useragent"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Env is the per invocation context of the commands. The agent is opened
// only when a command needs it, and a default agent is created when the
// path has none.
type Env struct {
	Home          string
	AgentPath     string // <Home>/agent by default
	AgentPassword string

	agent *useragent.Agent
}

func (e *Env) agentPath() string {
	if e.AgentPath == "" {
		return filepath.Join(e.Home, "agent")
	}
	return e.AgentPath
}

// Agent returns the opened agent of the env.
func (e *Env) Agent() (a *useragent.Agent, err error) {
	defer err2.Handle(&err, "env agent")

	if e.agent != nil {
		return e.agent, nil
	}
	path := e.agentPath()
	if !useragent.Exists(path) {
		glog.Infof("no agent in %s, creating the default agent", path)
		var phrase string
		e.agent, phrase = try.To2(useragent.Create(useragent.CreateParams{
			Path:     path,
			Password: e.AgentPassword,
		}))
		glog.Infof("[agent] created agent %s - recovery phrase: %s",
			e.agent.DID(), phrase)
		return e.agent, nil
	}
	e.agent = try.To1(useragent.Open(path, e.AgentPassword))
	return e.agent, nil
}

// Close closes the agent if it's opened.
func (e *Env) Close() error {
	if e.agent == nil {
		return nil
	}
	err := e.agent.Close()
	e.agent = nil
	return err
}
