package cmd

import (
	"log"

	"github.com/bnonni/tool5/agent/useragent"
	"github.com/bnonni/tool5/agent/utils"
	agentcmd "github.com/bnonni/tool5/cmds/agent"
	"github.com/lainio/err2"
	"github.com/spf13/cobra"
)

var agentEnvs = map[string]string{
	"action":          "ACTION",
	"path":            "PATH",
	"password":        "PASSWORD",
	"recovery-phrase": "RECOVERY_PHRASE",
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Command for provisioning the user agent",
	Long: `
Command for provisioning the user agent.

The agent key is derived from the recovery phrase which is printed once and
not stored. Give an existing phrase to recover the same agent DID.

Example
	tool5 agent --action create --password secret
	tool5 agent --action create --path /data/agent --recovery-phrase "word1 ... word24"
	`,
	PreRunE: func(*cobra.Command, []string) (err error) {
		return BindEnvs(agentEnvs, "AGENT")
	},
	RunE: func(*cobra.Command, []string) (err error) {
		defer err2.Handle(&err, nil)

		c := agentFlags.WithDefaults(utils.Settings.Home())
		c.Facade = useragent.Provisioner{}
		return execCmd(c)
	},
}

var agentFlags = agentcmd.Cmd{}

func init() {
	defer err2.Catch(func(err error) error {
		log.Println(err)
		return nil
	})

	flags := agentCmd.Flags()
	flags.StringVar(&agentFlags.Action, "action", "", flagInfo("action: create", agentCmd.Name(), agentEnvs["action"]))
	flags.StringVar(&agentFlags.Path, "path", "", flagInfo("agent data path, default <home>/agent", agentCmd.Name(), agentEnvs["path"]))
	flags.StringVar(&agentFlags.Password, "password", "", flagInfo("password of the agent store", agentCmd.Name(), agentEnvs["password"]))
	flags.StringVar(&agentFlags.RecoveryPhrase, "recovery-phrase", "", flagInfo("BIP-39 recovery phrase, generated if empty", agentCmd.Name(), agentEnvs["recovery-phrase"]))

	rootCmd.AddCommand(agentCmd)
}
