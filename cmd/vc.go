package cmd

import (
	"log"

	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/agent/vc"
	vccmd "github.com/bnonni/tool5/cmds/vc"
	"github.com/lainio/err2"
	"github.com/spf13/cobra"
)

var vcEnvs = map[string]string{
	"action":  "ACTION",
	"data":    "DATA",
	"type":    "TYPE",
	"subject": "SUBJECT",
}

var vcCmd = &cobra.Command{
	Use:   "vc",
	Short: "Command for issuing and verifying verifiable credentials",
	Long: `
Command for issuing and verifying verifiable credentials.

Credentials are issued by the agent DID as JWTs. The agent is created to the
agent path if there is none.

Example
	tool5 vc --action create --data '{"name":"alice"}' --type NameCredential
	tool5 vc --action verify --data eyJhbGciOiJFZERTQSIs...
	`,
	PreRunE: func(*cobra.Command, []string) (err error) {
		return BindEnvs(vcEnvs, "VC")
	},
	RunE: func(*cobra.Command, []string) (err error) {
		defer err2.Handle(&err, nil)

		env := newEnv()
		defer env.Close()

		c := vcFlags.WithDefaults(utils.Settings.Home())
		c.Facade = vc.New(func() (vc.Issuer, error) {
			a, err := env.Agent()
			if err != nil {
				return nil, err
			}
			return a, nil
		})
		return execCmd(c)
	},
}

var vcFlags = vccmd.Cmd{}

func init() {
	defer err2.Catch(func(err error) error {
		log.Println(err)
		return nil
	})

	flags := vcCmd.Flags()
	flags.StringVar(&vcFlags.Action, "action", "", flagInfo("action: create or verify", vcCmd.Name(), vcEnvs["action"]))
	flags.StringVar(&vcFlags.Data, "data", "", flagInfo("JSON claims to issue, or the credential to verify", vcCmd.Name(), vcEnvs["data"]))
	flags.StringVar(&vcFlags.Type, "type", "", flagInfo("credential type", vcCmd.Name(), vcEnvs["type"]))
	flags.StringVar(&vcFlags.Subject, "subject", "", flagInfo("subject DID, default the agent DID", vcCmd.Name(), vcEnvs["subject"]))

	rootCmd.AddCommand(vcCmd)
}
