package cmd

import (
	"log"

	"github.com/bnonni/tool5/agent/dwn"
	"github.com/bnonni/tool5/agent/utils"
	dwncmd "github.com/bnonni/tool5/cmds/dwn"
	"github.com/lainio/err2"
	"github.com/spf13/cobra"
)

var dwnEnvs = map[string]string{
	"action":   "ACTION",
	"endpoint": "ENDPOINT",
	"data":     "DATA",
	"record":   "RECORD",
	"format":   "FORMAT",
}

var dwnCmd = &cobra.Command{
	Use:   "dwn",
	Short: "Command for handling records of a decentralized web node",
	Long: `
Command for handling records of a decentralized web node.

The messages are signed by the agent DID which is the tenant of the records.
For read and delete the data is the record ID.

Example
	tool5 dwn --action create --endpoint https://dwn.tbddev.org/beta --data hello
	tool5 dwn --action read --endpoint https://dwn.tbddev.org/beta --data bafy...
	tool5 dwn --action update --endpoint https://dwn.tbddev.org/beta --record bafy... --data hi
	tool5 dwn --action delete --endpoint https://dwn.tbddev.org/beta --data bafy...
	`,
	PreRunE: func(*cobra.Command, []string) (err error) {
		return BindEnvs(dwnEnvs, "DWN")
	},
	RunE: func(*cobra.Command, []string) (err error) {
		defer err2.Handle(&err, nil)

		env := newEnv()
		defer env.Close()

		c := dwnFlags.WithDefaults(utils.Settings.Home())
		c.Facade = dwn.New(func() (dwn.Author, error) {
			a, err := env.Agent()
			if err != nil {
				return nil, err
			}
			return a, nil
		})
		return execCmd(c)
	},
}

var dwnFlags = dwncmd.Cmd{}

func init() {
	defer err2.Catch(func(err error) error {
		log.Println(err)
		return nil
	})

	flags := dwnCmd.Flags()
	flags.StringVar(&dwnFlags.Action, "action", "", flagInfo("action: create, read, update or delete", dwnCmd.Name(), dwnEnvs["action"]))
	flags.StringVar(&dwnFlags.Endpoint, "endpoint", "", flagInfo("DWN endpoint URL", dwnCmd.Name(), dwnEnvs["endpoint"]))
	flags.StringVar(&dwnFlags.Data, "data", "", flagInfo("record data, or record ID of read and delete", dwnCmd.Name(), dwnEnvs["data"]))
	flags.StringVar(&dwnFlags.Record, "record", "", flagInfo("record ID to update", dwnCmd.Name(), dwnEnvs["record"]))
	flags.StringVar(&dwnFlags.Format, "format", "", flagInfo("data format, default "+dwn.DefaultDataFormat, dwnCmd.Name(), dwnEnvs["format"]))

	rootCmd.AddCommand(dwnCmd)
}
