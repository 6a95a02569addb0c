package cmd

import (
	"log"

	"github.com/bnonni/tool5/agent/dids"
	"github.com/bnonni/tool5/agent/utils"
	didcmd "github.com/bnonni/tool5/cmds/did"
	"github.com/lainio/err2"
	"github.com/spf13/cobra"
)

var didEnvs = map[string]string{
	"action":    "ACTION",
	"method":    "METHOD",
	"endpoint":  "ENDPOINT",
	"gateway":   "GATEWAY",
	"out":       "OUT",
	"did":       "DID",
	"portable":  "PORTABLE",
	"republish": "REPUBLISH",
}

var didCmd = &cobra.Command{
	Use:   "did",
	Short: "Command for creating, publishing and resolving DIDs",
	Long: `
Command for creating, publishing and resolving DIDs.

A did:dht is published to the gateway when it's created. The public and the
portable (private) documents are written to <out>/<did>/, the default out is
<home>/did/<action>.

Example
	tool5 did --action create
	tool5 did --action create --method key
	tool5 did --action publish --did did:dht:... --republish 1h
	tool5 did --action resolve --did did:dht:...
	`,
	PreRunE: func(*cobra.Command, []string) (err error) {
		return BindEnvs(didEnvs, "DID")
	},
	RunE: func(*cobra.Command, []string) (err error) {
		defer err2.Handle(&err, nil)

		home := utils.Settings.Home()
		c := didFlags.WithDefaults(home)
		c.Facade = dids.New(home)
		return execCmd(c)
	},
}

var didFlags = didcmd.Cmd{}

func init() {
	defer err2.Catch(func(err error) error {
		log.Println(err)
		return nil
	})

	flags := didCmd.Flags()
	flags.StringVar(&didFlags.Action, "action", "", flagInfo("action: create, publish or resolve", didCmd.Name(), didEnvs["action"]))
	flags.StringVar(&didFlags.Method, "method", "", flagInfo("DID method of create: dht or key, default dht", didCmd.Name(), didEnvs["method"]))
	flags.StringVar(&didFlags.Endpoint, "endpoint", "", flagInfo("DWN endpoint of the DID service, default "+utils.DefaultEndpoint, didCmd.Name(), didEnvs["endpoint"]))
	flags.StringVar(&didFlags.Gateway, "gateway", "", flagInfo("DHT gateway URL, default "+utils.DefaultGateway, didCmd.Name(), didEnvs["gateway"]))
	flags.StringVar(&didFlags.Out, "out", "", flagInfo("output directory, default <home>/did/<action>", didCmd.Name(), didEnvs["out"]))
	flags.StringVar(&didFlags.DID, "did", "", flagInfo("DID to publish or resolve", didCmd.Name(), didEnvs["did"]))
	flags.StringVar(&didFlags.Portable, "portable", "", flagInfo("portable DID file to publish", didCmd.Name(), didEnvs["portable"]))
	flags.DurationVar(&didFlags.Republish, "republish", 0, flagInfo("republish interval of publish, 0 publishes once", didCmd.Name(), didEnvs["republish"]))

	rootCmd.AddCommand(didCmd)
}
