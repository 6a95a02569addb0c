package cmd

import (
	"fmt"

	"github.com/bnonni/tool5/agent/utils"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var versionDoc = `Prints the version of the tool. The version is set at build time:

	go build -ldflags "-X github.com/bnonni/tool5/agent/utils.Version=v0.3.0"
`

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version and build information of the CLI tool",
	Long:  versionDoc,
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		defer err2.Handle(&err, nil)

		try.To1(fmt.Println(utils.Settings.VersionInfo()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
