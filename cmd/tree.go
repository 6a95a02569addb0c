package cmd

import (
	"fmt"
	"io"

	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var treeDoc = `Prints the tool5 command structure.

Without arguments the whole structure is printed. A subcommand name as an
argument prints only that subcommand and its children.
`

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Prints the tool5 command structure",
	Long:  treeDoc,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err, nil)

		root := rootCmd
		if len(args) > 0 {
			root, _ = try.To2(rootCmd.Find(args))
		}
		printTree(c.OutOrStdout(), root, "", 0, true)
		return nil
	},
}

func printTree(w io.Writer, c *cobra.Command, indent string, level int, last bool) {
	if treeLevel != 0 && level >= treeLevel {
		return
	}
	branch, next := "├── ", indent+"│   "
	if last {
		branch, next = "└── ", indent+"    "
	}
	fmt.Fprintf(w, "%s%s%s\n", indent, branch, c.Name())

	subs := c.Commands()
	for i, sub := range subs {
		printTree(w, sub, next, level+1, i == len(subs)-1)
	}
}

var treeLevel int

func init() {
	treeCmd.PersistentFlags().IntVarP(&treeLevel, "level", "L", 0, "level of the tree, zero is ignored")
	rootCmd.AddCommand(treeCmd)
}
