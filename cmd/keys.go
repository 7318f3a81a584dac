package cmd

import (
	"fmt"

	"github.com/jsphweid/sightread/keysig"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Lists key signatures",
	Long:  `Lists the key signatures that generate accepts, one per line.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range keysig.Default().Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}
