package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sightread",
	Short: "Random grand staff sight-reading exercises",
	Long: `Generates two-staff piano exercises in ABC notation for a chosen key,
and converts between ABC pitch tokens and midi note numbers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env is fine, the environment is used as is
		_ = godotenv.Load()
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
