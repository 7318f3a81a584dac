package cmd

import (
	"fmt"
	"strconv"

	"github.com/jsphweid/sightread/notation"
	"github.com/spf13/cobra"
)

var convertFlats bool

func init() {
	convertCmd.Flags().BoolVar(&convertFlats, "flats", false, "spell black keys as flats")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <token|midi>",
	Short: "Converts between a pitch token and a midi number",
	Long: `Converts a single ABC pitch token such as ^C' to its midi number, or a
midi number in the piano range (21-108) to a token.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := convert(args[0], convertFlats)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func convert(arg string, flats bool) (string, error) {
	if m, err := strconv.Atoi(arg); err == nil {
		return notation.MidiToToken(m, flats)
	}
	m, err := notation.TokenToMidi(arg)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(m), nil
}
