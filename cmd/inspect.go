package cmd

import (
	"fmt"
	"strings"

	"github.com/jsphweid/sightread/midi"
	"github.com/jsphweid/sightread/notation"
	"github.com/spf13/cobra"
)

var inspectFlats bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectFlats, "flats", false, "spell black keys as flats")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects a midi file",
	Long:  `Prints every group of simultaneous notes in a midi file as pitch tokens.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		for _, g := range midi.NoteOnsByTick(s) {
			fmt.Fprintf(cmd.OutOrStdout(), "%v  %v\n", g, groupTokens(g, inspectFlats))
		}
		return nil
	},
}

func groupTokens(g midi.NoteGroup, flats bool) string {
	tokens := make([]string, len(g.Notes))
	for i, n := range g.Notes {
		tok, err := notation.MidiToToken(int(n), flats)
		if err != nil {
			tok = "?"
		}
		tokens[i] = tok
	}
	if len(tokens) == 1 {
		return tokens[0]
	}
	return "[" + strings.Join(tokens, "") + "]"
}
