package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/generator"
	"github.com/jsphweid/sightread/logger"
	"github.com/jsphweid/sightread/midi"
	"github.com/jsphweid/sightread/notation"
	"github.com/spf13/cobra"
)

var (
	genSettings = defaultSettings()
	genSeed     int64
	genMidi     bool
	genMidiOut  string
)

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genSettings.Key, "key", "k", genSettings.Key, "key signature, one of those listed by the keys command")
	f.StringVar(&genSettings.Title, "title", genSettings.Title, "tune title")
	f.StringVar(&genSettings.Meter, "meter", genSettings.Meter, "meter, e.g. C or 6/8")
	f.IntVar(&genSettings.NoteLength, "note-length", genSettings.NoteLength, "unit note length denominator (L:1/n)")
	f.IntVarP(&genSettings.Duration, "duration", "d", genSettings.Duration, "chord duration in units")
	f.IntVar(&genSettings.Lines, "lines", genSettings.Lines, "lines of music to fill")
	f.IntVar(&genSettings.MeasuresPerLine, "measures-per-line", genSettings.MeasuresPerLine, "measures per system, 0 for a single system")
	f.IntVar(&genSettings.Treble.MinIndex, "treble-min", genSettings.Treble.MinIndex, "lowest treble staff index (0 is middle C)")
	f.IntVar(&genSettings.Treble.MaxIndex, "treble-max", genSettings.Treble.MaxIndex, "highest treble staff index")
	f.IntVar(&genSettings.Treble.PitchesPerChord, "treble-pitches", genSettings.Treble.PitchesPerChord, "pitches per treble chord")
	f.IntVar(&genSettings.Bass.MinIndex, "bass-min", genSettings.Bass.MinIndex, "lowest bass staff index")
	f.IntVar(&genSettings.Bass.MaxIndex, "bass-max", genSettings.Bass.MaxIndex, "highest bass staff index")
	f.IntVar(&genSettings.Bass.PitchesPerChord, "bass-pitches", genSettings.Bass.PitchesPerChord, "pitches per bass chord")
	f.Int64Var(&genSeed, "seed", 0, "random seed, 0 for a random one")
	f.BoolVar(&genMidi, "midi", false, "also write a midi file to OUTPUT_PATH")
	f.StringVar(&genMidiOut, "midi-out", "", "also write a midi file to this path")

	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates a grand staff exercise",
	Long:  `Generates a grand staff exercise and prints it as ABC notation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tune, err := buildTune(genSettings, generator.NewLockedRand(genSeed))
		if err != nil {
			return err
		}
		abc, err := notation.SerializeTune(tune)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), abc)

		path := genMidiOut
		if path == "" && genMidi {
			dir := constants.GetOutputDir()
			if err := os.MkdirAll(dir, 0777); err != nil {
				return err
			}
			path = filepath.Join(dir, uuid.New().String()+".mid")
		}
		if path == "" {
			return nil
		}
		if err := midi.WriteTuneFile(path, tune, constants.DefaultTempo); err != nil {
			return err
		}
		logger.Info("wrote midi", logger.Fields{"path": path})
		return nil
	},
}
