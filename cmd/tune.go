package cmd

import (
	"github.com/jsphweid/sightread/chord"
	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/generator"
	"github.com/jsphweid/sightread/keysig"
	"github.com/jsphweid/sightread/logger"
	"github.com/jsphweid/sightread/notation"
	"github.com/jsphweid/sightread/pitch"
	"github.com/jsphweid/sightread/util"
	"github.com/pkg/errors"
)

type voiceSettings struct {
	MinIndex        int
	MaxIndex        int
	PitchesPerChord int
}

type tuneSettings struct {
	Title           string
	Key             string
	Meter           string
	NoteLength      int
	Duration        int
	Lines           int
	MeasuresPerLine int
	Treble          voiceSettings
	Bass            voiceSettings
}

func defaultSettings() tuneSettings {
	return tuneSettings{
		Title:           constants.DefaultTitle,
		Key:             constants.DefaultKey,
		Meter:           constants.DefaultMeter,
		NoteLength:      constants.DefaultNoteLength,
		Duration:        constants.QuarterDuration,
		Lines:           constants.DefaultLines,
		MeasuresPerLine: constants.DefaultMeasuresPerLine,
		Treble: voiceSettings{
			MinIndex:        constants.TrebleMin,
			MaxIndex:        constants.TrebleMax,
			PitchesPerChord: constants.DefaultPitchesPerChord,
		},
		Bass: voiceSettings{
			MinIndex:        constants.BassMin,
			MaxIndex:        constants.BassMax,
			PitchesPerChord: constants.DefaultPitchesPerChord,
		},
	}
}

func countPitches(seq chord.Sequence) int {
	lens := make([]int, len(seq))
	for i, c := range seq {
		lens[i] = c.Len()
	}
	return util.Sum(lens)
}

func generateVoice(name string, key *keysig.KeySignature, v voiceSettings, s tuneSettings, count int, r generator.Rand) (chord.Sequence, error) {
	seq, err := generator.Generate(generator.Options{
		Key:             key,
		MinIndex:        v.MinIndex,
		MaxIndex:        v.MaxIndex,
		PitchesPerChord: v.PitchesPerChord,
		Duration:        s.Duration,
		ChordCount:      count,
	}, r)
	if err != nil {
		return nil, err
	}

	if want := count * v.PitchesPerChord; countPitches(seq) < want {
		logger.Warn("range too narrow for requested chord size", logger.Fields{
			"voice":  name,
			"wanted": want,
			"got":    countPitches(seq),
		})
	}
	return seq, nil
}

func (s tuneSettings) validate() error {
	if s.Lines < 1 || s.Lines > constants.MaxLines {
		return errors.Wrapf(generator.ErrInvalidOptions, "lines %d not in [1, %d]", s.Lines, constants.MaxLines)
	}
	if s.NoteLength < 1 || s.NoteLength > constants.MaxNoteLength {
		return errors.Wrapf(generator.ErrInvalidOptions, "note length 1/%d not in [1, %d]", s.NoteLength, constants.MaxNoteLength)
	}
	if s.MeasuresPerLine < 0 {
		return errors.Wrapf(generator.ErrInvalidOptions, "measures per line %d", s.MeasuresPerLine)
	}
	return nil
}

func buildTune(s tuneSettings, r generator.Rand) (notation.Tune, error) {
	var tune notation.Tune

	if err := s.validate(); err != nil {
		return tune, err
	}
	key, err := keysig.Default().Lookup(s.Key)
	if err != nil {
		return tune, err
	}
	measureLength, err := notation.MeasureLength(s.Meter, s.NoteLength)
	if err != nil {
		return tune, err
	}
	count := generator.ChordCount(s.Duration, measureLength, s.Lines)

	treble, err := generateVoice("treble", key, s.Treble, s, count, r)
	if err != nil {
		return tune, err
	}
	bass, err := generateVoice("bass", key, s.Bass, s, count, r)
	if err != nil {
		return tune, err
	}

	logger.Debug("generated tune", logger.Fields{
		"key":    key.Name,
		"chords": count,
		"treble": pitch.StaffLabel(s.Treble.MinIndex) + ".." + pitch.StaffLabel(s.Treble.MaxIndex),
		"bass":   pitch.StaffLabel(s.Bass.MinIndex) + ".." + pitch.StaffLabel(s.Bass.MaxIndex),
	})

	return notation.Tune{
		Title:           s.Title,
		Meter:           s.Meter,
		NoteLength:      s.NoteLength,
		Key:             key.Name,
		Treble:          treble,
		Bass:            bass,
		MeasuresPerLine: s.MeasuresPerLine,
	}, nil
}
