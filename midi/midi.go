package midi

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jsphweid/sightread/chord"
	"github.com/jsphweid/sightread/notation"
	"github.com/jsphweid/sightread/util"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the resolution of exported files.
const TicksPerQuarter = 960

const velocity = 80

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "Error reading midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "Error parsing midi file")
	}

	return res, nil
}

func ticksPerUnit(noteLength int) (uint32, error) {
	whole := 4 * TicksPerQuarter
	if noteLength <= 0 || whole%noteLength != 0 {
		return 0, errors.Errorf("note length 1/%d does not divide %d ticks", noteLength, whole)
	}
	return uint32(whole / noteLength), nil
}

func toKeys(c *chord.Chord) ([]uint8, error) {
	midis := c.Midis()
	keys := make([]uint8, len(midis))
	for i, m := range midis {
		if m < notation.LowestMidi || m > notation.HighestMidi {
			return nil, errors.Wrapf(notation.ErrOutOfRange, "midi %d in %v", m, c)
		}
		keys[i] = uint8(m)
	}
	return keys, nil
}

func toDelta(units int, unit uint32) (uint32, error) {
	ticks := uint64(units) * uint64(unit)
	if units < 0 || ticks > math.MaxUint32 {
		return 0, errors.Errorf("%d units of %d ticks do not fit a delta", units, unit)
	}
	return uint32(ticks), nil
}

func voiceTrack(name string, channel uint8, seq chord.Sequence, unit uint32) (smf.Track, error) {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))

	// rests are carried as units until the next note so the delta is
	// converted once
	var wait int
	for _, c := range seq {
		if c.IsRest() {
			wait += c.Duration
			continue
		}
		keys, err := toKeys(c)
		if err != nil {
			return nil, err
		}
		before, err := toDelta(wait, unit)
		if err != nil {
			return nil, err
		}
		length, err := toDelta(c.Duration, unit)
		if err != nil {
			return nil, err
		}
		for i, key := range keys {
			delta := uint32(0)
			if i == 0 {
				delta = before
			}
			tr.Add(delta, gomidi.NoteOn(channel, key, velocity))
		}
		for i, key := range keys {
			delta := uint32(0)
			if i == 0 {
				delta = length
			}
			tr.Add(delta, gomidi.NoteOff(channel, key))
		}
		wait = 0
	}
	end, err := toDelta(wait, unit)
	if err != nil {
		return nil, err
	}
	tr.Close(end)
	return tr, nil
}

// WriteTune writes t as a format 1 SMF: a conductor track followed by one
// track per staff, treble on channel 0 and bass on channel 1.
func WriteTune(w io.Writer, t notation.Tune, bpm float64) error {
	unit, err := ticksPerUnit(t.NoteLength)
	if err != nil {
		return err
	}
	num, den, err := notation.ParseMeter(t.Meter)
	if err != nil {
		return err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(t.Title))
	conductor.Add(0, smf.MetaMeter(uint8(num), uint8(den)))
	conductor.Add(0, smf.MetaTempo(bpm))
	conductor.Close(0)

	treble, err := voiceTrack("treble", 0, t.Treble, unit)
	if err != nil {
		return err
	}
	bass, err := voiceTrack("bass", 1, t.Bass, unit)
	if err != nil {
		return err
	}

	for _, tr := range []smf.Track{conductor, treble, bass} {
		if err := s.Add(tr); err != nil {
			return errors.Wrap(err, "could not add track")
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "could not write midi")
	}
	return nil
}

// WriteTuneFile is WriteTune to a new file at path.
func WriteTuneFile(path string, t notation.Tune, bpm float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %v", path)
	}
	defer f.Close()
	return WriteTune(f, t, bpm)
}

// NoteGroup is the set of keys struck at the same tick on one track.
type NoteGroup struct {
	Track int
	Tick  uint64
	Notes []uint8
}

func (g NoteGroup) String() string {
	return fmt.Sprintf("track %d @%d: %s", g.Track, g.Tick, chord.CreateChordKey(g.Notes))
}

// NoteOnsByTick collects note-on events, ordered by track and then time.
func NoteOnsByTick(s *smf.SMF) []NoteGroup {
	var res []NoteGroup
	for ti, events := range s.Tracks {
		byTick := make(map[uint64][]uint8)
		var absTicks uint64
		for _, event := range events {
			absTicks += uint64(event.Delta)
			var channel, key, vel uint8
			if event.Message.GetNoteOn(&channel, &key, &vel) && vel > 0 {
				byTick[absTicks] = append(byTick[absTicks], key)
			}
		}

		for _, tick := range util.GetKeys(byTick) {
			res = append(res, NoteGroup{Track: ti, Tick: tick, Notes: byTick[tick]})
		}
	}
	return res
}
