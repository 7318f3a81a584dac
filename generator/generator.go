package generator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jsphweid/sightread/chord"
	"github.com/jsphweid/sightread/keysig"
	"github.com/jsphweid/sightread/notation"
	"github.com/jsphweid/sightread/pitch"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var ErrInvalidOptions = errors.New("invalid generator options")

// MaxSpan is the widest a chord may be, in staff steps. One octave keeps a
// chord playable by one hand.
const MaxSpan = 7

// no staff index further than this from middle C is on a piano
const maxStaffIndex = 7 * 6

// Bounds on a single generation.
const (
	MaxChordCount = 10000
	MaxDuration   = 1 << 12
)

// MeasuresPerLine is how many measures ChordCount assumes fit on a line.
const MeasuresPerLine = 4

// Rand picks an integer in [0, n). *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewLockedRand returns a Rand safe for concurrent generations. A seed of 0
// seeds from the clock.
func NewLockedRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

type Options struct {
	Key      *keysig.KeySignature
	MinIndex int
	MaxIndex int

	// PitchesPerChord of 0 generates rests.
	PitchesPerChord int
	Duration        int
	ChordCount      int
}

func (o Options) validate() error {
	switch {
	case o.Key == nil:
		return errors.Wrap(ErrInvalidOptions, "no key")
	case o.MinIndex > o.MaxIndex:
		return errors.Wrapf(ErrInvalidOptions, "min index %d above max index %d", o.MinIndex, o.MaxIndex)
	case o.PitchesPerChord < 0:
		return errors.Wrapf(ErrInvalidOptions, "pitches per chord %d", o.PitchesPerChord)
	case o.Duration <= 0 || o.Duration > MaxDuration:
		return errors.Wrapf(ErrInvalidOptions, "duration %d not in [1, %d]", o.Duration, MaxDuration)
	case o.ChordCount < 0 || o.ChordCount > MaxChordCount:
		return errors.Wrapf(ErrInvalidOptions, "chord count %d not in [0, %d]", o.ChordCount, MaxChordCount)
	}
	return o.checkRange()
}

// checkRange makes sure both ends of the index range sound inside the piano
// range. Midi rises with staff index so the ends are enough.
func (o Options) checkRange() error {
	for _, idx := range []int{o.MinIndex, o.MaxIndex} {
		if idx < -maxStaffIndex || idx > maxStaffIndex {
			return errors.Wrapf(notation.ErrOutOfRange, "staff index %d", idx)
		}
		p, err := pitch.Resolve(o.Key, idx)
		if err != nil {
			return err
		}
		if p.Midi < notation.LowestMidi || p.Midi > notation.HighestMidi {
			return errors.Wrapf(notation.ErrOutOfRange, "staff index %d is midi %d in %s", idx, p.Midi, o.Key.Name)
		}
	}
	return nil
}

// Generate returns ChordCount chords of the given duration, each with up to
// PitchesPerChord distinct staff indices drawn from [MinIndex, MaxIndex].
// Once a pitch is placed, indices more than an octave from the chord's
// current extremes are no longer candidates, so a chord can come out short
// when the range is narrow.
func Generate(o Options, r Rand) (chord.Sequence, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	seq := make(chord.Sequence, 0, o.ChordCount)
	for i := 0; i < o.ChordCount; i++ {
		c, err := generateChord(o, r)
		if err != nil {
			return nil, err
		}
		seq = append(seq, c)
	}
	return seq, nil
}

func generateChord(o Options, r Rand) (*chord.Chord, error) {
	c := chord.New(o.Duration)

	options := make([]int, o.MaxIndex-o.MinIndex+1)
	for i := range options {
		options[i] = o.MinIndex + i
	}

	for j := 0; j < o.PitchesPerChord && len(options) > 0; j++ {
		choice := r.Intn(len(options))
		p, err := pitch.Resolve(o.Key, options[choice])
		if err != nil {
			return nil, err
		}
		c.AddPitch(p)
		options = slices.Delete(options, choice, choice+1)

		lowest, highest, _ := c.Span()
		options = prune(options, lowest, highest)
	}
	return c, nil
}

// prune drops candidates that would stretch the chord past MaxSpan. options
// is sorted ascending.
func prune(options []int, lowest, highest int) []int {
	end := len(options)
	for end > 0 && options[end-1] > lowest+MaxSpan {
		end--
	}
	options = options[:end]

	start := 0
	for start < len(options) && options[start] < highest-MaxSpan {
		start++
	}
	return options[start:]
}

// ChordCount is how many chords of duration fill the given number of lines
// of MeasuresPerLine measures, each measureLength units long.
func ChordCount(duration, measureLength, lines int) int {
	if duration <= 0 {
		return 0
	}
	return MeasuresPerLine * lines * measureLength / duration
}
