package generator

import (
	"math/rand"
	"testing"

	"github.com/jsphweid/sightread/keysig"
	"github.com/jsphweid/sightread/notation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// scripted hands out its values in order, wrapped into [0, n).
type scripted struct {
	values []int
	next   int
}

func (s *scripted) Intn(n int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	if v < 0 {
		return n + v
	}
	return v % n
}

func key(t *testing.T, name string) *keysig.KeySignature {
	t.Helper()
	k, err := keysig.Default().Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestChordSpanNeverExceedsAnOctave(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, name := range keysig.Default().Names() {
		seq, err := Generate(Options{
			Key:             key(t, name),
			MinIndex:        -14,
			MaxIndex:        20,
			PitchesPerChord: 4,
			Duration:        12,
			ChordCount:      50,
		}, r)
		assert.NoError(t, err)
		assert.Len(t, seq, 50)

		for _, c := range seq {
			low, high, ok := c.Span()
			assert.True(t, ok)
			assert.LessOrEqual(t, high-low, MaxSpan, c.Indices())
			assert.Equal(t, 4, c.Len(), c.Indices())
			assert.Equal(t, 12, c.Duration)
		}
	}
}

func TestChordPitchesAreOrderedAndDistinct(t *testing.T) {
	seq, err := Generate(Options{
		Key:             key(t, "Eb"),
		MinIndex:        0,
		MaxIndex:        15,
		PitchesPerChord: 3,
		Duration:        6,
		ChordCount:      100,
	}, NewLockedRand(7))
	assert.NoError(t, err)

	for _, c := range seq {
		ps := c.Pitches()
		for i := 1; i < len(ps); i++ {
			assert.Less(t, ps[i-1].StaffIndex, ps[i].StaffIndex, c.Indices())
		}
		for _, p := range ps {
			assert.GreaterOrEqual(t, p.StaffIndex, 0)
			assert.LessOrEqual(t, p.StaffIndex, 15)
		}
	}
}

func TestScriptedChoices(t *testing.T) {
	// first pick 0, then the top of what is left after pruning
	r := &scripted{values: []int{0, -1}}
	seq, err := Generate(Options{
		Key:             key(t, "C"),
		MinIndex:        0,
		MaxIndex:        15,
		PitchesPerChord: 2,
		Duration:        12,
		ChordCount:      1,
	}, r)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal("[CC']12", seq[0].Token())
	assert.Equal("[0, 7]", seq[0].Indices())
}

func TestNarrowRangeGivesShortChord(t *testing.T) {
	seq, err := Generate(Options{
		Key:             key(t, "C"),
		MinIndex:        3,
		MaxIndex:        4,
		PitchesPerChord: 5,
		Duration:        12,
		ChordCount:      3,
	}, NewLockedRand(1))

	assert := assert.New(t)
	assert.NoError(err)
	for _, c := range seq {
		assert.Equal(2, c.Len())
		assert.Equal("[FG]12", c.Token())
	}
}

func TestZeroPitchesGivesRests(t *testing.T) {
	seq, err := Generate(Options{
		Key:        key(t, "C"),
		MaxIndex:   7,
		Duration:   24,
		ChordCount: 2,
	}, NewLockedRand(1))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal("x24", seq[0].Token())
	assert.Equal("x24", seq[1].Token())
}

func TestSameSeedSameSequence(t *testing.T) {
	o := Options{
		Key:             key(t, "A"),
		MinIndex:        -10,
		MaxIndex:        10,
		PitchesPerChord: 2,
		Duration:        12,
		ChordCount:      20,
	}
	a, _ := Generate(o, rand.New(rand.NewSource(99)))
	b, _ := Generate(o, rand.New(rand.NewSource(99)))

	assert.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Token(), b[i].Token())
	}
}

func TestInvalidOptions(t *testing.T) {
	cases := map[string]Options{
		"no key":         {MinIndex: 0, MaxIndex: 1, Duration: 1},
		"inverted range": {Key: key(t, "C"), MinIndex: 5, MaxIndex: 1, Duration: 1},
		"zero duration":  {Key: key(t, "C"), MaxIndex: 1},
		"negative count": {Key: key(t, "C"), MaxIndex: 1, Duration: 1, ChordCount: -1},
		"negative size":  {Key: key(t, "C"), MaxIndex: 1, Duration: 1, PitchesPerChord: -2},
	}
	for name, o := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Generate(o, NewLockedRand(1))
			assert.True(t, errors.Is(err, ErrInvalidOptions))
		})
	}
}

func TestPrune(t *testing.T) {
	options := []int{-5, -4, 0, 3, 7, 8, 12}
	assert.Equal(t, []int{3, 7, 8}, prune(options, 1, 8))
}

func TestChordCount(t *testing.T) {
	assert := assert.New(t)
	// five lines of 4/4 quarter notes at L:1/48
	assert.Equal(80, ChordCount(12, 48, 5))
	assert.Equal(40, ChordCount(24, 48, 5))
	assert.Equal(0, ChordCount(0, 48, 5))
}

func TestIndicesOutsidePianoRange(t *testing.T) {
	cases := map[string][2]int{
		"above":           {150, 150},
		"max above":       {0, 150},
		"min below":       {-100, 0},
		"just above C8":   {0, 29},
		"just below A0":   {-24, 0},
		"huge":            {0, 1 << 60},
		"hugely negative": {-(1 << 60), 0},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			seq, err := Generate(Options{
				Key:             key(t, "C"),
				MinIndex:        r[0],
				MaxIndex:        r[1],
				PitchesPerChord: 1,
				Duration:        12,
				ChordCount:      1,
			}, NewLockedRand(1))
			assert.True(t, errors.Is(err, notation.ErrOutOfRange), "%v", err)
			assert.Nil(t, seq)
		})
	}
}

func TestFullPianoRangeIsAccepted(t *testing.T) {
	// A0 to C8
	seq, err := Generate(Options{
		Key:             key(t, "C"),
		MinIndex:        -23,
		MaxIndex:        28,
		PitchesPerChord: 3,
		Duration:        12,
		ChordCount:      200,
	}, NewLockedRand(5))
	assert.NoError(t, err)
	for _, c := range seq {
		for _, m := range c.Midis() {
			assert.GreaterOrEqual(t, m, notation.LowestMidi)
			assert.LessOrEqual(t, m, notation.HighestMidi)
		}
	}
}

func TestGenerationIsBounded(t *testing.T) {
	o := Options{
		Key:             key(t, "C"),
		MaxIndex:        7,
		PitchesPerChord: 1,
		Duration:        12,
		ChordCount:      ChordCount(12, 48, 1e12),
	}
	_, err := Generate(o, NewLockedRand(1))
	assert.True(t, errors.Is(err, ErrInvalidOptions))

	o.ChordCount = MaxChordCount + 1
	_, err = Generate(o, NewLockedRand(1))
	assert.True(t, errors.Is(err, ErrInvalidOptions))

	o.ChordCount = 1
	o.Duration = MaxDuration + 1
	_, err = Generate(o, NewLockedRand(1))
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}
