package chord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/sightread/pitch"
	"golang.org/x/exp/slices"
)

// Chord is a set of pitches struck together. A chord with no pitches is a
// rest.
//
// Duration is a multiple of the tune's unit note length. With L:1/48 a
// quarter note has duration 12, an eighth 6, and a whole note 48.
type Chord struct {
	Duration int

	pitches []pitch.Pitch
	lowest  int
	highest int
}

// Sequence is one voice's worth of chords in playing order.
type Sequence []*Chord

func New(duration int) *Chord {
	return &Chord{Duration: duration}
}

// AddPitch inserts p keeping the pitches ordered by staff index. Pitches
// with equal staff indices keep their insertion order.
func (c *Chord) AddPitch(p pitch.Pitch) {
	i := len(c.pitches)
	for i > 0 && c.pitches[i-1].StaffIndex > p.StaffIndex {
		i--
	}
	c.pitches = slices.Insert(c.pitches, i, p)
	c.lowest = c.pitches[0].StaffIndex
	c.highest = c.pitches[len(c.pitches)-1].StaffIndex
}

func (c *Chord) IsRest() bool {
	return len(c.pitches) == 0
}

func (c *Chord) Len() int {
	return len(c.pitches)
}

func (c *Chord) Pitches() []pitch.Pitch {
	return slices.Clone(c.pitches)
}

// Span returns the lowest and highest staff index in the chord. ok is false
// for a rest.
func (c *Chord) Span() (lowest, highest int, ok bool) {
	if c.IsRest() {
		return 0, 0, false
	}
	return c.lowest, c.highest, true
}

// Token renders the chord for the notation markup: "x12" for a rest, "E12"
// for a single note, "[CEG]12" for a chord.
func (c *Chord) Token() string {
	dur := strconv.Itoa(c.Duration)
	switch len(c.pitches) {
	case 0:
		return "x" + dur
	case 1:
		return c.pitches[0].Display + dur
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for _, p := range c.pitches {
		sb.WriteString(p.Display)
	}
	sb.WriteByte(']')
	sb.WriteString(dur)
	return sb.String()
}

func (c *Chord) String() string {
	return c.Token()
}

// Indices lists the staff indices, e.g. "[0, 4, 7]".
func (c *Chord) Indices() string {
	parts := make([]string, len(c.pitches))
	for i, p := range c.pitches {
		parts[i] = strconv.Itoa(p.StaffIndex)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (c *Chord) Midis() []int {
	res := make([]int, len(c.pitches))
	for i, p := range c.pitches {
		res[i] = p.Midi
	}
	return res
}

// CreateChordKey joins sorted midi values with "-", e.g. "60-64-67".
func CreateChordKey(notes []uint8) string {
	sorted := slices.Clone(notes)
	slices.Sort(sorted)
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

// Duration of the whole sequence in note-length units.
func (s Sequence) Duration() int {
	var total int
	for _, c := range s {
		total += c.Duration
	}
	return total
}
