package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/sightread/chord"
	"github.com/jsphweid/sightread/util"
	"github.com/pkg/errors"
)

var ErrInvalidMeter = errors.New("invalid meter")

// MaxMeterPart bounds both numbers of a meter.
const MaxMeterPart = 64

const (
	Bar      = "|"
	FinalBar = "|]"

	// StavesMarker declares the two staves of a grand staff.
	StavesMarker = "%%staves {1,2}"
)

// Tune is everything needed to write out a piano piece.
type Tune struct {
	Title      string
	Meter      string
	NoteLength int
	Key        string
	Treble     chord.Sequence
	Bass       chord.Sequence

	// MeasuresPerLine breaks the music into systems of this many measures.
	// 0 keeps each voice on one line.
	MeasuresPerLine int
}

// Measures groups seq into measures. A measure closes once its chords add
// up to at least measureLength; any overshoot is not carried over. The last
// measure may be short.
func Measures(seq chord.Sequence, measureLength int) []chord.Sequence {
	var res []chord.Sequence
	var curr chord.Sequence
	var time int
	for _, c := range seq {
		curr = append(curr, c)
		time += c.Duration
		if time >= measureLength {
			res = append(res, curr)
			curr = nil
			time = 0
		}
	}
	if len(curr) > 0 {
		res = append(res, curr)
	}
	return res
}

func writeMeasures(sb *strings.Builder, measures []chord.Sequence) {
	for _, m := range measures {
		for _, c := range m {
			sb.WriteString(c.Token())
		}
		sb.WriteString(Bar)
	}
}

// SerializeLine writes seq as one line with a bar after every full measure.
// The line always ends on a bar.
func SerializeLine(seq chord.Sequence, measureLength int) string {
	var sb strings.Builder
	writeMeasures(&sb, Measures(seq, measureLength))
	if sb.Len() == 0 {
		sb.WriteString(Bar)
	}
	return sb.String()
}

// ParseMeter splits a meter into numerator and denominator. "C" is common
// time and "C|" cut time.
func ParseMeter(meter string) (num, den int, err error) {
	switch strings.TrimSpace(meter) {
	case "C":
		return 4, 4, nil
	case "C|":
		return 2, 2, nil
	}
	parts := strings.Split(meter, "/")
	if len(parts) != 2 {
		return 0, 0, errors.Wrapf(ErrInvalidMeter, "%q", meter)
	}
	if num, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, errors.Wrapf(ErrInvalidMeter, "%q: %v", meter, err)
	}
	if den, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, errors.Wrapf(ErrInvalidMeter, "%q: %v", meter, err)
	}
	if num <= 0 || den <= 0 || num > MaxMeterPart || den > MaxMeterPart {
		return 0, 0, errors.Wrapf(ErrInvalidMeter, "%q", meter)
	}
	return num, den, nil
}

// MeasureLength converts a meter into the length of one measure in units of
// 1/noteLength.
func MeasureLength(meter string, noteLength int) (int, error) {
	if noteLength <= 0 {
		return 0, errors.Wrapf(ErrInvalidMeter, "note length 1/%d", noteLength)
	}
	num, den, err := ParseMeter(meter)
	if err != nil {
		return 0, err
	}
	if num*noteLength%den != 0 {
		return 0, errors.Wrapf(ErrInvalidMeter, "%q is not a whole number of 1/%d notes", meter, noteLength)
	}
	return num * noteLength / den, nil
}

type voice struct {
	number int
	clef   string
	lines  [][]chord.Sequence
}

func splitLines(measures []chord.Sequence, perLine int) [][]chord.Sequence {
	if perLine <= 0 || len(measures) <= perLine {
		return [][]chord.Sequence{measures}
	}
	var res [][]chord.Sequence
	for len(measures) > perLine {
		res = append(res, measures[:perLine])
		measures = measures[perLine:]
	}
	return append(res, measures)
}

// SerializeTune writes the header fields followed by both staves. With
// MeasuresPerLine set, each system re-declares both voices; a voice that
// runs out of measures is padded with whole-measure rests.
func SerializeTune(t Tune) (string, error) {
	measureLength, err := MeasureLength(t.Meter, t.NoteLength)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "T:%s\n", t.Title)
	fmt.Fprintf(&sb, "M:%s\n", t.Meter)
	fmt.Fprintf(&sb, "L:1/%d\n", t.NoteLength)
	fmt.Fprintf(&sb, "K:%s\n", t.Key)
	sb.WriteString(StavesMarker + "\n")

	voices := []voice{
		{1, "treble", splitLines(Measures(t.Treble, measureLength), t.MeasuresPerLine)},
		{2, "bass", splitLines(Measures(t.Bass, measureLength), t.MeasuresPerLine)},
	}
	systems := util.Max(len(voices[0].lines), len(voices[1].lines))

	rest := chord.Sequence{chord.New(measureLength)}
	for s := 0; s < systems; s++ {
		for _, v := range voices {
			fmt.Fprintf(&sb, "V:%d\n", v.number)
			fmt.Fprintf(&sb, "[K:%s clef=%s]\n", t.Key, v.clef)

			var measures []chord.Sequence
			if s < len(v.lines) {
				measures = v.lines[s]
			}
			if len(measures) == 0 && s > 0 {
				measures = []chord.Sequence{rest}
			}

			var line strings.Builder
			writeMeasures(&line, measures)
			if line.Len() == 0 {
				line.WriteString(Bar)
			}
			sb.WriteString(line.String())
			if s == systems-1 {
				sb.WriteString("]")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
