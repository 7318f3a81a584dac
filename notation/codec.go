package notation

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrOutOfRange   = errors.New("outside piano range")
	ErrInvalidToken = errors.New("invalid pitch token")
)

// Piano range, A0 to C8.
const (
	LowestMidi  = 21
	HighestMidi = 108
)

// middleRegister is the midi value of an unmarked "C".
const middleRegister = 60

var letterClass = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

var (
	sharpNames = [12]string{"C", "^C", "D", "^D", "E", "F", "^F", "G", "^G", "A", "^A", "B"}
	flatNames  = [12]string{"C", "_D", "D", "_E", "E", "F", "_G", "G", "_A", "A", "_B", "B"}
)

// TokenToMidi decodes a single pitch such as "C", "^F,", or "_B'". The
// accidental is explicit; no key signature is applied.
func TokenToMidi(token string) (int, error) {
	rest := token
	acc := 0
	if len(rest) > 0 {
		switch rest[0] {
		case '^':
			acc = 1
			rest = rest[1:]
		case '_':
			acc = -1
			rest = rest[1:]
		}
	}
	if len(rest) == 0 {
		return 0, errors.Wrapf(ErrInvalidToken, "%q has no letter", token)
	}
	class, ok := letterClass[rest[0]]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidToken, "%q: bad letter %q", token, rest[0])
	}

	register := middleRegister
	for i := len(rest) - 1; i > 0; i-- {
		switch rest[i] {
		case '\'':
			register += 12
		case ',':
			register -= 12
		default:
			return 0, errors.Wrapf(ErrInvalidToken, "%q: bad octave mark %q", token, rest[i])
		}
	}

	midi := class + register + acc
	if midi < LowestMidi || midi > HighestMidi {
		return 0, errors.Wrapf(ErrOutOfRange, "%q is midi %d", token, midi)
	}
	return midi, nil
}

// MidiToToken encodes a midi value in the piano range. Black keys are
// spelled as sharps unless useFlats is set.
func MidiToToken(midi int, useFlats bool) (string, error) {
	if midi < LowestMidi || midi > HighestMidi {
		return "", errors.Wrapf(ErrOutOfRange, "midi %d", midi)
	}

	class := midi % 12
	name := sharpNames[class]
	if useFlats {
		name = flatNames[class]
	}

	marks := (midi - class - middleRegister) / 12
	if marks < 0 {
		return name + strings.Repeat(",", -marks), nil
	}
	return name + strings.Repeat("'", marks), nil
}
