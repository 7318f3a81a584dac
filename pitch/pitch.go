package pitch

import (
	"strconv"
	"strings"

	"github.com/jsphweid/sightread/keysig"
	"github.com/pkg/errors"
)

var ErrInvariantViolation = errors.New("invariant violation")

// MiddleRegister is the register of staff indices 0..6.
const MiddleRegister = 4

type Pitch struct {
	Key         *keysig.KeySignature
	StaffIndex  int
	Register    int
	ScaleDegree int
	Midi        int

	// Display is the letter plus octave marks. The accidental is left to
	// the key signature.
	Display string
}

// fold brings a staff index into 0..6 and returns the register it came from.
func fold(staffIndex int) (int, int) {
	idx := staffIndex % 7
	if idx < 0 {
		idx += 7
	}
	return idx, MiddleRegister + (staffIndex-idx)/7
}

func octaveMarks(register int) string {
	if register < MiddleRegister {
		return strings.Repeat(",", MiddleRegister-register)
	}
	return strings.Repeat("'", register-MiddleRegister)
}

// Resolve works out which note of key sits at staffIndex. Staff index 0 is
// the C of the middle register.
//
// Midi is counted from the written letter plus the key's accidental, not
// from the degree's pitch class. The two agree except where the accidental
// crosses the B-C boundary: Cb4 is 59 and B#4 is 72, where pitch class plus
// register would give 71 and 60.
func Resolve(key *keysig.KeySignature, staffIndex int) (Pitch, error) {
	idx, register := fold(staffIndex)

	// count down the staff to the tonic; each step is one scale degree
	degree := 1
	for idx != key.StaffRoot {
		if degree == 7 {
			return Pitch{}, errors.Wrapf(ErrInvariantViolation,
				"staff root %d of key %s not reachable from index %d", key.StaffRoot, key.Name, staffIndex)
		}
		idx--
		if idx < 0 {
			idx = 6
		}
		degree++
	}

	d := key.Degree(degree)
	letter, _ := fold(staffIndex)
	if d.Letter != keysig.Letters[letter] {
		return Pitch{}, errors.Wrapf(ErrInvariantViolation,
			"degree %d of key %s is %s but staff index %d is %s", degree, key.Name, d.Letter, staffIndex, keysig.Letters[letter])
	}

	return Pitch{
		Key:         key,
		StaffIndex:  staffIndex,
		Register:    register,
		ScaleDegree: degree,
		Midi:        12*(register+1) + keysig.Natural(letter) + d.Alteration(),
		Display:     d.Letter + octaveMarks(register),
	}, nil
}

// Spelled is the pitch written with an explicit accidental, independent of
// any key signature.
func (p Pitch) Spelled() string {
	switch p.Key.Degree(p.ScaleDegree).Alteration() {
	case 1:
		return "^" + p.Display
	case -1:
		return "_" + p.Display
	}
	return p.Display
}

func (p Pitch) String() string {
	return p.Display
}

// StaffLabel names the line or space at staffIndex, e.g. "E4". Middle C is
// flagged with a trailing " *".
func StaffLabel(staffIndex int) string {
	idx, register := fold(staffIndex)
	label := keysig.Letters[idx] + strconv.Itoa(register)
	if label == "C4" {
		label += " *"
	}
	return label
}
