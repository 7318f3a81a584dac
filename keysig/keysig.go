package keysig

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	ErrUnknownKey   = errors.New("unknown key signature")
	ErrInvalidScale = errors.New("invalid scale")
)

// Letters are the seven staff letters in staff order. A staff index mod 7
// is an index into this array.
var Letters = [7]string{"C", "D", "E", "F", "G", "A", "B"}

// natural pitch class of each entry in Letters
var naturals = [7]int{0, 2, 4, 5, 7, 9, 11}

var (
	majorSteps = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorSteps = [7]int{0, 2, 3, 5, 7, 8, 10}
)

type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// Degree is how one scale degree is drawn and what it sounds like. The
// letter is the note as written under the key signature (F# in G major is
// written F), the pitch class is what it actually sounds as.
type Degree struct {
	Letter     string
	PitchClass int
}

// Alteration is the accidental the key signature applies to this degree,
// -1 for flat, +1 for sharp.
func (d Degree) Alteration() int {
	alt := d.PitchClass - naturals[letterIndex(d.Letter)]
	for alt > 6 {
		alt -= 12
	}
	for alt < -6 {
		alt += 12
	}
	return alt
}

type KeySignature struct {
	Name string
	Mode Mode

	// StaffRoot is the staff index (mod 7) of the tonic.
	StaffRoot int

	// indexed by scale degree, slot 0 unused
	degrees [8]Degree
}

// Degree returns scale degree n (1..7).
func (k *KeySignature) Degree(n int) Degree {
	return k.degrees[n]
}

// Tonic is scale degree 1.
func (k *KeySignature) Tonic() Degree {
	return k.degrees[1]
}

// Natural is the pitch class of Letters[letter] with no accidental.
func Natural(letter int) int {
	return naturals[letter]
}

func letterIndex(letter string) int {
	for i, l := range Letters {
		if l == letter {
			return i
		}
	}
	return -1
}

func build(name string, mode Mode, steps [7]int, rootLetter string, rootPitchClass, rootStaff int) (*KeySignature, error) {
	li := letterIndex(rootLetter)
	if li < 0 {
		return nil, errors.Wrapf(ErrInvalidScale, "%s: bad root letter %q", name, rootLetter)
	}
	if rootStaff < 0 || rootStaff > 6 || li != rootStaff {
		return nil, errors.Wrapf(ErrInvalidScale, "%s: root letter %s does not sit on staff index %d", name, rootLetter, rootStaff)
	}
	if rootPitchClass < 0 || rootPitchClass > 11 {
		return nil, errors.Wrapf(ErrInvalidScale, "%s: pitch class %d out of range", name, rootPitchClass)
	}

	k := &KeySignature{Name: name, Mode: mode, StaffRoot: rootStaff}
	for i := 0; i < 7; i++ {
		d := Degree{
			Letter:     Letters[(li+i)%7],
			PitchClass: (rootPitchClass + steps[i]) % 12,
		}
		if alt := d.Alteration(); alt < -1 || alt > 1 {
			return nil, errors.Wrapf(ErrInvalidScale, "%s: degree %d (%s) needs alteration %d", name, i+1, d.Letter, alt)
		}
		k.degrees[i+1] = d
	}
	return k, nil
}

// BuildMajor builds a major key from the tonic as drawn (rootLetter), the
// tonic's pitch class, and the staff index of the tonic.
func BuildMajor(name, rootLetter string, rootPitchClass, rootStaff int) (*KeySignature, error) {
	return build(name, Major, majorSteps, rootLetter, rootPitchClass, rootStaff)
}

// BuildMinor is BuildMajor for the natural minor.
func BuildMinor(name, rootLetter string, rootPitchClass, rootStaff int) (*KeySignature, error) {
	return build(name, Minor, minorSteps, rootLetter, rootPitchClass, rootStaff)
}

type keyDef struct {
	name       string
	mode       Mode
	letter     string
	pitchClass int
	staff      int
}

var keyDefs = []keyDef{
	{"C", Major, "C", 0, 0},
	{"G", Major, "G", 7, 4},
	{"D", Major, "D", 2, 1},
	{"A", Major, "A", 9, 5},
	{"E", Major, "E", 4, 2},
	{"B", Major, "B", 11, 6},
	{"F#", Major, "F", 6, 3},
	{"C#", Major, "C", 1, 0},
	{"F", Major, "F", 5, 3},
	{"Bb", Major, "B", 10, 6},
	{"Eb", Major, "E", 3, 2},
	{"Ab", Major, "A", 8, 5},
	{"Db", Major, "D", 1, 1},
	{"Gb", Major, "G", 6, 4},
	{"Cb", Major, "C", 11, 0},

	{"Am", Minor, "A", 9, 5},
	{"Em", Minor, "E", 4, 2},
	{"Bm", Minor, "B", 11, 6},
	{"F#m", Minor, "F", 6, 3},
	{"C#m", Minor, "C", 1, 0},
	{"G#m", Minor, "G", 8, 4},
	{"D#m", Minor, "D", 3, 1},
	{"A#m", Minor, "A", 10, 5},
	{"Dm", Minor, "D", 2, 1},
	{"Gm", Minor, "G", 7, 4},
	{"Cm", Minor, "C", 0, 0},
	{"Fm", Minor, "F", 5, 3},
	{"Bbm", Minor, "B", 10, 6},
	{"Ebm", Minor, "E", 3, 2},
	{"Abm", Minor, "A", 8, 5},
}

// Table is an immutable set of key signatures. It is safe for concurrent
// readers.
type Table struct {
	names []string
	keys  map[string]*KeySignature
}

func NewTable() (*Table, error) {
	t := &Table{keys: make(map[string]*KeySignature, len(keyDefs))}
	for _, s := range keyDefs {
		var k *KeySignature
		var err error
		if s.mode == Minor {
			k, err = BuildMinor(s.name, s.letter, s.pitchClass, s.staff)
		} else {
			k, err = BuildMajor(s.name, s.letter, s.pitchClass, s.staff)
		}
		if err != nil {
			return nil, err
		}
		t.names = append(t.names, s.name)
		t.keys[s.name] = k
	}
	return t, nil
}

func (t *Table) Lookup(name string) (*KeySignature, error) {
	k, ok := t.keys[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKey, "%q", name)
	}
	return k, nil
}

// Names lists the key names, majors first.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

func (t *Table) Len() int {
	return len(t.names)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the process-wide table, building it on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := NewTable()
		if err != nil {
			panic(fmt.Sprintf("built-in key signatures are inconsistent: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}
