// Package theory converts between note names, MIDI numbers, intervals and
// chord symbols.
package theory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidNote = errors.New("invalid note name")

// Note is a MIDI note number. C4 is 60.
type Note int

var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
	letterPC   = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
)

// Chroma returns the pitch class, 0 for C through 11 for B.
func (n Note) Chroma() int { return mod12(int(n)) }

// Octave returns the scientific pitch octave.
func (n Note) Octave() int { return floorDiv(int(n), 12) - 1 }

// String spells the note with sharps, e.g. "F#3".
func (n Note) String() string {
	return sharpNames[n.Chroma()] + strconv.Itoa(n.Octave())
}

// NameWithFlats spells the note with flats, e.g. "Gb3".
func (n Note) NameWithFlats() string {
	return flatNames[n.Chroma()] + strconv.Itoa(n.Octave())
}

// ParseNote parses names like "C4", "eb3", "F#2" or "Bbb1". The octave
// defaults to 4 when omitted.
func ParseNote(s string) (Note, error) {
	pc, rest, err := parsePitchClass(s)
	if err != nil {
		return 0, err
	}
	octave := 4
	if rest != "" {
		octave, err = strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNote, s)
		}
	}
	return Note((octave+1)*12 + pc), nil
}

// MustParseNote is like ParseNote but panics on error.
func MustParseNote(s string) Note {
	n, err := ParseNote(s)
	if err != nil {
		panic(err)
	}
	return n
}

// ParsePitchClass parses a note letter with accidentals and returns its
// chroma. Trailing text is returned unparsed.
func ParsePitchClass(s string) (chroma int, rest string, err error) {
	pc, rest, err := parsePitchClass(s)
	return mod12(pc), rest, err
}

// parsePitchClass returns the letter's pitch class plus accidentals without
// wrapping, so "B#" is 12 and "Cb" is -1.
func parsePitchClass(s string) (int, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("%w: empty", ErrInvalidNote)
	}
	pc, ok := letterPC[upper(s[0])]
	if !ok {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidNote, s)
	}
	i := 1
	for ; i < len(s); i++ {
		switch s[i] {
		case '#':
			pc++
			continue
		case 'b':
			pc--
			continue
		}
		break
	}
	return pc, s[i:], nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
