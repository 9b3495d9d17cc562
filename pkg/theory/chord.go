package theory

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidChord = errors.New("invalid chord symbol")

// Chord is a tokenized chord symbol.
type Chord struct {
	Root   int    // pitch class of the root
	Tonic  string // root as written, e.g. "Bb"
	Symbol string // quality as written, e.g. "maj7"
}

// ParseChord splits a symbol such as "Cmaj7" or "F#m7b5" into root and quality.
func ParseChord(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	root, rest, err := ParsePitchClass(s)
	if err != nil {
		return Chord{}, fmt.Errorf("%w: %q", ErrInvalidChord, s)
	}
	return Chord{
		Root:   root,
		Tonic:  s[:len(s)-len(rest)],
		Symbol: rest,
	}, nil
}

func (c Chord) String() string { return c.Tonic + c.Symbol }

// ChordAliases maps the canonical dictionary symbols to the spellings that
// mean the same quality.
var ChordAliases = map[string][]string{
	"M":    {"", "maj", "major", "Δ"},
	"m":    {"-", "min", "mi"},
	"o":    {"dim", "°"},
	"aug":  {"+", "#5"},
	"7":    {"dom", "dom7"},
	"^7":   {"maj7", "M7", "Maj7", "ma7", "Δ7"},
	"^9":   {"maj9", "M9", "Δ9"},
	"m7":   {"-7", "min7", "mi7"},
	"m9":   {"-9", "min9"},
	"m7b5": {"ø", "ø7", "h", "h7", "-7b5", "min7b5"},
	"o7":   {"dim7", "°7"},
	"69":   {"6/9", "M69"},
	"6":    {"M6", "maj6"},
	"m6":   {"-6", "min6"},
	"mM7":  {"m^7", "-^7", "mMaj7", "minmaj7", "-M7"},
	"7b9":  {"7(b9)"},
	"7#9":  {"7(#9)"},
	"7#11": {"7(#11)"},
	"7b13": {"7(b13)"},
}

// Canonical returns the canonical symbol for an alias, or the symbol itself
// when it is not a known alias.
func Canonical(symbol string) string {
	if _, ok := ChordAliases[symbol]; ok {
		return symbol
	}
	for canon, aliases := range ChordAliases {
		for _, a := range aliases {
			if a == symbol {
				return canon
			}
		}
	}
	return symbol
}
