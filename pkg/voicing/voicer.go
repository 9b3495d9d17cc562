package voicing

import (
	"errors"
	"fmt"

	"github.com/james-see/voicebridge/pkg/theory"
)

var (
	ErrUnknownChord = errors.New("chord symbol not in dictionary")
	ErrNoVoicing    = errors.New("no voicing fits the range")
)

// Range bounds the notes of a voicing, inclusive.
type Range struct {
	Low  theory.Note
	High theory.Note
}

// DefaultRange is F3 to A4.
var DefaultRange = Range{Low: theory.MustParseNote("F3"), High: theory.MustParseNote("A4")}

// ParseRange parses a pair of note names such as "C3", "C5".
func ParseRange(low, high string) (Range, error) {
	lo, err := theory.ParseNote(low)
	if err != nil {
		return Range{}, fmt.Errorf("range low: %w", err)
	}
	hi, err := theory.ParseNote(high)
	if err != nil {
		return Range{}, fmt.Errorf("range high: %w", err)
	}
	if hi < lo {
		return Range{}, fmt.Errorf("range %s..%s is inverted", low, high)
	}
	return Range{Low: lo, High: hi}, nil
}

func (r Range) String() string { return r.Low.String() + ".." + r.High.String() }

// Request describes one voicing lookup.
type Request struct {
	Chord      string
	Dictionary Dictionary
	Range      Range
	Picker     Picker
	Last       Voicing
}

// DictionaryVoicing voices req.Chord: the dictionary entry for the chord's
// quality, placed at every position inside the range, handed to the picker.
func DictionaryVoicing(req Request) (Voicing, error) {
	options, err := InRange(req.Chord, req.Dictionary, req.Range)
	if err != nil {
		return nil, err
	}
	pick := req.Picker
	if pick == nil {
		pick = MinTopNoteDiff
	}
	return pick(options, req.Last), nil
}

// InRange lists every placement of the chord's dictionary voicings that fits
// the range, in dictionary order and then from low to high.
func InRange(chord string, dict Dictionary, r Range) ([]Voicing, error) {
	c, err := theory.ParseChord(chord)
	if err != nil {
		return nil, err
	}
	shapes, ok := dict[c.Symbol]
	if !ok {
		shapes, ok = dict[theory.Canonical(c.Symbol)]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChord, chord)
	}

	var options []Voicing
	for _, shape := range shapes {
		ivs, err := theory.ParseIntervals(shape)
		if err != nil {
			return nil, fmt.Errorf("voicing %q for %q: %w", shape, c.Symbol, err)
		}
		if len(ivs) == 0 {
			continue
		}
		bottom := (c.Root + ivs[0]) % 12
		span := ivs[len(ivs)-1] - ivs[0]
		for start := r.Low; start+theory.Note(span) <= r.High; start++ {
			if start.Chroma() != bottom {
				continue
			}
			v := make(Voicing, len(ivs))
			for i, iv := range ivs {
				v[i] = start + theory.Note(iv-ivs[0])
			}
			options = append(options, v)
		}
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoVoicing, chord, r)
	}
	return options, nil
}

// Voicer turns a chord symbol into notes, given the previous voicing.
type Voicer interface {
	Voice(chord string, last Voicing, r Range) (Voicing, error)
}

// DictionaryVoicer is a Voicer over a dictionary and picker. The zero value
// uses Lefthand and MinTopNoteDiff.
type DictionaryVoicer struct {
	Dictionary Dictionary
	Picker     Picker
}

func (d DictionaryVoicer) Voice(chord string, last Voicing, r Range) (Voicing, error) {
	dict := d.Dictionary
	if dict == nil {
		dict = Lefthand
	}
	return DictionaryVoicing(Request{
		Chord:      chord,
		Dictionary: dict,
		Range:      r,
		Picker:     d.Picker,
		Last:       last,
	})
}

// NewVoicer builds a DictionaryVoicer from registered names.
func NewVoicer(dictionary, picker string) (DictionaryVoicer, error) {
	d, ok := LookupDictionary(dictionary)
	if !ok {
		return DictionaryVoicer{}, fmt.Errorf("unknown dictionary %q", dictionary)
	}
	p, ok := LookupPicker(picker)
	if !ok {
		return DictionaryVoicer{}, fmt.Errorf("unknown picker %q", picker)
	}
	return DictionaryVoicer{Dictionary: d, Picker: p}, nil
}
