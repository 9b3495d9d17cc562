package voicing

import (
	"sort"

	"github.com/james-see/voicebridge/pkg/theory"
)

// Picker chooses one of the candidate voicings, given the previous voicing
// (nil on the first call). options is never empty.
type Picker func(options []Voicing, last Voicing) Voicing

// MinTopNoteDiff picks the candidate whose top note moves least from the top
// note of last. Without a previous voicing it picks the first candidate; ties
// go to the earlier candidate.
func MinTopNoteDiff(options []Voicing, last Voicing) Voicing {
	best := options[0]
	if len(last) == 0 {
		return best
	}
	top := last.Top()
	diff := func(v Voicing) int {
		d := int(v.Top() - top)
		if d < 0 {
			return -d
		}
		return d
	}
	for _, v := range options[1:] {
		if diff(v) < diff(best) {
			best = v
		}
	}
	return best
}

// First always picks the first candidate.
func First(options []Voicing, _ Voicing) Voicing {
	return options[0]
}

var pickers = map[string]Picker{
	"minTopNoteDiff": MinTopNoteDiff,
	"first":          First,
}

// LookupPicker returns a picker by name.
func LookupPicker(name string) (Picker, bool) {
	p, ok := pickers[name]
	return p, ok
}

// PickerNames returns the known picker names, sorted.
func PickerNames() []string {
	names := make([]string, 0, len(pickers))
	for name := range pickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Voicing is an ordered set of notes, bottom to top.
type Voicing []theory.Note

// Top returns the highest note. It panics on an empty voicing.
func (v Voicing) Top() theory.Note { return v[len(v)-1] }

// Names spells the notes with sharps.
func (v Voicing) Names() []string {
	out := make([]string, len(v))
	for i, n := range v {
		out[i] = n.String()
	}
	return out
}

func (v Voicing) Equal(o Voicing) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}
