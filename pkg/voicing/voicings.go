package voicing

import (
	"fmt"
	"sync"

	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/rs/zerolog"
)

// Option configures a Voiced pattern.
type Option func(*Voiced)

// WithRange sets the register the voicings are placed in.
func WithRange(r Range) Option { return func(v *Voiced) { v.rng = r } }

// WithVoicer replaces the default lefthand/minTopNoteDiff voicer.
func WithVoicer(vc Voicer) Option { return func(v *Voiced) { v.voicer = vc } }

// WithLogger sets the logger used by the default error handler.
func WithLogger(l zerolog.Logger) Option { return func(v *Voiced) { v.log = l } }

// WithErrorHandler is called for each chord hap that could not be voiced.
// Such haps contribute no notes.
func WithErrorHandler(fn func(pattern.Hap, error)) Option {
	return func(v *Voiced) { v.onError = fn }
}

// Voiced is a chord pattern turned into note stacks. It owns the last
// voicing it computed; every query reads and overwrites it in hap order, so
// querying out of chronological order continues from whatever was voiced
// last rather than from the chord actually preceding the span.
type Voiced struct {
	src     *pattern.Pattern
	rng     Range
	voicer  Voicer
	log     zerolog.Logger
	onError func(pattern.Hap, error)

	mu   sync.Mutex
	last Voicing

	pat *pattern.Pattern
}

// NewVoicings wraps src, whose hap values are chord symbols.
func NewVoicings(src *pattern.Pattern, opts ...Option) *Voiced {
	v := &Voiced{
		src:    src,
		rng:    DefaultRange,
		voicer: DictionaryVoicer{},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.onError == nil {
		v.onError = func(h pattern.Hap, err error) {
			v.log.Warn().Err(err).Str("part", h.Part.String()).Msg("chord not voiced")
		}
	}
	v.pat = pattern.New(v.query)
	return v
}

// Voicings returns src with every chord replaced by a stack of its voicing.
func Voicings(src *pattern.Pattern, opts ...Option) *pattern.Pattern {
	return NewVoicings(src, opts...).Pattern()
}

// Pattern returns the voiced pattern.
func (v *Voiced) Pattern() *pattern.Pattern { return v.pat }

// Last returns a copy of the most recently computed voicing.
func (v *Voiced) Last() Voicing {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append(Voicing(nil), v.last...)
}

// Reset forgets the last voicing, so the next chord is voiced independently.
func (v *Voiced) Reset() {
	v.mu.Lock()
	v.last = nil
	v.mu.Unlock()
}

// VoicedChord is one chord hap of the source and what it was voiced to.
type VoicedChord struct {
	Hap   pattern.Hap
	Notes Voicing
	Err   error
}

// QueryChords voices the source chords over span, in hap order. It advances
// the stored voicing exactly as querying Pattern over the same span does, but
// keeps each chord's notes together, so chords sharing a span stay apart.
// The error handler is not called.
func (v *Voiced) QueryChords(span pattern.TimeSpan) []VoicedChord {
	haps := v.src.Query(span)
	out := make([]VoicedChord, 0, len(haps))
	for _, h := range haps {
		notes, err := v.next(h.Value)
		out = append(out, VoicedChord{Hap: h, Notes: notes, Err: err})
	}
	return out
}

func (v *Voiced) query(span pattern.TimeSpan) []pattern.Hap {
	var out []pattern.Hap
	for _, c := range v.QueryChords(span) {
		h := c.Hap
		if c.Err != nil {
			v.onError(h, c.Err)
			continue
		}
		layers := make([]*pattern.Pattern, len(c.Notes))
		for i, n := range c.Notes {
			layers[i] = pattern.Steady(n)
		}
		for _, nh := range pattern.Stack(layers...).Query(h.Part) {
			out = append(out, pattern.Hap{Whole: h.Whole, Part: h.Part, Value: nh.Value})
		}
	}
	return out
}

// next voices one chord against the stored voicing and stores the result.
func (v *Voiced) next(value any) (Voicing, error) {
	chord, err := chordSymbol(value)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	notes, err := v.voicer.Voice(chord, v.last, v.rng)
	if err != nil {
		return nil, err
	}
	v.last = notes
	return notes, nil
}

func chordSymbol(value any) (string, error) {
	switch c := value.(type) {
	case string:
		return c, nil
	case fmt.Stringer:
		return c.String(), nil
	}
	return "", fmt.Errorf("%w: %v (%T)", ErrUnknownChord, value, value)
}
