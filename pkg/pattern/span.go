package pattern

import "fmt"

// TimeSpan is a half-open interval of cycles.
type TimeSpan struct {
	Begin Fraction
	End   Fraction
}

// Span is shorthand for TimeSpan{Begin: b, End: e}.
func Span(b, e Fraction) TimeSpan { return TimeSpan{Begin: b, End: e} }

// SpanCycles splits the span at cycle boundaries. A zero-width span is
// returned as is; a span with End before Begin yields nothing.
func (s TimeSpan) SpanCycles() []TimeSpan {
	if s.Begin.Eq(s.End) {
		return []TimeSpan{s}
	}
	var spans []TimeSpan
	for b := s.Begin; b.Lt(s.End); {
		next := b.NextSam().Min(s.End)
		spans = append(spans, TimeSpan{Begin: b, End: next})
		b = next
	}
	return spans
}

// WithTime applies fn to both ends of the span.
func (s TimeSpan) WithTime(fn func(Fraction) Fraction) TimeSpan {
	return TimeSpan{Begin: fn(s.Begin), End: fn(s.End)}
}

// Intersection returns the overlap of s and o. Touching spans only intersect
// when one of them is zero-width.
func (s TimeSpan) Intersection(o TimeSpan) (TimeSpan, bool) {
	b := s.Begin.Max(o.Begin)
	e := s.End.Min(o.End)
	if b.Gt(e) {
		return TimeSpan{}, false
	}
	if b.Eq(e) {
		if b.Eq(s.End) && s.Begin.Lt(s.End) {
			return TimeSpan{}, false
		}
		if b.Eq(o.End) && o.Begin.Lt(o.End) {
			return TimeSpan{}, false
		}
	}
	return TimeSpan{Begin: b, End: e}, true
}

// Contains reports whether o lies within s.
func (s TimeSpan) Contains(o TimeSpan) bool {
	return s.Begin.Lte(o.Begin) && o.End.Lte(s.End)
}

func (s TimeSpan) Eq(o TimeSpan) bool { return s.Begin.Eq(o.Begin) && s.End.Eq(o.End) }

func (s TimeSpan) String() string { return fmt.Sprintf("%s → %s", s.Begin, s.End) }

// cycleSpan returns the whole cycle containing t.
func cycleSpan(t Fraction) TimeSpan {
	return TimeSpan{Begin: t.Sam(), End: t.NextSam()}
}

// Hap is a single event: a value active over Whole, of which Part is the
// fragment visible to the current query. A nil Whole marks a continuous value.
type Hap struct {
	Whole *TimeSpan
	Part  TimeSpan
	Value any
}

// HasOnset reports whether the hap's part starts where its whole starts.
func (h Hap) HasOnset() bool {
	return h.Whole != nil && h.Whole.Begin.Eq(h.Part.Begin)
}

// WholeOrPart returns the whole span if there is one, otherwise the part.
func (h Hap) WholeOrPart() TimeSpan {
	if h.Whole != nil {
		return *h.Whole
	}
	return h.Part
}

// WithSpan applies fn to the whole and part spans.
func (h Hap) WithSpan(fn func(TimeSpan) TimeSpan) Hap {
	out := Hap{Part: fn(h.Part), Value: h.Value}
	if h.Whole != nil {
		w := fn(*h.Whole)
		out.Whole = &w
	}
	return out
}

func (h Hap) String() string {
	if h.Whole == nil {
		return fmt.Sprintf("~(%s): %v", h.Part, h.Value)
	}
	return fmt.Sprintf("(%s | %s): %v", *h.Whole, h.Part, h.Value)
}
