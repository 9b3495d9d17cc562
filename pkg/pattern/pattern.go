package pattern

// Pattern is an immutable function from a query span to the haps overlapping
// it. Combinators return new patterns wrapping the query of their source.
type Pattern struct {
	query func(TimeSpan) []Hap
}

// New wraps a query function.
func New(query func(TimeSpan) []Hap) *Pattern {
	return &Pattern{query: query}
}

// Query returns the haps overlapping span.
func (p *Pattern) Query(span TimeSpan) []Hap {
	if p == nil || p.query == nil {
		return nil
	}
	return p.query(span)
}

// QueryArc queries the span [b, e).
func (p *Pattern) QueryArc(b, e Fraction) []Hap {
	return p.Query(Span(b, e))
}

// FirstCycle returns the haps of cycle zero.
func (p *Pattern) FirstCycle() []Hap {
	return p.QueryArc(Int(0), Int(1))
}

// Silence has no haps.
func Silence() *Pattern {
	return New(func(TimeSpan) []Hap { return nil })
}

// Pure repeats v once per cycle.
func Pure(v any) *Pattern {
	return New(func(span TimeSpan) []Hap {
		var haps []Hap
		for _, part := range span.SpanCycles() {
			whole := cycleSpan(part.Begin)
			haps = append(haps, Hap{Whole: &whole, Part: part, Value: v})
		}
		return haps
	})
}

// Steady is a continuous value: every query yields exactly one hap with no
// whole, covering the query span.
func Steady(v any) *Pattern {
	return New(func(span TimeSpan) []Hap {
		return []Hap{{Part: span, Value: v}}
	})
}

// Stack plays all patterns at once, in argument order.
func Stack(pats ...*Pattern) *Pattern {
	return New(func(span TimeSpan) []Hap {
		var haps []Hap
		for _, p := range pats {
			haps = append(haps, p.Query(span)...)
		}
		return haps
	})
}

// SplitQueries splits every query at cycle boundaries.
func (p *Pattern) SplitQueries() *Pattern {
	return New(func(span TimeSpan) []Hap {
		var haps []Hap
		for _, s := range span.SpanCycles() {
			haps = append(haps, p.Query(s)...)
		}
		return haps
	})
}

// WithQueryTime transforms the query span before it reaches p.
func (p *Pattern) WithQueryTime(fn func(Fraction) Fraction) *Pattern {
	return New(func(span TimeSpan) []Hap {
		return p.Query(span.WithTime(fn))
	})
}

// WithHapTime transforms the spans of every hap p returns.
func (p *Pattern) WithHapTime(fn func(Fraction) Fraction) *Pattern {
	return New(func(span TimeSpan) []Hap {
		haps := p.Query(span)
		for i := range haps {
			haps[i] = haps[i].WithSpan(func(s TimeSpan) TimeSpan { return s.WithTime(fn) })
		}
		return haps
	})
}

// WithValue maps fn over hap values.
func (p *Pattern) WithValue(fn func(any) any) *Pattern {
	return New(func(span TimeSpan) []Hap {
		haps := p.Query(span)
		for i := range haps {
			haps[i].Value = fn(haps[i].Value)
		}
		return haps
	})
}

// Fast speeds p up by factor. A factor of zero or less yields silence.
func (p *Pattern) Fast(factor Fraction) *Pattern {
	if factor.Sign() <= 0 {
		return Silence()
	}
	return p.WithQueryTime(func(t Fraction) Fraction { return t.Mul(factor) }).
		WithHapTime(func(t Fraction) Fraction { return t.Div(factor) })
}

// Slow slows p down by factor.
func (p *Pattern) Slow(factor Fraction) *Pattern {
	if factor.Sign() <= 0 {
		return Silence()
	}
	return p.Fast(Int(1).Div(factor))
}

// Slowcat plays one pattern per cycle, in turn. Each pattern keeps its own
// cycle count, so the n-th pattern sees cycles 0, 1, 2... on its turns.
func Slowcat(pats ...*Pattern) *Pattern {
	if len(pats) == 0 {
		return Silence()
	}
	n := Int(int64(len(pats)))
	return New(func(span TimeSpan) []Hap {
		cyc := span.Begin.Sam()
		i := cyc.cycleIndex(len(pats))
		offset := cyc.Sub(span.Begin.Div(n).Sam())
		return pats[i].
			WithHapTime(func(t Fraction) Fraction { return t.Add(offset) }).
			Query(span.WithTime(func(t Fraction) Fraction { return t.Sub(offset) }))
	}).SplitQueries()
}

// Fastcat squeezes all patterns into one cycle.
func Fastcat(pats ...*Pattern) *Pattern {
	if len(pats) == 0 {
		return Silence()
	}
	return Slowcat(pats...).Fast(Int(int64(len(pats))))
}

// Sequence is Fastcat over plain values and patterns.
func Sequence(values ...any) *Pattern {
	pats := make([]*Pattern, len(values))
	for i, v := range values {
		pats[i] = Reify(v)
	}
	return Fastcat(pats...)
}

// Reify returns v if it is already a pattern, otherwise Pure(v).
func Reify(v any) *Pattern {
	if p, ok := v.(*Pattern); ok {
		return p
	}
	return Pure(v)
}
