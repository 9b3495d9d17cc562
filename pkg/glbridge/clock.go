package glbridge

import (
	"time"

	"github.com/james-see/voicebridge/pkg/pattern"
)

// Clock reports the current pattern time in cycles.
type Clock interface {
	Now() pattern.Fraction
}

// CycleClock counts cycles since it was created, at a fixed rate. Elapsed
// time is snapped to whole milliseconds so the reported fractions keep a
// bounded denominator.
type CycleClock struct {
	cps   pattern.Fraction
	start time.Time
	now   func() time.Time
}

// NewCycleClock starts a clock running at cps cycles per second.
func NewCycleClock(cps float64) *CycleClock {
	return &CycleClock{cps: pattern.FromFloat(cps), start: time.Now(), now: time.Now}
}

func (c *CycleClock) Now() pattern.Fraction {
	ms := c.now().Sub(c.start).Milliseconds()
	return pattern.NewFraction(ms, 1000).Mul(c.cps)
}

// FixedClock always reports T.
type FixedClock struct {
	T pattern.Fraction
}

func (c FixedClock) Now() pattern.Fraction { return c.T }
