// Package pattern provides the cyclic pattern engine that voicings and shader
// parameters are queried from. Time is measured in cycles as exact fractions.
package pattern

import (
	"fmt"
	"math"
	"math/big"
)

// Fraction is an exact rational number of cycles. The zero value is 0.
// Fractions are immutable; every operation returns a new value.
type Fraction struct {
	r *big.Rat
}

var zeroRat = new(big.Rat)

// NewFraction returns num/den. It panics if den is zero.
func NewFraction(num, den int64) Fraction {
	if den == 0 {
		panic("pattern: zero denominator")
	}
	return Fraction{r: big.NewRat(num, den)}
}

// Int returns n as a Fraction.
func Int(n int64) Fraction { return Fraction{r: big.NewRat(n, 1)} }

// FromFloat snaps x to the nearest multiple of 1/(1<<20). Non-finite values
// become 0.
func FromFloat(x float64) Fraction {
	const grid = 1 << 20
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Fraction{}
	}
	if x == math.Trunc(x) && math.Abs(x) < 1<<62 {
		return Int(int64(x))
	}
	r := new(big.Rat).SetFloat64(math.Round(x * grid))
	if r == nil {
		return Fraction{}
	}
	return Fraction{r: r.Quo(r, big.NewRat(grid, 1))}
}

// ParseFraction reads an exact decimal ("0.3", "1.25") or ratio ("2/3").
func ParseFraction(s string) (Fraction, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Fraction{}, fmt.Errorf("invalid number %q", s)
	}
	return Fraction{r: r}, nil
}

func (f Fraction) rat() *big.Rat {
	if f.r == nil {
		return zeroRat
	}
	return f.r
}

// Num returns the numerator, truncated to int64.
func (f Fraction) Num() int64 { return f.rat().Num().Int64() }

// Den returns the denominator, truncated to int64.
func (f Fraction) Den() int64 { return f.rat().Denom().Int64() }

func (f Fraction) Add(g Fraction) Fraction {
	return Fraction{r: new(big.Rat).Add(f.rat(), g.rat())}
}

func (f Fraction) Sub(g Fraction) Fraction {
	return Fraction{r: new(big.Rat).Sub(f.rat(), g.rat())}
}

func (f Fraction) Mul(g Fraction) Fraction {
	return Fraction{r: new(big.Rat).Mul(f.rat(), g.rat())}
}

// Div panics when g is zero.
func (f Fraction) Div(g Fraction) Fraction {
	return Fraction{r: new(big.Rat).Quo(f.rat(), g.rat())}
}

// Cmp returns -1, 0 or 1.
func (f Fraction) Cmp(g Fraction) int { return f.rat().Cmp(g.rat()) }

// Sign returns -1, 0 or 1.
func (f Fraction) Sign() int { return f.rat().Sign() }

func (f Fraction) Eq(g Fraction) bool  { return f.Cmp(g) == 0 }
func (f Fraction) Lt(g Fraction) bool  { return f.Cmp(g) < 0 }
func (f Fraction) Lte(g Fraction) bool { return f.Cmp(g) <= 0 }
func (f Fraction) Gt(g Fraction) bool  { return f.Cmp(g) > 0 }
func (f Fraction) Gte(g Fraction) bool { return f.Cmp(g) >= 0 }

func (f Fraction) IsZero() bool { return f.Sign() == 0 }

func (f Fraction) Min(g Fraction) Fraction {
	if g.Lt(f) {
		return g
	}
	return f
}

func (f Fraction) Max(g Fraction) Fraction {
	if g.Gt(f) {
		return g
	}
	return f
}

// floor rounds towards negative infinity. The denominator of a big.Rat is
// always positive, so Euclidean division is floor division.
func (f Fraction) floor() *big.Int {
	r := f.rat()
	return new(big.Int).Div(r.Num(), r.Denom())
}

// Sam returns the start of the cycle containing f.
func (f Fraction) Sam() Fraction {
	return Fraction{r: new(big.Rat).SetInt(f.floor())}
}

// NextSam returns the start of the following cycle.
func (f Fraction) NextSam() Fraction { return f.Sam().Add(Int(1)) }

// CyclePos returns the position of f within its cycle, in [0, 1).
func (f Fraction) CyclePos() Fraction { return f.Sub(f.Sam()) }

// cycleIndex returns floor(f) mod n, in [0, n).
func (f Fraction) cycleIndex(n int) int {
	return int(new(big.Int).Mod(f.floor(), big.NewInt(int64(n))).Int64())
}

func (f Fraction) Float64() float64 {
	v, _ := f.rat().Float64()
	return v
}

func (f Fraction) String() string {
	r := f.rat()
	if r.IsInt() {
		return r.Num().String()
	}
	return r.String()
}
