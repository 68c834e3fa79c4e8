// rational.go - exact rational time arithmetic for the pattern runtime
/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package pattern

import (
	"math"
	"strconv"
)

// Rational is an exact fraction used for every time value inside the
// pattern runtime: hap boundaries, cycle positions, weights. Floating
// point is never used here so that fastcat/slowcat/stack compose without
// drift across arbitrarily long schedules. The zero value reads as 0:
// every accessor normalizes the uninitialized denominator to 1.
type Rational struct {
	n, d int64
}

func (r Rational) norm() Rational {
	if r.d == 0 {
		r.d = 1
	}
	return r
}

// R builds a Rational n/d in lowest terms, d > 0.
func R(n, d int64) Rational {
	if d == 0 {
		d = 1
	}
	if d < 0 {
		n, d = -n, -d
	}
	g := gcd(abs64(n), d)
	if g == 0 {
		g = 1
	}
	return Rational{n: n / g, d: d / g}
}

// RInt builds a whole-number Rational.
func RInt(n int64) Rational { return Rational{n: n, d: 1} }

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func (r Rational) Num() int64 { return r.norm().n }
func (r Rational) Den() int64 { return r.norm().d }

func (r Rational) Add(o Rational) Rational {
	r, o = r.norm(), o.norm()
	return R(r.n*o.d+o.n*r.d, r.d*o.d)
}

func (r Rational) Sub(o Rational) Rational {
	r, o = r.norm(), o.norm()
	return R(r.n*o.d-o.n*r.d, r.d*o.d)
}

func (r Rational) Mul(o Rational) Rational {
	r, o = r.norm(), o.norm()
	return R(r.n*o.n, r.d*o.d)
}

func (r Rational) Div(o Rational) Rational {
	r, o = r.norm(), o.norm()
	return R(r.n*o.d, r.d*o.n)
}

func (r Rational) Neg() Rational {
	r = r.norm()
	return R(-r.n, r.d)
}

func (r Rational) Cmp(o Rational) int {
	r, o = r.norm(), o.norm()
	lhs := r.n * o.d
	rhs := o.n * r.d
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

func (r Rational) Lt(o Rational) bool  { return r.Cmp(o) < 0 }
func (r Rational) Lte(o Rational) bool { return r.Cmp(o) <= 0 }
func (r Rational) Gt(o Rational) bool  { return r.Cmp(o) > 0 }
func (r Rational) Gte(o Rational) bool { return r.Cmp(o) >= 0 }
func (r Rational) Eq(o Rational) bool  { return r.Cmp(o) == 0 }

// Floor returns the greatest integer <= r (cycle index containing r).
func (r Rational) Floor() int64 {
	r = r.norm()
	q := r.n / r.d
	if r.n%r.d != 0 && (r.n < 0) != (r.d < 0) {
		q--
	}
	return q
}

// CyclePos returns r's fractional position within its containing cycle,
// i.e. r - floor(r), always in [0, 1).
func (r Rational) CyclePos() Rational {
	return r.Sub(RInt(r.Floor()))
}

func (r Rational) Float64() float64 {
	r = r.norm()
	return float64(r.n) / float64(r.d)
}

func (r Rational) String() string {
	r = r.norm()
	if r.d == 1 {
		return strconv.FormatInt(r.n, 10)
	}
	return strconv.FormatInt(r.n, 10) + "/" + strconv.FormatInt(r.d, 10)
}

// fromFloatDen bounds the denominator FromFloat64 produces.
const fromFloatDen = 1 << 20

// FromFloat64 approximates f as a rational with a bounded denominator
// (f rounded to the nearest multiple of 1/2^20, then reduced), used only
// at boundaries where a caller hands in a float (sample-rate derived
// durations, UI sliders) - never inside the combinator algebra. NaN and
// infinities convert to 0.
func FromFloat64(f float64) Rational {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return RInt(0)
	}
	return R(int64(math.Round(f*fromFloatDen)), fromFloatDen)
}

func MinR(a, b Rational) Rational {
	if a.Lte(b) {
		return a
	}
	return b
}

func MaxR(a, b Rational) Rational {
	if a.Gte(b) {
		return a
	}
	return b
}
