// combinators.go - pattern algebra: pure/silence/stack/cat/continuous signals
/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package pattern

import "math"

// Pure produces one hap per cycle: whole = [floor(t), floor(t)+1), value v.
func Pure[T any](v T) Pattern[T] {
	return New(func(st State) []Hap[T] {
		cyc := RInt(st.Span.Begin.Floor())
		whole := TimeSpan{Begin: cyc, End: cyc.Add(RInt(1))}
		part, ok := whole.Intersect(st.Span)
		if !ok {
			return nil
		}
		return []Hap[T]{{Whole: &whole, Part: part, Value: v}}
	})
}

// Silence produces no haps for any query.
func Silence[T any]() Pattern[T] {
	return New(func(State) []Hap[T] { return nil })
}

// Signal produces one continuous sample per query, a single hap whose
// Whole is nil and whose value is f evaluated at the midpoint of the
// queried span - the standard treatment for saw/sine/etc.
func Signal[T any](f func(Rational) T) Pattern[T] {
	return New(func(st State) []Hap[T] {
		mid := st.Span.Begin.Add(st.Span.End).Div(RInt(2))
		return []Hap[T]{{Whole: nil, Part: st.Span, Value: f(mid)}}
	})
}

// Stack merges the queries of every pattern in ps; all play simultaneously.
func Stack[T any](ps ...Pattern[T]) Pattern[T] {
	return New(func(st State) []Hap[T] {
		var out []Hap[T]
		for _, p := range ps {
			out = append(out, p.queryRaw(st)...)
		}
		return out
	})
}

// SlowCat plays one whole pattern per cycle, p[cycle mod n], shifted so
// that pattern's own internal time aligns with the cycle it's playing in
// and advances by one cycle each time it recurs (with n = 3, cycle 5
// plays cycle 1 of ps[2], its second turn).
func SlowCat[T any](ps ...Pattern[T]) Pattern[T] {
	n := int64(len(ps))
	if n == 0 {
		return Silence[T]()
	}
	return New(func(st State) []Hap[T] {
		cyc := st.Span.Begin.Floor()
		idx := cyc % n
		if idx < 0 {
			idx += n
		}
		// offset: how many cycles ps[idx] has "skipped" so that its own
		// local cycle advances by exactly one each time it recurs.
		offset := cyc - (cyc-idx)/n
		p := ps[idx]
		off := RInt(offset)
		shifted := st
		shifted.Span = st.Span.WithTime(func(t Rational) Rational { return t.Sub(off) })
		haps := p.queryRaw(shifted)
		out := make([]Hap[T], len(haps))
		for i, h := range haps {
			out[i] = withHapTime(h, func(t Rational) Rational { return t.Add(off) })
		}
		return out
	})
}

// FastCat concatenates n patterns within a single cycle: ps[i] plays on
// [i/n, (i+1)/n). Defined as slowcat(ps).fast(n).
func FastCat[T any](ps ...Pattern[T]) Pattern[T] {
	n := int64(len(ps))
	if n == 0 {
		return Silence[T]()
	}
	return SlowCat(ps...).Fast(RInt(n))
}

// Sequence is an alias for FastCat.
func Sequence[T any](ps ...Pattern[T]) Pattern[T] { return FastCat(ps...) }

// TimeCat concatenates patterns with weighted durations; the weights need
// not sum to 1 - each member occupies weight/total of the cycle.
func TimeCat[T any](weighted []WeightedPattern[T]) Pattern[T] {
	var total Rational
	for _, w := range weighted {
		total = total.Add(w.Weight)
	}
	if total.Num() == 0 {
		return Silence[T]()
	}
	var parts []Pattern[T]
	var cursor Rational
	for _, w := range weighted {
		begin := cursor.Div(total)
		cursor = cursor.Add(w.Weight)
		end := cursor.Div(total)
		parts = append(parts, w.Pattern.Compress(begin, end))
	}
	return Stack(parts...)
}

type WeightedPattern[T any] struct {
	Weight  Rational
	Pattern Pattern[T]
}

// continuous signal families, all f32 value patterns over [0,1) per cycle

// Saw ramps 0 -> 1 across each cycle.
func Saw() Pattern[float64] {
	return Signal(func(t Rational) float64 { return t.CyclePos().Float64() })
}

// Isaw ramps 1 -> 0 across each cycle.
func Isaw() Pattern[float64] {
	return Signal(func(t Rational) float64 { return 1 - t.CyclePos().Float64() })
}

// Tri is a triangle wave: 0->1->0 across each cycle.
func Tri() Pattern[float64] {
	return Signal(func(t Rational) float64 {
		x := t.CyclePos().Float64()
		if x < 0.5 {
			return 2 * x
		}
		return 2 - 2*x
	})
}

// Square is a 50% duty pulse: 0 for the first half-cycle, 1 for the second.
func Square() Pattern[float64] {
	return Signal(func(t Rational) float64 {
		if t.CyclePos().Float64() < 0.5 {
			return 0
		}
		return 1
	})
}

// Sine maps (1+sin(pos*2pi))/2 so the range is [0,1]: pos=0 -> 0.5,
// pos=0.25 -> 1.0.
func Sine() Pattern[float64] {
	return Signal(func(t Rational) float64 {
		return (1 + math.Sin(t.CyclePos().Float64()*2*math.Pi)) / 2
	})
}

func Cosine() Pattern[float64] {
	return Signal(func(t Rational) float64 {
		return (1 + math.Cos(t.CyclePos().Float64()*2*math.Pi)) / 2
	})
}

// Time is the identity continuous signal: its value is the queried time.
func Time() Pattern[Rational] {
	return Signal(func(t Rational) Rational { return t })
}
