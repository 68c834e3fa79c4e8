// pattern.go - the generic lazy pattern type and its core transforms
//
// A Pattern[T] is nothing but a query function: ask it about a span of
// cycle time and it answers with the haps active there. Every combinator
// returns a new closure over its inputs; no pattern ever holds state.
/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package pattern

// State is the input to a pattern query: the span of cycle time being
// asked about, plus the per-query controls (random seed) that keep
// choice/degrade combinators deterministic.
type State struct {
	Span TimeSpan
	Seed uint64
}

// Pattern[T] is a lazy query function: given a State, return the haps
// active within State.Span. Patterns are immutable; every combinator
// returns a new Pattern closing over its inputs.
type Pattern[T any] struct {
	query func(State) []Hap[T]
}

func New[T any](q func(State) []Hap[T]) Pattern[T] {
	return Pattern[T]{query: q}
}

// Query runs the pattern over an arbitrary span, splitting it at cycle
// boundaries first (per-cycle querying is the contract every combinator
// beneath this one assumes).
func (p Pattern[T]) Query(st State) []Hap[T] {
	if p.query == nil {
		return nil
	}
	var out []Hap[T]
	for _, cs := range st.Span.CycleSpans() {
		out = append(out, p.query(State{Span: cs, Seed: st.Seed})...)
	}
	return out
}

// queryRaw bypasses the per-cycle split, used internally by combinators
// that already guarantee a single-cycle span (fastcat/timecat members).
func (p Pattern[T]) queryRaw(st State) []Hap[T] {
	if p.query == nil {
		return nil
	}
	return p.query(st)
}

// WithQueryTime returns a pattern that maps the queried span through f
// before delegating, and WithHapTime maps the resulting haps' spans
// through g - together these implement fast/slow/compress style time
// warps (query forward through the inverse map, haps back through the
// forward map).
func (p Pattern[T]) WithTime(queryF, hapF func(Rational) Rational) Pattern[T] {
	return New(func(st State) []Hap[T] {
		warped := st
		warped.Span = st.Span.WithTime(queryF)
		haps := p.Query(warped)
		out := make([]Hap[T], len(haps))
		for i, h := range haps {
			out[i] = withHapTime(h, hapF)
		}
		return out
	})
}

// Fast speeds the pattern up by factor k (k > 0): k cycles of the
// original play in one cycle of the result.
func (p Pattern[T]) Fast(k Rational) Pattern[T] {
	if k.Num() == 0 {
		return Silence[T]()
	}
	if k.Num() < 0 {
		return p.Fast(k.Neg()).Rev()
	}
	return p.WithTime(
		func(t Rational) Rational { return t.Mul(k) },
		func(t Rational) Rational { return t.Div(k) },
	)
}

// Slow slows the pattern down by factor k: one cycle of the original
// stretches across k cycles of the result.
func (p Pattern[T]) Slow(k Rational) Pattern[T] {
	if k.Num() == 0 {
		return Silence[T]()
	}
	return p.Fast(R(k.Den(), k.Num()))
}

// Rev reverses each cycle of the pattern in place.
func (p Pattern[T]) Rev() Pattern[T] {
	return New(func(st State) []Hap[T] {
		cycle := RInt(st.Span.Begin.Floor())
		nextCycle := cycle.Add(RInt(1))
		reflect := func(t Rational) Rational {
			return cycle.Add(nextCycle).Sub(t)
		}
		reflected := st
		reflected.Span = TimeSpan{Begin: reflect(st.Span.End), End: reflect(st.Span.Begin)}
		haps := p.queryRaw(reflected)
		out := make([]Hap[T], len(haps))
		for i, h := range haps {
			out[i] = withHapTime(h, reflect)
		}
		return out
	})
}

// Compress squeezes one full cycle of p into the [b,e) slice of every
// cycle of the result; b and e are fractions of a cycle, 0 <= b < e <= 1.
func (p Pattern[T]) Compress(b, e Rational) Pattern[T] {
	if b.Gt(e) || b.Lt(RInt(0)) || e.Gt(RInt(1)) || b.Eq(e) {
		return Silence[T]()
	}
	dur := e.Sub(b)
	return p.FastGap(R(dur.Den(), dur.Num())).LateBy(b)
}

// FastGap behaves like Fast but leaves a gap rather than repeating: it
// squeezes one cycle of p into the first 1/k of the result's cycle and
// produces nothing for the remainder, matching the Strudel/Tidal
// "_fastGap" building block compress is defined in terms of.
func (p Pattern[T]) FastGap(k Rational) Pattern[T] {
	if k.Lte(RInt(0)) {
		return Silence[T]()
	}
	munge := func(t Rational) Rational {
		cyc := RInt(t.Floor())
		pos := t.CyclePos()
		scaled := MinR(pos.Mul(k), RInt(1))
		return cyc.Add(scaled)
	}
	return New(func(st State) []Hap[T] {
		cyc := RInt(st.Span.Begin.Floor())
		nextCyc := cyc.Add(RInt(1))
		// Hap times map back relative to the queried cycle, so an end on
		// the next cycle boundary lands at cyc+1/k.
		unmunge := func(t Rational) Rational {
			return cyc.Add(t.Sub(cyc).Div(k))
		}
		qb := MinR(munge(st.Span.Begin), nextCyc)
		qe := MinR(munge(st.Span.End), nextCyc)
		if qb.Gte(qe) && !st.Span.Begin.Eq(st.Span.End) {
			return nil
		}
		inner := st
		inner.Span = TimeSpan{Begin: qb, End: qe}
		haps := p.queryRaw(inner)
		out := make([]Hap[T], 0, len(haps))
		for _, h := range haps {
			out = append(out, withHapTime(h, unmunge))
		}
		return out
	})
}

// LateBy shifts the pattern later in time by amount d (a fraction of a
// cycle or more); EarlyBy is its inverse.
func (p Pattern[T]) LateBy(d Rational) Pattern[T] {
	return p.WithTime(
		func(t Rational) Rational { return t.Sub(d) },
		func(t Rational) Rational { return t.Add(d) },
	)
}

func (p Pattern[T]) EarlyBy(d Rational) Pattern[T] {
	return p.LateBy(d.Neg())
}

// Filter keeps only haps for which keep returns true.
func (p Pattern[T]) Filter(keep func(Hap[T]) bool) Pattern[T] {
	return New(func(st State) []Hap[T] {
		haps := p.queryRaw(st)
		out := haps[:0:0]
		for _, h := range haps {
			if keep(h) {
				out = append(out, h)
			}
		}
		return out
	})
}

// FilterOnsets keeps only haps whose Part begins at their Whole's start,
// i.e. drops the "continuation" fragments a query window can produce for
// haps that began before it.
func (p Pattern[T]) FilterOnsets() Pattern[T] {
	return p.Filter(func(h Hap[T]) bool { return h.HasOnset() })
}

// Map transforms every hap's value.
func Map[T, U any](p Pattern[T], f func(T) U) Pattern[U] {
	return New(func(st State) []Hap[U] {
		haps := p.queryRaw(st)
		out := make([]Hap[U], len(haps))
		for i, h := range haps {
			out[i] = Hap[U]{Whole: h.Whole, Part: h.Part, Value: f(h.Value), Context: h.Context}
		}
		return out
	})
}
