// rand.go - deterministic pattern-local randomness
//
// Every "random" combinator (degradeBy, choose) draws from a hash of
// (pattern seed, hap time, choice path id) rather than a stateful PRNG,
// so that repeated or overlapping queries of the same span are
// bit-identical - required for UI scrubbing.
/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package pattern

// hash64 mixes three integers into one well-distributed 64-bit value.
// This is the SplitMix64 finalizer (Vigna), applied after folding all
// three inputs together - cheap, allocation-free, good avalanche.
func hash64(seed, hapTimeBits, pathID uint64) uint64 {
	x := seed ^ (hapTimeBits + 0x9e3779b97f4a7c15 + (seed << 6) + (seed >> 2))
	x ^= pathID + 0x9e3779b97f4a7c15 + (x << 6) + (x >> 2)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// timeBits converts a Rational into a stable bit pattern for hashing -
// the numerator/denominator pair packed together, not a lossy float
// conversion, so identical rationals always hash identically.
func timeBits(t Rational) uint64 {
	return uint64(t.Num())*0x100000001b3 ^ uint64(t.Den())
}

// randomUnit returns a value in [0,1) deterministic in (seed, t, pathID).
func randomUnit(seed uint64, t Rational, pathID uint64) float64 {
	h := hash64(seed, timeBits(t), pathID)
	return float64(h>>11) / float64(1<<53)
}

// DegradeBy removes haps whose per-hap random draw falls under prob,
// keeping the rest; it requires the underlying pattern to support a rest
// value at conversion time when used from mini-notation (see pattern/mini),
// but at this algebra layer it is just a Filter over the query's own haps.
func DegradeBy[T any](p Pattern[T], prob float64, pathID uint64) Pattern[T] {
	return New(func(st State) []Hap[T] {
		haps := p.queryRaw(st)
		out := haps[:0:0]
		for _, h := range haps {
			t := h.Part.Begin
			if h.Whole != nil {
				t = h.Whole.Begin
			}
			if randomUnit(st.Seed, t, pathID) >= prob {
				out = append(out, h)
			}
		}
		return out
	})
}

// UnDegradeBy is DegradeBy's complement: keeps haps that DegradeBy would
// have dropped. Useful for splitting one pattern into two disjoint halves.
func UnDegradeBy[T any](p Pattern[T], prob float64, pathID uint64) Pattern[T] {
	return New(func(st State) []Hap[T] {
		haps := p.queryRaw(st)
		out := haps[:0:0]
		for _, h := range haps {
			t := h.Part.Begin
			if h.Whole != nil {
				t = h.Whole.Begin
			}
			if randomUnit(st.Seed, t, pathID) < prob {
				out = append(out, h)
			}
		}
		return out
	})
}

// Choose picks one of ps per query, deterministically keyed by the
// queried span's start time and pathID - every listener asking about the
// same span sees the same choice.
func Choose[T any](pathID uint64, ps ...Pattern[T]) Pattern[T] {
	n := int64(len(ps))
	if n == 0 {
		return Silence[T]()
	}
	return New(func(st State) []Hap[T] {
		u := randomUnit(st.Seed, st.Span.Begin, pathID)
		idx := int64(u * float64(n))
		if idx >= n {
			idx = n - 1
		}
		return ps[idx].queryRaw(st)
	})
}
