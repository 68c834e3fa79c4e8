// hap.go - haps and time spans, the unit of output of a pattern query
/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package pattern

// TimeSpan is a half-open interval [Begin, End) of rational cycle time.
type TimeSpan struct {
	Begin, End Rational
}

func Span(b, e Rational) TimeSpan { return TimeSpan{Begin: b, End: e} }

func (s TimeSpan) Duration() Rational { return s.End.Sub(s.Begin) }

// Intersect returns the overlap of s and o, and whether they overlap at
// all (a zero-width overlap at a shared boundary counts as overlapping
// only when both spans are themselves zero-width, matching how hap
// queries treat instantaneous events).
func (s TimeSpan) Intersect(o TimeSpan) (TimeSpan, bool) {
	b := MaxR(s.Begin, o.Begin)
	e := MinR(s.End, o.End)
	if b.Gt(e) {
		return TimeSpan{}, false
	}
	if b.Eq(e) && !(s.Begin.Eq(s.End) || o.Begin.Eq(o.End)) {
		return TimeSpan{}, false
	}
	return TimeSpan{Begin: b, End: e}, true
}

// CycleSpans splits s into a list of spans each confined to a single
// cycle, matching the pattern-query convention that every combinator
// queries one cycle at a time.
func (s TimeSpan) CycleSpans() []TimeSpan {
	if s.Begin.Gte(s.End) {
		if s.Begin.Eq(s.End) {
			return []TimeSpan{s}
		}
		return nil
	}
	var out []TimeSpan
	b := s.Begin
	for b.Lt(s.End) {
		nextCycle := RInt(b.Floor() + 1)
		e := MinR(nextCycle, s.End)
		out = append(out, TimeSpan{Begin: b, End: e})
		b = e
	}
	return out
}

// WithTime maps both endpoints of s through f, used to shift/scale spans
// under fast/slow/compress.
func (s TimeSpan) WithTime(f func(Rational) Rational) TimeSpan {
	return TimeSpan{Begin: f(s.Begin), End: f(s.End)}
}

// Context carries provenance for editor highlighting: the chain of
// source spans (mini-notation atom positions) and operator names applied
// to derive a given hap. It is opaque payload threaded through purely for
// consumers outside the pattern algebra; combinators never inspect it.
type Context struct {
	Locations []SourceSpan
}

type SourceSpan struct {
	Start, End int
}

func (c Context) WithSpan(s SourceSpan) Context {
	locs := make([]SourceSpan, len(c.Locations), len(c.Locations)+1)
	copy(locs, c.Locations)
	locs = append(locs, s)
	return Context{Locations: locs}
}

// Hap is one discrete event (or continuous-signal sample) produced by a
// pattern query. Whole is nil for continuous signals that have no
// discrete onset/duration (saw, sine, ...).
type Hap[T any] struct {
	Whole   *TimeSpan
	Part    TimeSpan
	Value   T
	Context Context
}

// HasOnset reports whether Part begins exactly at Whole's start - the
// convention used to decide whether this query "owns" the event's
// trigger edge (vs. seeing only a continuation of a hap that started in
// an earlier query window).
func (h Hap[T]) HasOnset() bool {
	return h.Whole != nil && h.Whole.Begin.Eq(h.Part.Begin)
}

func (h Hap[T]) WithContext(c Context) Hap[T] {
	h.Context = c
	return h
}

func withHapTime[T any](h Hap[T], f func(Rational) Rational) Hap[T] {
	out := h
	part := h.Part.WithTime(f)
	out.Part = part
	if h.Whole != nil {
		w := h.Whole.WithTime(f)
		out.Whole = &w
	}
	return out
}
