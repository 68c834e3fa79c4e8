// convert.go - AST to Pattern[T] conversion
/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package mini

import (
	"fmt"

	"github.com/intuitionamiga/modularcore/pattern"
)

// RestUnsupportedError is returned when a rest-producing construct
// ('~', '?', euclidean gaps) is converted against a Converter with no
// Rest value; module parameter deserialization surfaces it to the
// control API as a validation error.
type RestUnsupportedError struct {
	Span SourceSpan
	What string
}

func (e *RestUnsupportedError) Error() string {
	return fmt.Sprintf("mini-notation: %s produces a rest, but this value type has none (span %d-%d)", e.What, e.Span.Start, e.Span.End)
}

// Converter supplies the type-specific parts of AST->Pattern conversion.
// FromNumber/FromIdentifier turn a leaf atom into a T. If RestValue is
// non-nil, that value stands in for '~' and for euclidean/degrade gaps;
// if nil, any construct that would need a rest fails conversion with
// RestUnsupportedError instead of silently picking a zero value.
type Converter[T any] struct {
	FromNumber     func(float64) (T, error)
	FromIdentifier func(string) (T, error)
	RestValue      *T
}

// Convert turns a parsed mini-notation AST into a Pattern[T].
func Convert[T any](n Node, conv Converter[T]) (pattern.Pattern[T], error) {
	var zero pattern.Pattern[T]
	switch n.Kind {
	case KindAtom:
		return convertAtom(n, conv)

	case KindSequence:
		weighted := make([]pattern.WeightedPattern[T], 0, len(n.Elems))
		for i, el := range n.Elems {
			p, err := Convert(el, conv)
			if err != nil {
				return zero, err
			}
			w := 1.0
			if i < len(n.Weights) {
				w = n.Weights[i]
			}
			weighted = append(weighted, pattern.WeightedPattern[T]{Weight: pattern.FromFloat64(w), Pattern: p})
		}
		return pattern.TimeCat(weighted), nil

	case KindStack:
		ps := make([]pattern.Pattern[T], 0, len(n.Elems))
		for _, el := range n.Elems {
			p, err := Convert(el, conv)
			if err != nil {
				return zero, err
			}
			ps = append(ps, p)
		}
		return pattern.Stack(ps...), nil

	case KindAlternation:
		ps := make([]pattern.Pattern[T], 0, len(n.Seqs))
		for _, el := range n.Seqs {
			p, err := Convert(el, conv)
			if err != nil {
				return zero, err
			}
			ps = append(ps, p)
		}
		return pattern.SlowCat(ps...), nil

	case KindPolyMeter:
		return convertPolyMeter(n, conv)

	case KindFast:
		inner, err := Convert(*n.Inner, conv)
		if err != nil {
			return zero, err
		}
		factor, err := convertFactor(*n.Factor, conv)
		if err != nil {
			return zero, err
		}
		return inner.Fast(factor), nil

	case KindSlow:
		inner, err := Convert(*n.Inner, conv)
		if err != nil {
			return zero, err
		}
		factor, err := convertFactor(*n.Factor, conv)
		if err != nil {
			return zero, err
		}
		return inner.Slow(factor), nil

	case KindReplicate:
		inner, err := Convert(*n.Inner, conv)
		if err != nil {
			return zero, err
		}
		count := n.Count
		if count < 1 {
			count = 1
		}
		ps := make([]pattern.Pattern[T], count)
		for i := range ps {
			ps[i] = inner
		}
		return pattern.FastCat(ps...), nil

	case KindDegrade:
		if conv.RestValue == nil {
			return zero, &RestUnsupportedError{Span: n.Span, What: "degrade ('?')"}
		}
		inner, err := Convert(*n.Inner, conv)
		if err != nil {
			return zero, err
		}
		prob := n.Prob
		pathID := uint64(n.Span.Start)<<32 | uint64(n.Span.End)
		kept := pattern.DegradeBy(inner, prob, pathID)
		dropped := pattern.UnDegradeBy(inner, prob, pathID)
		dropped = pattern.Map(dropped, func(T) T { return *conv.RestValue })
		return pattern.Stack(kept, dropped), nil

	case KindEuclidean:
		inner, err := Convert(*n.Inner, conv)
		if err != nil {
			return zero, err
		}
		if conv.RestValue == nil {
			return zero, &RestUnsupportedError{Span: n.Span, What: "euclidean rhythm"}
		}
		k, err := intFromNode(*n.K)
		if err != nil {
			return zero, err
		}
		nn, err := intFromNode(*n.N)
		if err != nil {
			return zero, err
		}
		r := 0
		if n.R != nil {
			r, err = intFromNode(*n.R)
			if err != nil {
				return zero, err
			}
		}
		if nn <= 0 {
			return pattern.Silence[T](), nil
		}
		// Gaps become explicit rest haps rather than silence, so a
		// sequencer consuming the pattern still sees every 1/n slot.
		hits := pattern.Bjorklund(k, nn)
		if r != 0 {
			r = ((r % nn) + nn) % nn
			hits = append(append([]bool{}, hits[r:]...), hits[:r]...)
		}
		parts := make([]pattern.Pattern[T], nn)
		for i, hit := range hits {
			if hit {
				parts[i] = inner
			} else {
				parts[i] = pattern.Pure(*conv.RestValue)
			}
		}
		return pattern.FastCat(parts...), nil

	case KindOperator:
		inner, err := Convert(*n.OperInner, conv)
		if err != nil {
			return zero, err
		}
		return convertOperator(n, inner, conv)
	}
	return zero, fmt.Errorf("mini-notation: unhandled node kind %d", n.Kind)
}

func convertAtom[T any](n Node, conv Converter[T]) (pattern.Pattern[T], error) {
	var zero pattern.Pattern[T]
	switch n.Atom.Kind {
	case AtomRest:
		if conv.RestValue == nil {
			return zero, &RestUnsupportedError{Span: n.Atom.Span, What: "rest ('~')"}
		}
		return pattern.Pure(*conv.RestValue), nil
	case AtomNumber:
		v, err := conv.FromNumber(n.Atom.Num)
		if err != nil {
			return zero, err
		}
		return pattern.Pure(v), nil
	default:
		v, err := conv.FromIdentifier(n.Atom.Text)
		if err != nil {
			return zero, err
		}
		return pattern.Pure(v), nil
	}
}

func convertFactor[T any](n Node, conv Converter[T]) (pattern.Rational, error) {
	if n.Kind == KindAtom && n.Atom.Kind == AtomNumber {
		return pattern.FromFloat64(n.Atom.Num), nil
	}
	return pattern.RInt(1), fmt.Errorf("mini-notation: non-numeric */ factors are not supported")
}

func intFromNode(n Node) (int, error) {
	if n.Kind == KindAtom && n.Atom.Kind == AtomNumber {
		return int(n.Atom.Num), nil
	}
	return 0, fmt.Errorf("mini-notation: expected an integer literal")
}

func convertPolyMeter[T any](n Node, conv Converter[T]) (pattern.Pattern[T], error) {
	var zero pattern.Pattern[T]
	baseSteps := len(n.Seqs[0].Elems)
	if n.PolySteps != nil {
		baseSteps = *n.PolySteps
	}
	ps := make([]pattern.Pattern[T], 0, len(n.Seqs))
	for _, seq := range n.Seqs {
		elems := make([]pattern.Pattern[T], 0, len(seq.Elems))
		for _, el := range seq.Elems {
			p, err := Convert(el, conv)
			if err != nil {
				return zero, err
			}
			elems = append(elems, p)
		}
		if len(elems) == 0 {
			continue
		}
		full := pattern.FastCat(elems...)
		steps := len(elems)
		ps = append(ps, full.Fast(pattern.R(int64(baseSteps), int64(steps))))
	}
	return pattern.Stack(ps...), nil
}

// convertOperator applies the small set of named transforms the grammar's
// `operator` production supports via `$name(args)`. Unknown operator
// names are a conversion error, surfaced as a ValidationError.
func convertOperator[T any](n Node, inner pattern.Pattern[T], conv Converter[T]) (pattern.Pattern[T], error) {
	arg := func(i int) (Node, bool) {
		if i < len(n.OpArgs) {
			return n.OpArgs[i], true
		}
		return Node{}, false
	}
	numArg := func(i int) (float64, error) {
		a, ok := arg(i)
		if ok && a.Kind == KindSequence && len(a.Elems) == 1 {
			a = a.Elems[0]
		}
		if !ok || a.Kind != KindAtom || a.Atom.Kind != AtomNumber {
			return 0, fmt.Errorf("mini-notation: operator %q expects a numeric argument %d", n.OpName, i)
		}
		return a.Atom.Num, nil
	}
	switch n.OpName {
	case "fast":
		f, err := numArg(0)
		if err != nil {
			return inner, err
		}
		return inner.Fast(pattern.FromFloat64(f)), nil
	case "slow":
		f, err := numArg(0)
		if err != nil {
			return inner, err
		}
		return inner.Slow(pattern.FromFloat64(f)), nil
	case "rev":
		return inner.Rev(), nil
	case "degradeBy":
		if conv.RestValue == nil {
			return inner, &RestUnsupportedError{Span: n.Span, What: "degradeBy()"}
		}
		p, err := numArg(0)
		if err != nil {
			p = 0.5
		}
		return pattern.DegradeBy(inner, p, uint64(n.Span.Start)), nil
	default:
		return inner, fmt.Errorf("mini-notation: unknown operator %q", n.OpName)
	}
}

// ParseFloat64 is a convenience entry point: parse source straight into a
// Pattern[float64], the value type every CV-driving module in this
// engine's module library queries.
func ParseFloat64(src string) (pattern.Pattern[float64], error) {
	node, err := Parse(src)
	if err != nil {
		return pattern.Pattern[float64]{}, err
	}
	restVal := 0.0
	conv := Converter[float64]{
		FromNumber: func(f float64) (float64, error) { return f, nil },
		FromIdentifier: func(s string) (float64, error) {
			if v, ok := noteToVolts(s); ok {
				return v, nil
			}
			return 0, fmt.Errorf("mini-notation: %q is not a number or recognized note name", s)
		},
		RestValue: &restVal,
	}
	return Convert(node, conv)
}

// noteToVolts converts a simple note-name token (c4, e4, gs3, ...) into a
// V/Oct voltage on the engine's 0V = A0 (MIDI 21) scale, so a4 lands on
// 4 V and c4 on 3.25 V.
func noteToVolts(s string) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	semitone := map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}
	base, ok := semitone[lower(s[0])]
	if !ok {
		return 0, false
	}
	i := 1
	for i < len(s) && (s[i] == 's' || s[i] == '#') {
		base++
		i++
	}
	for i < len(s) && s[i] == 'f' {
		base--
		i++
	}
	octave := 4
	if i < len(s) {
		n := 0
		neg := false
		j := i
		if s[j] == '-' {
			neg = true
			j++
		}
		any := false
		for ; j < len(s); j++ {
			if s[j] < '0' || s[j] > '9' {
				return 0, false
			}
			n = n*10 + int(s[j]-'0')
			any = true
		}
		if !any {
			return 0, false
		}
		if neg {
			n = -n
		}
		octave = n
	}
	midi := base + (octave+1)*12
	return float64(midi-21) / 12.0, true
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}
