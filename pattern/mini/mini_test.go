package mini

import (
	"testing"

	"github.com/intuitionamiga/modularcore/pattern"
)

func TestParseSimpleSequence(t *testing.T) {
	p, err := ParseFloat64("0 1 2 3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	haps := p.Query(pattern.State{Span: pattern.Span(pattern.RInt(0), pattern.RInt(1))})
	if len(haps) != 4 {
		t.Fatalf("expected 4 haps, got %d", len(haps))
	}
	for i, h := range haps {
		if h.Value != float64(i) {
			t.Errorf("hap %d: value = %v, want %v", i, h.Value, i)
		}
	}
}

func TestParseRest(t *testing.T) {
	p, err := ParseFloat64("1 ~ 1 ~")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	haps := p.Query(pattern.State{Span: pattern.Span(pattern.RInt(0), pattern.RInt(1))})
	if len(haps) != 4 {
		t.Fatalf("expected 4 haps (incl. rests), got %d", len(haps))
	}
	if haps[1].Value != 0 {
		t.Errorf("rest slot should carry the zero rest value, got %v", haps[1].Value)
	}
}

func TestParseAlternation(t *testing.T) {
	p, err := ParseFloat64("<0 1 2>")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for k := int64(0); k < 3; k++ {
		haps := p.Query(pattern.State{Span: pattern.Span(pattern.RInt(k), pattern.RInt(k+1))})
		if len(haps) != 1 || haps[0].Value != float64(k) {
			t.Fatalf("cycle %d: got %v, want single hap %v", k, haps, k)
		}
	}
}

func TestParseSubgroup(t *testing.T) {
	p, err := ParseFloat64("0 [1 2]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	haps := p.Query(pattern.State{Span: pattern.Span(pattern.RInt(0), pattern.RInt(1))})
	if len(haps) != 3 {
		t.Fatalf("expected 3 haps, got %d: %+v", len(haps), haps)
	}
}

func TestParseEuclid(t *testing.T) {
	p, err := ParseFloat64("1(3,8)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	haps := p.Query(pattern.State{Span: pattern.Span(pattern.RInt(0), pattern.RInt(1))})
	onsets := 0
	for _, h := range haps {
		if h.HasOnset() && h.Value == 1 {
			onsets++
		}
	}
	if onsets != 3 {
		t.Fatalf("expected 3 onsets, got %d", onsets)
	}
	// The three hits land as evenly as 3-in-8 allows: {0, 3/8, 6/8}.
	wantBegins := []pattern.Rational{pattern.RInt(0), pattern.R(3, 8), pattern.R(6, 8)}
	i := 0
	for _, h := range haps {
		if h.Value != 1 {
			continue
		}
		if i < len(wantBegins) && !h.Part.Begin.Eq(wantBegins[i]) {
			t.Fatalf("hit %d begins at %v, want %v", i, h.Part.Begin, wantBegins[i])
		}
		i++
	}
	rests := 0
	for _, h := range haps {
		if h.Value == 0 {
			rests++
		}
	}
	if rests != 5 {
		t.Fatalf("expected 5 rest slots, got %d", rests)
	}
}

func TestParseFastOperator(t *testing.T) {
	p, err := ParseFloat64("0 1 $ fast(2)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	haps := p.Query(pattern.State{Span: pattern.Span(pattern.RInt(0), pattern.RInt(1))})
	if len(haps) != 4 {
		t.Fatalf("expected 4 haps after fast(2), got %d", len(haps))
	}
}

func TestRestUnsupportedForNonRestType(t *testing.T) {
	node, err := Parse("1 ~ 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	conv := Converter[int]{
		FromNumber:     func(f float64) (int, error) { return int(f), nil },
		FromIdentifier: func(s string) (int, error) { return 0, nil },
	}
	_, err = Convert(node, conv)
	if err == nil {
		t.Fatal("expected RestUnsupportedError, got nil")
	}
	if _, ok := err.(*RestUnsupportedError); !ok {
		t.Fatalf("expected *RestUnsupportedError, got %T: %v", err, err)
	}
}

func TestParseWeightedElements(t *testing.T) {
	p, err := ParseFloat64("0@3 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	haps := p.Query(pattern.State{Span: pattern.Span(pattern.RInt(0), pattern.RInt(1))})
	if len(haps) != 2 {
		t.Fatalf("expected 2 haps, got %d", len(haps))
	}
	if !haps[0].Part.Duration().Eq(pattern.R(3, 4)) {
		t.Errorf("weighted element should take 3/4 of the cycle, got %v", haps[0].Part.Duration())
	}
}
