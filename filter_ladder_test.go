package main

import (
	"math"
	"testing"
)

func TestLadderSettlesTowardInputAtLowResonance(t *testing.T) {
	mm, _ := newLadderModule("f1", map[string]any{"cutoff": 7.5, "resonance": 0.0, "drive": 1.0})
	m := mm.(*ladderModule)
	p := newTestPatchWith("f1", m)
	m.Connect("in", VoltsSignal(0.5))
	var out float64
	for i := 0; i < 20000; i++ {
		m.Update(uint64(i), p)
		out = m.GetSample("out", 0)
	}
	// Each of the four stages saturates through tanh, so a DC input settles
	// at tanh applied four times.
	want := math.Tanh(math.Tanh(math.Tanh(math.Tanh(0.5))))
	if diff := out - want; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected ladder to settle near tanh^4(input)=%v at low resonance, got %v", want, out)
	}
}

func TestLadderRejectsUnknownParam(t *testing.T) {
	if _, err := newLadderModule("f1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}

func TestLadderRejectsUnknownPort(t *testing.T) {
	mm, _ := newLadderModule("f1", nil)
	m := mm.(*ladderModule)
	if err := m.Connect("bogus", VoltsSignal(0)); err == nil {
		t.Fatal("expected error for unknown port")
	}
}
