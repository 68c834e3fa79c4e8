package main

import "testing"

func TestMS20ProducesFiniteOutputAtHighResonance(t *testing.T) {
	mm, _ := newMS20Module("f1", map[string]any{"cutoff": 5.0, "resonance": 4.0})
	m := mm.(*ms20Module)
	p := newTestPatchWith("f1", m)
	m.Connect("in", VoltsSignal(1))
	for i := 0; i < 5000; i++ {
		m.Update(uint64(i), p)
	}
	out := m.GetSample("out", 0)
	if out != out {
		t.Fatal("expected finite output, got NaN")
	}
}

func TestMS20RejectsUnknownParam(t *testing.T) {
	if _, err := newMS20Module("f1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
