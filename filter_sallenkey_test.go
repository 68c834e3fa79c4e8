package main

import "testing"

func TestSallenKeyPassesDCAtUnity(t *testing.T) {
	mm, _ := newSallenKeyModule("f1", map[string]any{"cutoff": 4.0, "q": 0.707})
	m := mm.(*sallenKeyModule)
	p := newTestPatchWith("f1", m)
	m.Connect("in", VoltsSignal(1))
	var out float64
	for i := 0; i < 10000; i++ {
		m.Update(uint64(i), p)
		out = m.GetSample("out", 0)
	}
	if diff := out - 1; diff > 0.1 || diff < -0.1 {
		t.Fatalf("expected near-unity DC pass, got %v", out)
	}
}

func TestSallenKeyRejectsUnknownParam(t *testing.T) {
	if _, err := newSallenKeyModule("f1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
