package main

import "testing"

func TestPulsarOutputsSilenceOutsideGrainWindow(t *testing.T) {
	mm, _ := newPulsarModule("p1", map[string]any{"amount": 0.9})
	m := mm.(*pulsarModule)
	p := newTestPatchWith("p1", m)
	m.Connect("in", VoltsSignal(1))
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
	}
	m.phase = 0.99 // beyond width=0.1 at amount 0.9
	m.Update(2001, p)
	if got := m.GetSample("out", 0); got != 0 {
		t.Fatalf("expected silence outside the grain window, got %v", got)
	}
}

func TestPulsarWindowsInsideGrain(t *testing.T) {
	mm, _ := newPulsarModule("p1", map[string]any{"amount": 0.5})
	m := mm.(*pulsarModule)
	p := newTestPatchWith("p1", m)
	m.Connect("in", VoltsSignal(1))
	m.phase = 0.0
	m.Update(1, p)
	if got := m.GetSample("out", 0); got < -1e-9 || got > 1e-9 {
		t.Fatalf("expected raised-cosine window to start at 0, got %v", got)
	}
}

func TestPulsarRejectsUnknownParam(t *testing.T) {
	if _, err := newPulsarModule("p1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
