package main

import "testing"

func TestFoldTriangleIdentityInRange(t *testing.T) {
	if got := foldTriangle(0.5); got != 0.5 {
		t.Fatalf("expected in-range value unchanged, got %v", got)
	}
	if got := foldTriangle(-0.5); got != -0.5 {
		t.Fatalf("expected in-range negative value unchanged, got %v", got)
	}
}

func TestFoldTriangleReflectsOutOfRange(t *testing.T) {
	got := foldTriangle(1.5)
	if got < -1 || got > 1 {
		t.Fatalf("expected reflected value to stay in [-1,1], got %v", got)
	}
	if diff := got - 0.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected 1.5 to reflect to 0.5, got %v", got)
	}
}

func TestFoldModuleAppliesAmountBeforeFolding(t *testing.T) {
	mm, _ := newFoldModule("f1", map[string]any{"amount": 1.0})
	m := mm.(*foldModule)
	p := newTestPatchWith("f1", m)
	m.Connect("in", VoltsSignal(0.3))
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
	}
	out := m.GetSample("out", 0)
	if diff := out - 0.3; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected in-range signal to pass through near-unchanged, got %v", out)
	}
}

func TestFoldRejectsUnknownParam(t *testing.T) {
	if _, err := newFoldModule("f1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
