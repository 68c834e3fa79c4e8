package main

import "testing"

func newTestPatchWith(id string, m Module) *Patch {
	p := NewPatch()
	p.set(id, m)
	return p
}

func TestChebyOrderOneAtZeroAmountIsIdentity(t *testing.T) {
	mm, _ := newChebyModule("c1", nil)
	m := mm.(*chebyModule)
	p := newTestPatchWith("c1", m)
	if err := m.Connect("in", VoltsSignal(0.5)); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := m.Connect("amount", VoltsSignal(0)); err != nil {
		t.Fatalf("connect: %v", err)
	}
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
	}
	got := m.GetSample("out", 0)
	if diff := got - 0.5; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected order-1 chebyshev (identity) near 0.5, got %v", got)
	}
}

func TestChebyRejectsUnknownParam(t *testing.T) {
	if _, err := newChebyModule("c1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}

func TestChebyRejectsUnknownPort(t *testing.T) {
	mm, _ := newChebyModule("c1", nil)
	m := mm.(*chebyModule)
	if err := m.Connect("nope", VoltsSignal(0)); err == nil {
		t.Fatal("expected error for unknown port")
	}
}

func TestChebyshevTIdentityAtOrderOne(t *testing.T) {
	if got := chebyshevT(1, 0.42); got != 0.42 {
		t.Fatalf("expected order-1 chebyshev T(x)=x, got %v", got)
	}
}
