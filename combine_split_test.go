package main

import "testing"

func TestCombineSkipsDisconnectedInputs(t *testing.T) {
	mm, _ := newCombineModule("c1", nil)
	m := mm.(*combineModule)
	p := newTestPatchWith("c1", m)

	if err := m.Connect("in1", VoltsSignal(1)); err != nil {
		t.Fatalf("connect in1: %v", err)
	}
	if err := m.Connect("in3", VoltsSignal(3)); err != nil {
		t.Fatalf("connect in3: %v", err)
	}
	m.Update(1, p)

	poly := m.GetPoly("out")
	if poly.N != 2 {
		t.Fatalf("expected 2 packed channels, got %d", poly.N)
	}
	if poly.Values[0] != 1 || poly.Values[1] != 3 {
		t.Fatalf("expected packed values [1 3], got %v", poly.Values[:2])
	}
}

func TestCombineRejectsUnknownPort(t *testing.T) {
	mm, _ := newCombineModule("c1", nil)
	m := mm.(*combineModule)
	if err := m.Connect("in16", VoltsSignal(0)); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestSplitExposesChannelsAndCount(t *testing.T) {
	cmm, _ := newCombineModule("combiner", nil)
	combiner := cmm.(*combineModule)
	smm, _ := newSplitModule("s1", nil)
	split := smm.(*splitModule)

	p := NewPatch()
	p.set("combiner", combiner)
	p.set("s1", split)

	combiner.Connect("in0", VoltsSignal(10))
	combiner.Connect("in1", VoltsSignal(20))
	combiner.Update(1, p)

	split.Connect("in", CableSignal("combiner", "out", 0))
	split.Update(1, p)

	if got := split.GetSample("channels", 0); got != 2 {
		t.Fatalf("expected channels=2, got %v", got)
	}
	if got := split.GetSample("ch0", 0); got != 10 {
		t.Fatalf("expected ch0=10, got %v", got)
	}
	if got := split.GetSample("ch1", 0); got != 20 {
		t.Fatalf("expected ch1=20, got %v", got)
	}
}

func TestSplitMonoFallbackWhenSourceIsNotPoly(t *testing.T) {
	mm, _ := newSplitModule("s1", nil)
	split := mm.(*splitModule)
	p := newTestPatchWith("s1", split)
	split.Connect("in", VoltsSignal(7))
	split.Update(1, p)
	if got := split.GetSample("ch0", 0); got != 7 {
		t.Fatalf("expected ch0=7 for mono fallback, got %v", got)
	}
}
