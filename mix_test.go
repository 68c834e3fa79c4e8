package main

import "testing"

func TestMixWeightsEachInputByItsGain(t *testing.T) {
	mm, _ := newMixModule("m1", map[string]any{"gain1": 0.5, "gain2": 2.0})
	m := mm.(*mixModule)
	p := newTestPatchWith("m1", m)
	m.Connect("in1", VoltsSignal(2))
	m.Connect("in2", VoltsSignal(1))
	var out float64
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
		out = m.GetSample("out", 0)
	}
	want := 2*0.5 + 1*2.0
	if diff := out - want; diff > 0.05 || diff < -0.05 {
		t.Fatalf("expected weighted sum %v, got %v", want, out)
	}
}

func TestMixRejectsUnknownGainKey(t *testing.T) {
	if _, err := newMixModule("m1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown gain param")
	}
}

func TestSumAddsAllEightInputsUnweighted(t *testing.T) {
	mm, _ := newSumModule("s1", nil)
	m := mm.(*sumModule)
	p := newTestPatchWith("s1", m)
	m.Connect("in1", VoltsSignal(1))
	m.Connect("in2", VoltsSignal(2))
	m.Connect("in8", VoltsSignal(3))
	m.Update(1, p)
	if got := m.GetSample("out", 0); got != 6 {
		t.Fatalf("expected sum=6, got %v", got)
	}
}

func TestSumRejectsAnyParam(t *testing.T) {
	if _, err := newSumModule("s1", map[string]any{"gain1": 1.0}); err == nil {
		t.Fatal("expected sum to reject all params, it has no knobs")
	}
}

func TestPolyMixCollapsesPolySourceToMono(t *testing.T) {
	cmm, _ := newCombineModule("c1", nil)
	combiner := cmm.(*combineModule)
	pmm, _ := newPolyMixModule("pm1", nil)
	pm := pmm.(*polyMixModule)

	p := NewPatch()
	p.set("c1", combiner)
	p.set("pm1", pm)

	combiner.Connect("in0", VoltsSignal(1))
	combiner.Connect("in1", VoltsSignal(2))
	combiner.Connect("in2", VoltsSignal(3))
	combiner.Update(1, p)

	pm.Connect("in", CableSignal("c1", "out", 0))
	pm.Update(1, p)

	if got := pm.GetSample("out", 0); got != 6 {
		t.Fatalf("expected poly_mix to sum all active channels to 6, got %v", got)
	}
}

func TestPolyMixMonoFallback(t *testing.T) {
	mm, _ := newPolyMixModule("pm1", nil)
	pm := mm.(*polyMixModule)
	p := newTestPatchWith("pm1", pm)
	pm.Connect("in", VoltsSignal(4))
	pm.Update(1, p)
	if got := pm.GetSample("out", 0); got != 4 {
		t.Fatalf("expected mono fallback passthrough, got %v", got)
	}
}

func TestPolyMixModeSelectsReduction(t *testing.T) {
	// Max/Min pick by magnitude but keep the winner's sign: over
	// [1, -5, 3] Max is -5 (the loudest swing), Min is 1.
	cases := []struct {
		mode string
		want float64
	}{
		{"sum", -1},
		{"average", -1.0 / 3.0},
		{"max", -5},
		{"min", 1},
	}
	for _, tc := range cases {
		cmm, _ := newCombineModule("c1", nil)
		combiner := cmm.(*combineModule)
		pmm, err := newPolyMixModule("pm1", map[string]any{"mode": tc.mode})
		if err != nil {
			t.Fatalf("mode %q: unexpected error: %v", tc.mode, err)
		}
		pm := pmm.(*polyMixModule)

		p := NewPatch()
		p.set("c1", combiner)
		p.set("pm1", pm)
		combiner.Connect("in0", VoltsSignal(1))
		combiner.Connect("in1", VoltsSignal(-5))
		combiner.Connect("in2", VoltsSignal(3))
		combiner.Update(1, p)

		pm.Connect("in", CableSignal("c1", "out", 0))
		pm.Update(1, p)

		got := pm.GetSample("out", 0)
		if diff := got - tc.want; diff > 1e-12 || diff < -1e-12 {
			t.Fatalf("mode %q: expected %v, got %v", tc.mode, tc.want, got)
		}
	}
}

func TestPolyMixRejectsUnknownMode(t *testing.T) {
	if _, err := newPolyMixModule("pm1", map[string]any{"mode": "bogus"}); err == nil {
		t.Fatal("expected error for unknown poly_mix mode")
	}
}
