package main

import "testing"

func TestScaleAndShiftComputesLinearTransform(t *testing.T) {
	mm, _ := newScaleAndShiftModule("s1", map[string]any{"scale": 2.0, "shift": 1.0})
	m := mm.(*scaleAndShiftModule)
	p := newTestPatchWith("s1", m)
	m.Connect("in", VoltsSignal(3))
	var out float64
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
		out = m.GetSample("out", 0)
	}
	if diff := out - 7; diff > 0.05 || diff < -0.05 {
		t.Fatalf("expected 3*2+1=7, got %v", out)
	}
}

func TestScaleAndShiftRejectsUnknownParam(t *testing.T) {
	if _, err := newScaleAndShiftModule("s1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}

func TestRemapClampsInputBeforeMapping(t *testing.T) {
	mm, _ := newRemapModule("r1", map[string]any{"in_min": 0.0, "in_max": 10.0, "out_min": 0.0, "out_max": 1.0})
	m := mm.(*remapModule)
	p := newTestPatchWith("r1", m)
	m.Connect("in", VoltsSignal(100))
	var out float64
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
		out = m.GetSample("out", 0)
	}
	if diff := out - 1; diff > 0.05 || diff < -0.05 {
		t.Fatalf("expected out-of-range input clamped to out_max=1, got %v", out)
	}
}

func TestRemapZeroSpanYieldsOutMin(t *testing.T) {
	mm, _ := newRemapModule("r1", map[string]any{"in_min": 5.0, "in_max": 5.0, "out_min": 2.0, "out_max": 9.0})
	m := mm.(*remapModule)
	p := newTestPatchWith("r1", m)
	// Start the range smoothers at the params; gliding in from their
	// defaults, the span would never be exactly zero.
	m.inMinSm = NewSmoother(5)
	m.inMaxSm = NewSmoother(5)
	m.Connect("in", VoltsSignal(5))
	var out float64
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
		out = m.GetSample("out", 0)
	}
	if diff := out - 2; diff > 0.05 || diff < -0.05 {
		t.Fatalf("expected zero-span remap to report out_min=2, got %v", out)
	}
}

func TestRemapRejectsUnknownParam(t *testing.T) {
	if _, err := newRemapModule("r1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
