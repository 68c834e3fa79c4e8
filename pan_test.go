package main

import "testing"

func TestPanHardLeftSendsAllEnergyToChannelZero(t *testing.T) {
	mm, _ := newPanModule("p1", map[string]any{"pan": -1.0})
	m := mm.(*panModule)
	p := newTestPatchWith("p1", m)
	m.Connect("in", VoltsSignal(1))
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
	}
	left := m.GetSample("out", 0)
	right := m.GetSample("out", 1)
	if diff := left - 1; diff > 0.05 || diff < -0.05 {
		t.Fatalf("expected hard left to put full signal on channel 0, got %v", left)
	}
	if right > 0.05 || right < -0.05 {
		t.Fatalf("expected hard left to silence channel 1, got %v", right)
	}
}

func TestPanCenterSplitsEquallyAtHalfPower(t *testing.T) {
	mm, _ := newPanModule("p1", map[string]any{"pan": 0.0})
	m := mm.(*panModule)
	p := newTestPatchWith("p1", m)
	m.Connect("in", VoltsSignal(1))
	for i := 0; i < 2000; i++ {
		m.Update(uint64(i), p)
	}
	left := m.GetSample("out", 0)
	right := m.GetSample("out", 1)
	if diff := left - right; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected equal-power center pan, left=%v right=%v", left, right)
	}
}

func TestPanGetPolyReportsBothChannels(t *testing.T) {
	mm, _ := newPanModule("p1", nil)
	m := mm.(*panModule)
	m.left, m.right = 0.3, 0.7
	poly := m.GetPoly("out")
	if poly.N != 2 || poly.Values[0] != 0.3 || poly.Values[1] != 0.7 {
		t.Fatalf("unexpected poly output: %+v", poly)
	}
}

func TestPanRejectsUnknownParam(t *testing.T) {
	if _, err := newPanModule("p1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
