package main

import "testing"

func twoKeyframes(interp string) map[string]any {
	return map[string]any{
		"keyframes": []any{
			map[string]any{"time": 0.0, "value": 0.0},
			map[string]any{"time": 1.0, "value": 10.0},
		},
		"interpolation_type": interp,
	}
}

func TestTrackModuleLinearInterpolatesBetweenKeyframes(t *testing.T) {
	mm, _ := newTrackModule("t1", twoKeyframes("linear"))
	m := mm.(*trackModule)
	p := newTestPatchWith("t1", m)
	m.Connect("playhead", VoltsSignal(0.5))
	m.Update(1, p)
	if got := m.GetSample("out", 0); got != 5 {
		t.Fatalf("expected linear midpoint 5, got %v", got)
	}
}

func TestTrackModuleStepHoldsCurrentKeyframeUntilNext(t *testing.T) {
	mm, _ := newTrackModule("t1", twoKeyframes("step"))
	m := mm.(*trackModule)
	p := newTestPatchWith("t1", m)
	m.Connect("playhead", VoltsSignal(0.9))
	m.Update(1, p)
	if got := m.GetSample("out", 0); got != 0 {
		t.Fatalf("expected step interpolation to hold the prior keyframe, got %v", got)
	}
}

func TestTrackModuleClampsBeforeFirstAndAfterLastKeyframe(t *testing.T) {
	mm, _ := newTrackModule("t1", twoKeyframes("linear"))
	m := mm.(*trackModule)
	p := newTestPatchWith("t1", m)

	m.Connect("playhead", VoltsSignal(0))
	m.Update(1, p)
	if got := m.GetSample("out", 0); got != 0 {
		t.Fatalf("expected first keyframe's value at t<=first.time, got %v", got)
	}

	// The position is the playhead's fractional part, so 1 reads as 0; end
	// the keyframes at 0.5 to probe the region past the last one.
	m2, _ := newTrackModule("t2", map[string]any{
		"keyframes": []any{
			map[string]any{"time": 0.0, "value": 0.0},
			map[string]any{"time": 0.5, "value": 10.0},
		},
		"interpolation_type": "linear",
	})
	mm2 := m2.(*trackModule)
	p2 := newTestPatchWith("t2", mm2)
	mm2.Connect("playhead", VoltsSignal(0.75))
	mm2.Update(1, p2)
	if got := mm2.GetSample("out", 0); got != 10 {
		t.Fatalf("expected last keyframe's value at t>=last.time, got %v", got)
	}
}

func TestTrackModulePolyKeyframesInterpolatePerChannel(t *testing.T) {
	params := map[string]any{
		"keyframes": []any{
			map[string]any{"time": 0.0, "value": []any{0.0, 100.0}},
			map[string]any{"time": 1.0, "value": []any{10.0, 200.0}},
		},
		"interpolation_type": "linear",
	}
	mm, _ := newTrackModule("t1", params)
	m := mm.(*trackModule)
	p := newTestPatchWith("t1", m)
	m.Connect("playhead", VoltsSignal(0.5))
	m.Update(1, p)
	poly := m.GetPoly("out")
	if poly.N != 2 {
		t.Fatalf("expected channel count derived from widest keyframe, got %d", poly.N)
	}
	if poly.Values[0] != 5 || poly.Values[1] != 150 {
		t.Fatalf("expected [5, 150], got %v", poly.Values[:2])
	}
}

func TestTrackModuleRejectsUnknownParam(t *testing.T) {
	if _, err := newTrackModule("t1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}

func TestTrackModuleRejectsUnknownPort(t *testing.T) {
	mm, _ := newTrackModule("t1", nil)
	m := mm.(*trackModule)
	if err := m.Connect("bogus", VoltsSignal(0)); err == nil {
		t.Fatal("expected error for unknown port")
	}
}

func TestTrackModuleDefaultConnectsToRootClockWhenDisconnected(t *testing.T) {
	mm, _ := newTrackModule("t1", twoKeyframes("linear"))
	m := mm.(*trackModule)
	if !m.playheadIn.Disconnected() {
		t.Fatal("expected playhead to start disconnected")
	}
	m.ApplyDefaultConnections()
	c, ok := m.playheadIn.AsCable()
	if !ok || c.ModuleID != RootClockID || c.Port != "playhead" {
		t.Fatalf("expected default connection to root_clock.playhead, got %+v", m.playheadIn)
	}
}

func TestTrackModuleExplicitConnectionSurvivesDefaultConnect(t *testing.T) {
	mm, _ := newTrackModule("t1", twoKeyframes("linear"))
	m := mm.(*trackModule)
	m.Connect("playhead", VoltsSignal(0.25))
	m.ApplyDefaultConnections()
	if _, ok := m.playheadIn.AsVolts(); !ok {
		t.Fatal("expected an explicit connection not to be overwritten by the default")
	}
}
