package main

import "testing"

func TestEnvPercDoesNotSustainWhileGateHeld(t *testing.T) {
	mm, _ := newEnvPercModule("e1", map[string]any{"decay": 0.01, "curve": 1.0})
	m := mm.(*envPercModule)
	p := newTestPatchWith("e1", m)

	frame := uint64(0)
	frame++
	m.Connect("gate", VoltsSignal(1))
	m.Tick(frame, p)
	m.Update(frame, p)
	if m.GetSample("out", 0) != 1 {
		t.Fatalf("expected envelope to snap to 1 on trigger, got %v", m.GetSample("out", 0))
	}

	for i := 0; i < int(SampleRate*0.02); i++ {
		frame++
		m.Tick(frame, p)
		m.Update(frame, p) // gate stays high the whole time
	}
	if m.active {
		t.Fatal("expected envelope to finish decaying even while gate is held high")
	}
	if m.GetSample("out", 0) != 0 {
		t.Fatalf("expected envelope at 0 once decay elapses, got %v", m.GetSample("out", 0))
	}
}

func TestEnvPercRejectsUnknownParam(t *testing.T) {
	if _, err := newEnvPercModule("e1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
