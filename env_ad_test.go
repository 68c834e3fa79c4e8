package main

import "testing"

func TestEnvADRisesThenDecaysThenIdles(t *testing.T) {
	mm, _ := newEnvADModule("e1", map[string]any{"attack": 0.01, "decay": 0.01})
	m := mm.(*envADModule)
	p := newTestPatchWith("e1", m)

	frame := uint64(0)
	frame++
	m.Connect("gate", VoltsSignal(1))
	m.Tick(frame, p)
	m.Update(frame, p)
	if m.stage != adAttack {
		t.Fatalf("expected attack stage after gate rising edge, got %v", m.stage)
	}

	for i := 0; i < int(SampleRate*0.02); i++ {
		frame++
		m.Tick(frame, p)
		m.Update(frame, p)
	}
	if m.stage != adDecay && m.stage != adIdle {
		t.Fatalf("expected envelope to have moved past attack, stage=%v", m.stage)
	}

	for i := 0; i < int(SampleRate*0.05); i++ {
		frame++
		m.Tick(frame, p)
		m.Update(frame, p)
	}
	if m.stage != adIdle {
		t.Fatalf("expected idle stage after decay completes, got %v", m.stage)
	}
	if m.GetSample("out", 0) != 0 {
		t.Fatalf("expected envelope at 0 when idle, got %v", m.GetSample("out", 0))
	}
}

func TestEnvADRejectsUnknownParam(t *testing.T) {
	if _, err := newEnvADModule("e1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
