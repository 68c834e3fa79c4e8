package main

import (
	"math"
	"testing"
)

func TestOscSawRampsAcrossPhase(t *testing.T) {
	mm, _ := newOscModule("o1", map[string]any{"waveform": "saw", "freq": 4.0})
	m := mm.(*oscModule)
	p := newTestPatchWith("o1", m)
	m.Tick(1, p)
	m.Update(1, p)
	first := m.GetSample("out", 0)
	for i := 0; i < 100; i++ {
		m.Tick(uint64(2+i), p)
		m.Update(uint64(2+i), p)
	}
	second := m.GetSample("out", 0)
	if second <= first {
		t.Fatalf("expected saw to ramp upward over time, first=%v second=%v", first, second)
	}
}

func TestOscPulseRespondsToWidth(t *testing.T) {
	mm, _ := newOscModule("o1", map[string]any{"waveform": "pulse", "freq": 0.0, "pulse_width": 0.25})
	m := mm.(*oscModule)
	p := newTestPatchWith("o1", m)
	m.phase = 0.1
	m.Update(1, p)
	m.pwSmooth = NewSmoother(0.25)
	if got := m.GetSample("out", 0); got != 1 {
		t.Fatalf("expected high pulse before width threshold, got %v", got)
	}
	m.phase = 0.5
	if got := m.GetSample("out", 0); got != -1 {
		t.Fatalf("expected low pulse after width threshold, got %v", got)
	}
}

func TestOscSineIsBounded(t *testing.T) {
	mm, _ := newOscModule("o1", map[string]any{"waveform": "sine"})
	m := mm.(*oscModule)
	m.phase = 0.25
	got := m.GetSample("out", 0)
	if diff := got - 1; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected sine peak at phase 0.25, got %v", got)
	}
}

func TestOscNoiseStaysInRange(t *testing.T) {
	mm, _ := newOscModule("o1", map[string]any{"waveform": "noise"})
	m := mm.(*oscModule)
	p := newTestPatchWith("o1", m)
	for i := 0; i < 1000; i++ {
		m.Tick(uint64(i+1), p)
	}
	got := m.GetSample("out", 0)
	if math.Abs(got) > 1 {
		t.Fatalf("expected noise sample in [-1,1], got %v", got)
	}
}

func TestOscResetPhaseMessage(t *testing.T) {
	mm, _ := newOscModule("o1", nil)
	m := mm.(*oscModule)
	m.phase = 0.7
	m.HandleMessage(Message{Tag: "reset_phase"})
	if m.phase != 0 {
		t.Fatalf("expected reset_phase to zero the phase, got %v", m.phase)
	}
}

func TestOscRejectsUnknownWaveform(t *testing.T) {
	if _, err := newOscModule("o1", map[string]any{"waveform": "bogus"}); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
}
