package main

import "testing"

func TestClockDividerEmitsOnceEveryNRisingEdges(t *testing.T) {
	mm, _ := newClockDividerModule("d1", map[string]any{"divisor": 3.0})
	m := mm.(*clockDividerModule)
	p := newTestPatchWith("d1", m)

	pulses := 0
	frame := uint64(0)
	for edge := 0; edge < 9; edge++ {
		frame++
		m.Connect("clock", VoltsSignal(1))
		m.Update(frame, p)
		if m.GetSample("out", 0) > 0.5 {
			pulses++
		}
		frame++
		m.Connect("clock", VoltsSignal(0))
		m.Update(frame, p)
	}
	if pulses != 3 {
		t.Fatalf("expected 3 output pulses for 9 edges at divisor 3, got %d", pulses)
	}
}

func TestClockDividerRejectsSubOneDivisor(t *testing.T) {
	if _, err := newClockDividerModule("d1", map[string]any{"divisor": 0.0}); err == nil {
		t.Fatal("expected error for divisor < 1")
	}
}

func TestClockDividerRejectsUnknownPort(t *testing.T) {
	mm, _ := newClockDividerModule("d1", nil)
	m := mm.(*clockDividerModule)
	if err := m.Connect("bogus", VoltsSignal(0)); err == nil {
		t.Fatal("expected error for unknown port")
	}
}
