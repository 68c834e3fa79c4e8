package main

import "testing"

func TestBiquadParsesAllModes(t *testing.T) {
	for _, mode := range []string{"lowpass", "highpass", "bandpass", "notch", "allpass"} {
		if _, ok := parseBiquadMode(mode); !ok {
			t.Fatalf("expected mode %q to parse", mode)
		}
	}
	if _, ok := parseBiquadMode("bogus"); ok {
		t.Fatal("expected unknown mode to fail parsing")
	}
}

func TestBiquadLowpassAttenuatesHighFrequencyMoreThanDC(t *testing.T) {
	mm, _ := newBiquadModule("f1", map[string]any{"mode": "lowpass", "cutoff": 3.0, "q": 0.707})
	m := mm.(*biquadModule)
	p := newTestPatchWith("f1", m)

	m.Connect("in", VoltsSignal(1))
	var dcOut float64
	for i := 0; i < 5000; i++ {
		m.Update(uint64(i), p)
		dcOut = m.GetSample("out", 0)
	}
	if diff := dcOut - 1; diff > 0.05 || diff < -0.05 {
		t.Fatalf("expected lowpass to pass DC near unity, got %v", dcOut)
	}
}

func TestBiquadRejectsUnknownParam(t *testing.T) {
	if _, err := newBiquadModule("f1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
