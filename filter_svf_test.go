package main

import "testing"

func TestSVFParsesAllOutputs(t *testing.T) {
	for _, o := range []string{"lowpass", "highpass", "bandpass", "notch"} {
		if _, ok := parseSVFOutput(o); !ok {
			t.Fatalf("expected output %q to parse", o)
		}
	}
	if _, ok := parseSVFOutput("bogus"); ok {
		t.Fatal("expected unknown output to fail parsing")
	}
}

func TestSVFExposesAllTapsRegardlessOfSelectedOutput(t *testing.T) {
	mm, _ := newSVFModule("f1", map[string]any{"output": "highpass", "cutoff": 5.0, "resonance": 0.3})
	m := mm.(*svfModule)
	p := newTestPatchWith("f1", m)
	m.Connect("in", VoltsSignal(1))
	for i := 0; i < 100; i++ {
		m.Update(uint64(i), p)
	}
	if m.GetSample("out", 0) != m.GetSample("highpass", 0) {
		t.Fatal("expected selected output port to match the named highpass tap")
	}
	// lowpass/bandpass/notch taps stay readable even though "output" selects highpass.
	if m.GetSample("lowpass", 0) != m.low || m.GetSample("bandpass", 0) != m.band || m.GetSample("notch", 0) != m.notch {
		t.Fatal("expected all taps to remain independently readable")
	}
}

func TestSVFRejectsUnknownParam(t *testing.T) {
	if _, err := newSVFModule("f1", map[string]any{"bogus": 1.0}); err == nil {
		t.Fatal("expected error for unknown param")
	}
}
