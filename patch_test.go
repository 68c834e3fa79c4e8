package main

import "testing"

func TestNewPatchSeedsAudioIn(t *testing.T) {
	p := NewPatch()
	if _, ok := p.Module(AudioInID); !ok {
		t.Fatal("expected a fresh patch to already contain the hidden audio_in module")
	}
}

func TestPatchResolveVoltsAndCable(t *testing.T) {
	p := NewPatch()
	mm, _ := newOscModule("osc1", map[string]any{"waveform": "sine"})
	p.set("osc1", mm)

	if got := p.Resolve(VoltsSignal(2.5)); got != 2.5 {
		t.Fatalf("expected resolve of a volts signal to return it unchanged, got %v", got)
	}
	if got := p.Resolve(CableSignal("osc1", "out", 0)); got != mm.GetSample("out", 0) {
		t.Fatalf("expected resolve of a cable to call through to the source module")
	}
}

func TestPatchResolveDanglingCableIsSilence(t *testing.T) {
	p := NewPatch()
	if got := p.Resolve(CableSignal("missing", "out", 0)); got != 0 {
		t.Fatalf("expected a cable to a missing module to resolve to silence, got %v", got)
	}
}

func TestPatchRootSampleZeroWithoutRootModule(t *testing.T) {
	p := NewPatch()
	if got := p.RootSample(0); got != 0 {
		t.Fatalf("expected RootSample to be 0 when no root module exists, got %v", got)
	}
}

func TestPatchPushAudioInFeedsHiddenModule(t *testing.T) {
	p := NewPatch()
	p.PushAudioIn(0, 0.7)
	ai, ok := p.Module(AudioInID)
	if !ok {
		t.Fatal("expected audio_in module present")
	}
	if got := ai.GetSample("out", 0); got != 0.7 {
		t.Fatalf("expected pushed audio-in sample to be readable, got %v", got)
	}
}

func TestPatchTryLockFailsWhileHeld(t *testing.T) {
	p := NewPatch()
	p.Lock()
	if p.TryLock() {
		t.Fatal("expected TryLock to fail while the patch is already locked")
	}
	p.Unlock()
	if !p.TryLock() {
		t.Fatal("expected TryLock to succeed once the patch is unlocked")
	}
	p.Unlock()
}

func TestPatchDispatchDeliversToRegisteredListeners(t *testing.T) {
	p := NewPatch()
	mm, _ := newMidiGateModule("g1", nil)
	p.set("g1", mm)
	p.RebuildListeners()
	p.Dispatch(Message{Tag: "midi_note_on", Payload: MidiNoteOnMessage{Note: 60}})
	if got := mm.GetSample("gate", 0); got != 5 {
		t.Fatal("expected dispatch to deliver the message to the registered listener")
	}
}

func TestPatchRemoveDropsFromOrderAndModules(t *testing.T) {
	p := NewPatch()
	mm, _ := newOscModule("osc1", nil)
	p.set("osc1", mm)
	p.remove("osc1")
	if _, ok := p.Module("osc1"); ok {
		t.Fatal("expected removed module to be gone")
	}
	for _, id := range p.order {
		if id == "osc1" {
			t.Fatal("expected removed module's id to be dropped from insertion order")
		}
	}
}

func TestPatchTickAllAdvancesFrameCounter(t *testing.T) {
	p := NewPatch()
	before := p.Frame()
	p.TickAll()
	if p.Frame() != before+1 {
		t.Fatalf("expected TickAll to advance the frame counter by 1, got %d -> %d", before, p.Frame())
	}
}

func TestPatchFeedbackCycleDoesNotDivergeWithinAFrame(t *testing.T) {
	p := NewPatch()
	am, _ := newScaleAndShiftModule("a", map[string]any{"scale": 1.0, "shift": 1.0})
	bm, _ := newScaleAndShiftModule("b", map[string]any{"scale": 1.0})
	a := am.(*scaleAndShiftModule)
	b := bm.(*scaleAndShiftModule)
	p.set("a", a)
	p.set("b", b)
	a.Connect("in", CableSignal("b", "out", 0))
	b.Connect("in", CableSignal("a", "out", 0))

	// Each frame a reads b's value and b reads a's, each seeing at most
	// one frame of history; the +1 shift can therefore grow by at most 1
	// per frame per module, never recursing or blowing up within a frame.
	for i := 0; i < 100; i++ {
		p.TickAll()
	}
	got := a.GetSample("out", 0)
	if got <= 0 || got > 201 {
		t.Fatalf("expected bounded feedback growth after 100 frames, got %v", got)
	}
}
