package main

import "testing"

func TestNoteToVoltageAnchorsAtA0(t *testing.T) {
	if got := noteToVoltage(21); got != 0 {
		t.Fatalf("expected A0 = 0V, got %v", got)
	}
	if got := noteToVoltage(69); got != 4 {
		t.Fatalf("expected A4 = 4V, got %v", got)
	}
	if got := noteToVoltage(60); got != 3.25 {
		t.Fatalf("expected middle C = 3.25V, got %v", got)
	}
}

func TestMidiCVReuseModeAllocatesAndReleasesVoices(t *testing.T) {
	mm, _ := newMidiCVModule("cv1", map[string]any{"voices": 4.0, "mode": "reuse"})
	m := mm.(*midiCVModule)

	m.HandleMessage(Message{Tag: "midi_note_on", Payload: MidiNoteOnMessage{Note: 60, Velocity: 100}})
	gatePoly := m.GetPoly("gate")
	active := 0
	for i := 0; i < gatePoly.N; i++ {
		if gatePoly.Values[i] == 5 {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active voice after one note-on, got %d", active)
	}

	m.HandleMessage(Message{Tag: "midi_note_off", Payload: MidiNoteOffMessage{Note: 60}})
	gatePoly = m.GetPoly("gate")
	for i := 0; i < gatePoly.N; i++ {
		if gatePoly.Values[i] != 0 {
			t.Fatal("expected all voices released after note-off")
		}
	}
}

func TestMidiCVStealsOldestVoiceWhenBankFull(t *testing.T) {
	mm, _ := newMidiCVModule("cv1", map[string]any{"voices": 2.0, "mode": "reuse"})
	m := mm.(*midiCVModule)
	m.HandleMessage(Message{Tag: "midi_note_on", Payload: MidiNoteOnMessage{Note: 60, Velocity: 100}})
	m.HandleMessage(Message{Tag: "midi_note_on", Payload: MidiNoteOnMessage{Note: 61, Velocity: 100}})
	m.HandleMessage(Message{Tag: "midi_note_on", Payload: MidiNoteOnMessage{Note: 62, Velocity: 100}})

	found62 := false
	found60 := false
	for i := 0; i < m.numVoices; i++ {
		if m.voices[i].note == 62 {
			found62 = true
		}
		if m.voices[i].note == 60 {
			found60 = true
		}
	}
	if !found62 {
		t.Fatal("expected the third note to have stolen a voice")
	}
	if found60 {
		t.Fatal("expected the oldest voice (note 60) to have been stolen")
	}
}

func TestMidiCVSustainHoldsVoiceAfterNoteOff(t *testing.T) {
	mm, _ := newMidiCVModule("cv1", map[string]any{"voices": 4.0})
	m := mm.(*midiCVModule)
	m.HandleMessage(Message{Tag: "midi_sustain", Payload: MidiSustainMessage{Down: true}})
	m.HandleMessage(Message{Tag: "midi_note_on", Payload: MidiNoteOnMessage{Note: 60, Velocity: 100}})
	m.HandleMessage(Message{Tag: "midi_note_off", Payload: MidiNoteOffMessage{Note: 60}})

	idx := m.findVoiceForNote(60, 0)
	if idx < 0 {
		t.Fatal("expected voice to remain active while sustained")
	}
	if !m.voices[idx].sustainedBy {
		t.Fatal("expected voice to be marked sustained")
	}

	m.HandleMessage(Message{Tag: "midi_sustain", Payload: MidiSustainMessage{Down: false}})
	if m.findVoiceForNote(60, 0) >= 0 {
		t.Fatal("expected voice to release once sustain pedal lifts")
	}
}

func TestMidiCVPanicClearsAllVoices(t *testing.T) {
	mm, _ := newMidiCVModule("cv1", nil)
	m := mm.(*midiCVModule)
	m.HandleMessage(Message{Tag: "midi_note_on", Payload: MidiNoteOnMessage{Note: 60, Velocity: 100}})
	m.HandleMessage(Message{Tag: "midi_panic"})
	for i := 0; i < m.numVoices; i++ {
		if m.voices[i].active {
			t.Fatal("expected panic to clear every voice")
		}
	}
}
