// midi_gate.go - MIDI note-range to gate: high while any note in range is held

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

// MidiNoteOnMessage/MidiNoteOffMessage are the payloads dispatched for the
// "midi_note_on"/"midi_note_off" tags, shared by midi_gate.go and
// midi_cv.go so both modules react to the same MIDI input event stream.
type MidiNoteOnMessage struct {
	Device   string
	Channel  int
	Note     int
	Velocity int
}

type MidiNoteOffMessage struct {
	Device  string
	Channel int
	Note    int
}

// midiGateModule outputs a high gate whenever at least one currently-held
// note falls within [minNote, maxNote], tracking a hold count rather than
// a note set so overlapping notes in range correctly keep the gate high
// until the last of them releases.
type midiGateModule struct {
	moduleBase

	device  string
	minNote int
	maxNote int
	channel int // -1 = omni

	notesHeld int
}

func newMidiGateModule(id string, params map[string]any) (Module, error) {
	m := &midiGateModule{
		moduleBase: newModuleBase(id, "midi_gate"),
		minNote:    0,
		maxNote:    127,
		channel:    -1,
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("midi_gate", newMidiGateModule) }

func (m *midiGateModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "device":
			s, ok := v.(string)
			if !ok {
				return ErrUnknownParam("midi_gate", k)
			}
			m.device = s
		case "min_note":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_gate", k)
			}
			m.minNote = int(f)
		case "max_note":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_gate", k)
			}
			m.maxNote = int(f)
		case "channel":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_gate", k)
			}
			m.channel = int(f) - 1
		default:
			return ErrUnknownParam("midi_gate", k)
		}
	}
	return nil
}

func (m *midiGateModule) Connect(port string, sig Signal) error {
	return ErrUnknownPort("midi_gate", port)
}

func (m *midiGateModule) shouldProcessDevice(device string) bool {
	return m.device == "" || m.device == device
}

func (m *midiGateModule) shouldProcessChannel(channel int) bool {
	return m.channel < 0 || m.channel == channel
}

func (m *midiGateModule) inRange(note int) bool {
	return note >= m.minNote && note <= m.maxNote
}

func (m *midiGateModule) Tick(frame uint64, p *Patch) {}
func (m *midiGateModule) Update(frame uint64, p *Patch) {}

func (m *midiGateModule) GetSample(port string, channel int) float64 {
	switch port {
	case "gate":
		if m.notesHeld > 0 {
			return 5
		}
		return 0
	case "note_count":
		return float64(m.notesHeld)
	}
	return 0
}

func (m *midiGateModule) HandleMessage(msg Message) {
	switch msg.Tag {
	case "midi_note_on":
		n, ok := msg.Payload.(MidiNoteOnMessage)
		if !ok {
			return
		}
		if m.shouldProcessDevice(n.Device) && m.shouldProcessChannel(n.Channel) && m.inRange(n.Note) {
			m.notesHeld++
		}
	case "midi_note_off":
		n, ok := msg.Payload.(MidiNoteOffMessage)
		if !ok {
			return
		}
		if m.shouldProcessDevice(n.Device) && m.shouldProcessChannel(n.Channel) && m.inRange(n.Note) {
			if m.notesHeld > 0 {
				m.notesHeld--
			}
		}
	case "midi_panic":
		m.notesHeld = 0
	}
}

func (m *midiGateModule) ListensFor() []string {
	return []string{"midi_note_on", "midi_note_off", "midi_panic"}
}
