// midi_cv.go - MIDI note input to polyphonic V/Oct + gate + velocity voice bank

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

// PolyphonyMode selects how midiCVModule assigns incoming notes to its
// fixed voice bank.
type PolyphonyMode int

const (
	// PolyRotate takes the next free voice searching from a rolling
	// index; when every voice is busy it steals the voice at that index.
	PolyRotate PolyphonyMode = iota
	// PolyReuse retriggers the voice already playing the same note on the
	// same channel; otherwise it assigns like PolyRotate.
	PolyReuse
	// PolyReset takes the lowest-numbered free voice, scanning from voice
	// 0; when the bank is full it steals the last voice.
	PolyReset
	// PolyMpe treats each MIDI channel as its own voice (MIDI Polyphonic
	// Expression): per-voice pitch bend/aftertouch instead of global.
	PolyMpe
)

const midiCVMaxVoices = PolyMax

type midiCVVoice struct {
	active      bool
	note        int
	channel     int
	velocity    int
	sustainedBy bool // held only because sustain pedal is down
	age         uint64
}

// midiCVModule is a polyphonic MIDI note allocator: its "pitch", "gate",
// and "velocity" outputs are all poly signals with one channel per voice,
// in the same voice order every frame, so a patch can fan them out to N
// instances of an oscillator+envelope voice and expect voice i to always
// mean the same physical voice slot.
type midiCVModule struct {
	moduleBase

	device    string
	channel   int // -1 = omni, only meaningful outside MPE
	numVoices int
	mode      PolyphonyMode

	voices      [midiCVMaxVoices]midiCVVoice
	nextRotate  int
	frameCount  uint64
	sustainDown map[int]bool // per MIDI channel

	globalBendSemitones float64
	globalAftertouch    float64
	globalModWheel      float64
	bendRangeSemitones  float64

	perChannelBend       map[int]float64
	perChannelAftertouch map[int]float64
}

func newMidiCVModule(id string, params map[string]any) (Module, error) {
	m := &midiCVModule{
		moduleBase:           newModuleBase(id, "midi_cv"),
		channel:              -1,
		numVoices:            8,
		mode:                 PolyReuse,
		bendRangeSemitones:   2,
		sustainDown:          make(map[int]bool),
		perChannelBend:       make(map[int]float64),
		perChannelAftertouch: make(map[int]float64),
	}
	m.setChannelCount(m.numVoices)
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

// ParamChannelCount: the voice bank's width is exactly the "voices" param.
func (m *midiCVModule) ParamChannelCount() int { return m.numVoices }

func init() { registerModule("midi_cv", newMidiCVModule) }

func (m *midiCVModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "device":
			s, ok := v.(string)
			if !ok {
				return ErrUnknownParam("midi_cv", k)
			}
			m.device = s
		case "channel":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_cv", k)
			}
			m.channel = int(f) - 1
		case "voices":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_cv", k)
			}
			n := int(f)
			if n < 1 {
				n = 1
			}
			if n > midiCVMaxVoices {
				n = midiCVMaxVoices
			}
			m.numVoices = n
			m.setChannelCount(n)
		case "mode":
			s, ok := v.(string)
			if !ok {
				return ErrUnknownParam("midi_cv", k)
			}
			switch s {
			case "rotate":
				m.mode = PolyRotate
			case "reuse":
				m.mode = PolyReuse
			case "reset":
				m.mode = PolyReset
			case "mpe":
				m.mode = PolyMpe
			default:
				return ErrUnknownParam("midi_cv", k)
			}
		case "bend_range":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_cv", k)
			}
			m.bendRangeSemitones = f
		default:
			return ErrUnknownParam("midi_cv", k)
		}
	}
	return nil
}

func (m *midiCVModule) Connect(port string, sig Signal) error {
	return ErrUnknownPort("midi_cv", port)
}

func (m *midiCVModule) shouldProcessDevice(device string) bool {
	return m.device == "" || m.device == device
}

func (m *midiCVModule) shouldProcessChannel(channel int) bool {
	if m.mode == PolyMpe {
		return true
	}
	return m.channel < 0 || m.channel == channel
}

func (m *midiCVModule) Tick(frame uint64, p *Patch) {}
func (m *midiCVModule) Update(frame uint64, p *Patch) {}

// noteToVoltage converts a MIDI note number to the engine's 1V/oct
// convention with note 21 (A0, 27.5 Hz) at 0V.
func noteToVoltage(note int) float64 {
	return float64(note-21) / 12.0
}

func (m *midiCVModule) findFreeVoice() int {
	for i := 0; i < m.numVoices; i++ {
		if !m.voices[i].active {
			return i
		}
	}
	return -1
}

func (m *midiCVModule) findVoiceForNote(note, channel int) int {
	for i := 0; i < m.numVoices; i++ {
		if m.voices[i].active && m.voices[i].note == note && m.voices[i].channel == channel {
			return i
		}
	}
	return -1
}

// allocateVoiceRotate finds the next free voice starting the search at
// nextRotate (not voice 0), so repeated allocations spread wear evenly; if
// every voice is busy it steals the one currently sitting at nextRotate.
func (m *midiCVModule) allocateVoiceRotate() int {
	for i := 0; i < m.numVoices; i++ {
		idx := (m.nextRotate + i) % m.numVoices
		if !m.voices[idx].active {
			m.nextRotate = (idx + 1) % m.numVoices
			return idx
		}
	}
	idx := m.nextRotate
	m.nextRotate = (idx + 1) % m.numVoices
	return idx
}

func (m *midiCVModule) allocateVoice(note, channel, velocity int) {
	m.frameCount++
	var idx int
	switch m.mode {
	case PolyRotate:
		idx = m.allocateVoiceRotate()
	case PolyReset:
		// Always scan from voice 0; a full bank steals the last voice.
		if free := m.findFreeVoice(); free >= 0 {
			idx = free
		} else {
			idx = m.numVoices - 1
		}
	case PolyMpe:
		// MIDI channel k > 0 maps directly to voice k-1; channel 0 (the
		// MPE master channel) folds onto voice 0.
		if channel > 0 {
			idx = (channel - 1) % m.numVoices
		} else {
			idx = 0
		}
	default: // PolyReuse
		if existing := m.findVoiceForNote(note, channel); existing >= 0 {
			idx = existing
		} else {
			// Fall through to rotate behavior.
			idx = m.allocateVoiceRotate()
		}
	}
	m.voices[idx] = midiCVVoice{
		active:   true,
		note:     note,
		channel:  channel,
		velocity: velocity,
		age:      m.frameCount,
	}
}

func (m *midiCVModule) releaseNote(note, channel int) {
	idx := m.findVoiceForNote(note, channel)
	if idx < 0 {
		return
	}
	if m.sustainDown[channel] {
		m.voices[idx].sustainedBy = true
		return
	}
	m.voices[idx] = midiCVVoice{}
}

func (m *midiCVModule) releaseSustainedVoices(channel int) {
	for i := 0; i < m.numVoices; i++ {
		if m.voices[i].active && m.voices[i].channel == channel && m.voices[i].sustainedBy {
			m.voices[i] = midiCVVoice{}
		}
	}
}

func (m *midiCVModule) GetSample(port string, channel int) float64 {
	poly := m.GetPoly(port)
	if channel < 0 || channel >= poly.N {
		return 0
	}
	return poly.Values[channel]
}

func (m *midiCVModule) GetPoly(port string) PolySignal {
	var ps PolySignal
	ps.N = m.numVoices
	for i := 0; i < m.numVoices; i++ {
		v := m.voices[i]
		switch port {
		case "pitch":
			bend := m.globalBendSemitones
			if m.mode == PolyMpe {
				bend = m.perChannelBend[v.channel]
			}
			ps.Values[i] = noteToVoltage(v.note) + bend*m.bendRangeSemitones/12.0
		case "gate":
			if v.active {
				ps.Values[i] = 5
			}
		case "velocity":
			if v.active {
				ps.Values[i] = float64(v.velocity) / 127.0 * 5.0
			}
		case "aftertouch":
			at := m.globalAftertouch
			if m.mode == PolyMpe {
				at = m.perChannelAftertouch[v.channel]
			}
			if v.active {
				ps.Values[i] = at
			}
		case "mod_wheel":
			ps.Values[i] = m.globalModWheel * 5.0
		}
	}
	return ps
}

func (m *midiCVModule) HandleMessage(msg Message) {
	switch msg.Tag {
	case "midi_note_on":
		n, ok := msg.Payload.(MidiNoteOnMessage)
		if !ok {
			return
		}
		if !m.shouldProcessDevice(n.Device) || !m.shouldProcessChannel(n.Channel) {
			return
		}
		if n.Velocity == 0 {
			m.releaseNote(n.Note, n.Channel)
			return
		}
		m.allocateVoice(n.Note, n.Channel, n.Velocity)
	case "midi_note_off":
		n, ok := msg.Payload.(MidiNoteOffMessage)
		if !ok {
			return
		}
		if !m.shouldProcessDevice(n.Device) || !m.shouldProcessChannel(n.Channel) {
			return
		}
		m.releaseNote(n.Note, n.Channel)
	case "midi_sustain":
		s, ok := msg.Payload.(MidiSustainMessage)
		if !ok {
			return
		}
		m.sustainDown[s.Channel] = s.Down
		if !s.Down {
			m.releaseSustainedVoices(s.Channel)
		}
	case "midi_pitch_bend":
		b, ok := msg.Payload.(MidiPitchBendMessage)
		if !ok {
			return
		}
		if m.mode == PolyMpe {
			m.perChannelBend[b.Channel] = b.Value
		} else {
			m.globalBendSemitones = b.Value
		}
	case "midi_aftertouch":
		a, ok := msg.Payload.(MidiAftertouchMessage)
		if !ok {
			return
		}
		if m.mode == PolyMpe {
			m.perChannelAftertouch[a.Channel] = a.Value
		} else {
			m.globalAftertouch = a.Value
		}
	case "midi_cc":
		cc, ok := msg.Payload.(MidiCCMessage)
		if !ok {
			return
		}
		if cc.CC == 1 { // mod wheel
			m.globalModWheel = float64(cc.Value) / 127.0
		}
	case "midi_panic":
		for i := range m.voices {
			m.voices[i] = midiCVVoice{}
		}
		m.sustainDown = make(map[int]bool)
	}
}

func (m *midiCVModule) ListensFor() []string {
	return []string{
		"midi_note_on", "midi_note_off", "midi_sustain",
		"midi_pitch_bend", "midi_aftertouch", "midi_cc", "midi_panic",
	}
}

// MidiSustainMessage carries a sustain-pedal (CC 64) transition.
type MidiSustainMessage struct {
	Channel int
	Down    bool
}

// MidiPitchBendMessage carries a pitch bend value normalized to [-1, 1]
// semitone-range multiplier (the module multiplies by bend_range itself).
type MidiPitchBendMessage struct {
	Channel int
	Value   float64
}

// MidiAftertouchMessage carries channel-pressure aftertouch normalized to
// [0, 1].
type MidiAftertouchMessage struct {
	Channel int
	Value   float64
}
