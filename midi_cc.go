// midi_cc.go - MIDI Control Change to CV converter, with optional 14-bit high-res mode

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

// MidiCCMessage is the payload carried by the "midi_cc" message tag for a
// standard 7-bit Control Change.
type MidiCCMessage struct {
	Device  string
	Channel int // 0-indexed
	CC      int
	Value   int // 0-127
}

// MidiCC14Message is the payload for a 14-bit high-resolution CC pair
// (MSB on CC n, LSB on CC n+32), already combined by the MIDI input layer.
type MidiCC14Message struct {
	Device  string
	Channel int
	CC      int
	Value   int // 0-16383
}

// midiCCModule turns one specific CC number on one (or all) MIDI channels
// into a 0-5V control signal, smoothed with its own configurable time
// constant independent of the kernel-wide Smoother used elsewhere, since
// CC smoothing here is a user-facing knob rather than an anti-click fix.
type midiCCModule struct {
	moduleBase

	device      string
	cc          int
	channel     int // -1 = omni
	highRes     bool
	smoothingMs float64

	currentValue float64 // normalized 0..1
	smoothed     float64
}

func newMidiCCModule(id string, params map[string]any) (Module, error) {
	m := &midiCCModule{
		moduleBase: newModuleBase(id, "midi_cc"),
		channel:    -1,
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("midi_cc", newMidiCCModule) }

func (m *midiCCModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "device":
			s, ok := v.(string)
			if !ok {
				return ErrUnknownParam("midi_cc", k)
			}
			m.device = s
		case "cc":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_cc", k)
			}
			m.cc = int(f)
		case "channel":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_cc", k)
			}
			m.channel = int(f) - 1
		case "smoothing_ms":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("midi_cc", k)
			}
			m.smoothingMs = f
		case "high_resolution":
			b, ok := v.(bool)
			if !ok {
				return ErrUnknownParam("midi_cc", k)
			}
			m.highRes = b
		default:
			return ErrUnknownParam("midi_cc", k)
		}
	}
	return nil
}

func (m *midiCCModule) Connect(port string, sig Signal) error {
	return ErrUnknownPort("midi_cc", port)
}

func (m *midiCCModule) shouldProcessDevice(device string) bool {
	return m.device == "" || m.device == device
}

func (m *midiCCModule) shouldProcessChannel(channel int) bool {
	return m.channel < 0 || m.channel == channel
}

func (m *midiCCModule) Tick(frame uint64, p *Patch) {}

func (m *midiCCModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	target := m.currentValue * 5.0
	if m.smoothingMs > 0 {
		smoothingSamples := m.smoothingMs * SampleRate / 1000.0
		if smoothingSamples < 1 {
			smoothingSamples = 1
		}
		alpha := 1.0 / smoothingSamples
		m.smoothed += (target - m.smoothed) * alpha
	} else {
		m.smoothed = target
	}
}

func (m *midiCCModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.smoothed
}

func (m *midiCCModule) HandleMessage(msg Message) {
	switch msg.Tag {
	case "midi_cc":
		if m.highRes {
			return
		}
		cc, ok := msg.Payload.(MidiCCMessage)
		if !ok {
			return
		}
		if cc.CC == m.cc && m.shouldProcessDevice(cc.Device) && m.shouldProcessChannel(cc.Channel) {
			m.currentValue = float64(cc.Value) / 127.0
		}
	case "midi_cc14":
		if !m.highRes {
			return
		}
		cc, ok := msg.Payload.(MidiCC14Message)
		if !ok {
			return
		}
		if cc.CC == m.cc && m.shouldProcessDevice(cc.Device) && m.shouldProcessChannel(cc.Channel) {
			m.currentValue = float64(cc.Value) / 16383.0
		}
	}
}

func (m *midiCCModule) ListensFor() []string { return []string{"midi_cc", "midi_cc14"} }
