// audio_in.go - Hidden module exposing the live audio input as a cable source

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

// audioInModule has no parameters and no message interest; it just buffers
// whatever PushAudioIn wrote this frame so cables can read it like any
// other module's output.
type audioInModule struct {
	moduleBase
	channels [2]float64
}

func newAudioInModule(id string) *audioInModule {
	m := &audioInModule{moduleBase: newModuleBase(id, "audio_in")}
	m.setChannelCount(len(m.channels))
	return m
}

// FixedChannelCount: the input bus carries a stereo pair.
func (m *audioInModule) FixedChannelCount() int { return len(m.channels) }

func (m *audioInModule) set(channel int, v float64) {
	if channel >= 0 && channel < len(m.channels) {
		m.channels[channel] = v
	}
}

func (m *audioInModule) Tick(frame uint64, p *Patch)   {}
func (m *audioInModule) Update(frame uint64, p *Patch) {}

func (m *audioInModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	if channel < 0 || channel >= len(m.channels) {
		return 0
	}
	return m.channels[channel]
}

func (m *audioInModule) TryUpdateParams(params map[string]any) error {
	if len(params) == 0 {
		return nil
	}
	return ErrUnknownParam("audio_in", firstKey(params))
}

func (m *audioInModule) Connect(port string, sig Signal) error {
	return ErrUnknownPort("audio_in", port)
}

func (m *audioInModule) HandleMessage(msg Message) {}

func firstKey(m map[string]any) string {
	for k := range m {
		return k
	}
	return ""
}
