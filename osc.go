// osc.go - Oscillator module: sine, saw, pulse, and noise waveforms

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"math"
	"math/rand"
)

type oscWaveform int

const (
	oscSine oscWaveform = iota
	oscSaw
	oscPulse
	oscNoise
)

func parseOscWaveform(v any) (oscWaveform, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	switch s {
	case "sine":
		return oscSine, true
	case "saw":
		return oscSaw, true
	case "pulse":
		return oscPulse, true
	case "noise":
		return oscNoise, true
	}
	return 0, false
}

// oscModule is a single free-running oscillator. Frequency and pulse width
// are both cable-able; freq is a V/Oct pitch CV (0 V = 27.5 Hz), so a
// sequencer's cv output plugs straight in with no quantizer in between.
type oscModule struct {
	moduleBase

	waveform oscWaveform
	freqIn   Signal
	pwIn     Signal

	freqSmooth Smoother
	pwSmooth   Smoother

	phase float64
	rng   *rand.Rand
	noise float64
}

func newOscModule(id string, params map[string]any) (Module, error) {
	m := &oscModule{
		moduleBase: newModuleBase(id, "osc"),
		waveform:   oscSine,
		freqIn:     VoltsSignal(4),
		pwIn:       VoltsSignal(0.5),
		freqSmooth: NewSmoother(4),
		pwSmooth:   NewSmoother(0.5),
		rng:        rand.New(rand.NewSource(1)),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("osc", newOscModule) }

func (m *oscModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "waveform":
			wf, ok := parseOscWaveform(v)
			if !ok {
				return ErrUnknownParam("osc", k)
			}
			m.waveform = wf
		case "freq":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("osc", k)
			}
			m.freqIn = VoltsSignal(f)
		case "pulse_width":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("osc", k)
			}
			m.pwIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("osc", k)
		}
	}
	return nil
}

func (m *oscModule) Connect(port string, sig Signal) error {
	switch port {
	case "freq":
		m.freqIn = sig
	case "pulse_width":
		m.pwIn = sig
	default:
		return ErrUnknownPort("osc", port)
	}
	return nil
}

func (m *oscModule) Tick(frame uint64, p *Patch) {
	if !m.ShouldTick(frame) {
		return
	}
	freq := voctToHz(m.freqSmooth.Next())
	m.pwSmooth.Next()
	m.phase += freq / SampleRate
	m.phase -= math.Floor(m.phase)
	m.noise = m.rng.Float64()*2 - 1
}

func (m *oscModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.freqSmooth.SetTarget(p.Resolve(m.freqIn))
	m.pwSmooth.SetTarget(p.Resolve(m.pwIn))
}

func (m *oscModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	switch m.waveform {
	case oscSine:
		return math.Sin(2 * math.Pi * m.phase)
	case oscSaw:
		return 2*m.phase - 1
	case oscPulse:
		pw := m.pwSmooth.Value()
		if m.phase < pw {
			return 1
		}
		return -1
	case oscNoise:
		return m.noise
	}
	return 0
}

func (m *oscModule) HandleMessage(msg Message) {
	if msg.Tag == "reset_phase" {
		m.phase = 0
	}
}

func (m *oscModule) ListensFor() []string { return []string{"reset_phase"} }

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
