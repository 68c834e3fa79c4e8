// env_perc.go - Percussive envelope: fixed curve shape, single decay time

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// envPercModule is a drum-style envelope: a gate edge snaps it to 1 and it
// decays exponentially, reaching ~0.1% of peak at decayIn seconds, with no
// sustain stage at all - holding the gate high does not hold the level.
// The curve parameter warps the time axis (curve > 1 front-loads the
// drop), leaving the endpoint fixed.
type envPercModule struct {
	moduleBase

	gateIn  Signal
	decayIn Signal
	curveIn Signal

	decaySmooth Smoother
	curveSmooth Smoother

	elapsed  float64
	active   bool
	prevGate float64
}

func newEnvPercModule(id string, params map[string]any) (Module, error) {
	m := &envPercModule{
		moduleBase:  newModuleBase(id, "env_perc"),
		gateIn:      VoltsSignal(0),
		decayIn:     VoltsSignal(0.3),
		curveIn:     VoltsSignal(1.0),
		decaySmooth: NewSmoother(0.3),
		curveSmooth: NewSmoother(1.0),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("env_perc", newEnvPercModule) }

func (m *envPercModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("env_perc", k)
		}
		switch k {
		case "decay":
			m.decayIn = VoltsSignal(f)
		case "curve":
			m.curveIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("env_perc", k)
		}
	}
	return nil
}

func (m *envPercModule) Connect(port string, sig Signal) error {
	switch port {
	case "gate":
		m.gateIn = sig
	case "decay":
		m.decayIn = sig
	case "curve":
		m.curveIn = sig
	default:
		return ErrUnknownPort("env_perc", port)
	}
	return nil
}

func (m *envPercModule) Tick(frame uint64, p *Patch) {
	if !m.ShouldTick(frame) {
		return
	}
	if !m.active {
		return
	}
	decay := m.decaySmooth.Value()
	if decay < 0.001 {
		decay = 0.001
	}
	m.elapsed += 1.0 / SampleRate
	if m.elapsed >= decay {
		m.active = false
	}
}

func (m *envPercModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.decaySmooth.SetTarget(p.Resolve(m.decayIn))
	m.curveSmooth.SetTarget(p.Resolve(m.curveIn))
	m.decaySmooth.Next()
	m.curveSmooth.Next()

	gate := p.Resolve(m.gateIn)
	if gate > 0.5 && m.prevGate <= 0.5 {
		m.elapsed = 0
		m.active = true
	}
	m.prevGate = gate
}

func (m *envPercModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	if !m.active {
		return 0
	}
	decay := m.decaySmooth.Value()
	if decay < 0.001 {
		decay = 0.001
	}
	frac := m.elapsed / decay
	if frac > 1 {
		frac = 1
	}
	curve := m.curveSmooth.Value()
	if curve < 0.01 {
		curve = 0.01
	}
	// 0.001^1 at the end of the decay time: three decades of exponential
	// fall, effectively silent without a hard step to zero.
	return math.Pow(0.001, math.Pow(frac, curve))
}

func (m *envPercModule) HandleMessage(msg Message) {}
