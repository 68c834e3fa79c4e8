// env_ad.go - Attack/Decay envelope generator, retriggered by a gate edge

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

type adStage int

const (
	adIdle adStage = iota
	adAttack
	adDecay
)

// envADModule is a one-shot AD envelope: a rising edge on gate restarts it
// from zero, it ramps linearly to 1 over attackIn seconds, then decays
// exponentially to 0 over decayIn seconds, and then sits idle at 0 until
// the next trigger.
type envADModule struct {
	moduleBase

	gateIn   Signal
	attackIn Signal
	decayIn  Signal

	attackSmooth Smoother
	decaySmooth  Smoother

	stage    adStage
	value    float64
	prevGate float64
}

func newEnvADModule(id string, params map[string]any) (Module, error) {
	m := &envADModule{
		moduleBase:   newModuleBase(id, "env_ad"),
		gateIn:       VoltsSignal(0),
		attackIn:     VoltsSignal(0.01),
		decayIn:      VoltsSignal(0.2),
		attackSmooth: NewSmoother(0.01),
		decaySmooth:  NewSmoother(0.2),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("env_ad", newEnvADModule) }

func (m *envADModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("env_ad", k)
		}
		switch k {
		case "attack":
			m.attackIn = VoltsSignal(f)
		case "decay":
			m.decayIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("env_ad", k)
		}
	}
	return nil
}

func (m *envADModule) Connect(port string, sig Signal) error {
	switch port {
	case "gate":
		m.gateIn = sig
	case "attack":
		m.attackIn = sig
	case "decay":
		m.decayIn = sig
	default:
		return ErrUnknownPort("env_ad", port)
	}
	return nil
}

func (m *envADModule) Tick(frame uint64, p *Patch) {
	if !m.ShouldTick(frame) {
		return
	}
	attack := m.attackSmooth.Next()
	decay := m.decaySmooth.Next()

	switch m.stage {
	case adAttack:
		step := 1.0 / (attack * SampleRate)
		m.value += step
		if m.value >= 1 {
			m.value = 1
			m.stage = adDecay
		}
	case adDecay:
		tau := decay * SampleRate
		if tau < 1 {
			tau = 1
		}
		// Per-sample factor sized so the idle threshold is reached after
		// decay seconds.
		m.value *= math.Pow(0.0005, 1/tau)
		if m.value <= 0.0005 {
			m.value = 0
			m.stage = adIdle
		}
	}
}

func (m *envADModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.attackSmooth.SetTarget(p.Resolve(m.attackIn))
	m.decaySmooth.SetTarget(p.Resolve(m.decayIn))

	gate := p.Resolve(m.gateIn)
	if gate > 0.5 && m.prevGate <= 0.5 {
		m.value = 0
		m.stage = adAttack
	}
	m.prevGate = gate
}

func (m *envADModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.value
}

func (m *envADModule) HandleMessage(msg Message) {}
