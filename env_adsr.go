// env_adsr.go - Classic Attack/Decay/Sustain/Release envelope generator

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

type adsrStage int

const (
	adsrIdle adsrStage = iota
	adsrAttack
	adsrDecay
	adsrSustain
	adsrRelease
)

// envADSRModule follows the gate level directly rather than gate edges for
// its sustain/release transition: as long as gate stays high it holds at
// sustain, and the instant gate drops it begins release from wherever the
// envelope currently sits, not from the sustain level, so a release during
// attack or decay doesn't jump.
type envADSRModule struct {
	moduleBase

	gateIn    Signal
	attackIn  Signal
	decayIn   Signal
	sustainIn Signal
	releaseIn Signal

	attackSmooth  Smoother
	decaySmooth   Smoother
	sustainSmooth Smoother
	releaseSmooth Smoother

	stage    adsrStage
	value    float64
	prevGate float64
}

func newEnvADSRModule(id string, params map[string]any) (Module, error) {
	m := &envADSRModule{
		moduleBase:    newModuleBase(id, "env_adsr"),
		gateIn:        VoltsSignal(0),
		attackIn:      VoltsSignal(0.01),
		decayIn:       VoltsSignal(0.1),
		sustainIn:     VoltsSignal(0.7),
		releaseIn:     VoltsSignal(0.3),
		attackSmooth:  NewSmoother(0.01),
		decaySmooth:   NewSmoother(0.1),
		sustainSmooth: NewSmoother(0.7),
		releaseSmooth: NewSmoother(0.3),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("env_adsr", newEnvADSRModule) }

func (m *envADSRModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("env_adsr", k)
		}
		switch k {
		case "attack":
			m.attackIn = VoltsSignal(f)
		case "decay":
			m.decayIn = VoltsSignal(f)
		case "sustain":
			m.sustainIn = VoltsSignal(f)
		case "release":
			m.releaseIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("env_adsr", k)
		}
	}
	return nil
}

func (m *envADSRModule) Connect(port string, sig Signal) error {
	switch port {
	case "gate":
		m.gateIn = sig
	case "attack":
		m.attackIn = sig
	case "decay":
		m.decayIn = sig
	case "sustain":
		m.sustainIn = sig
	case "release":
		m.releaseIn = sig
	default:
		return ErrUnknownPort("env_adsr", port)
	}
	return nil
}

func (m *envADSRModule) Tick(frame uint64, p *Patch) {
	if !m.ShouldTick(frame) {
		return
	}
	attack := m.attackSmooth.Next()
	decay := m.decaySmooth.Next()
	sustain := m.sustainSmooth.Next()
	release := m.releaseSmooth.Next()

	switch m.stage {
	case adsrAttack:
		step := 1.0 / (attack * SampleRate)
		m.value += step
		if m.value >= 1 {
			m.value = 1
			m.stage = adsrDecay
		}
	case adsrDecay:
		tau := decay * SampleRate
		if tau < 1 {
			tau = 1
		}
		m.value -= (m.value - sustain) / tau
		if m.value <= sustain+0.0005 {
			m.value = sustain
			m.stage = adsrSustain
		}
	case adsrSustain:
		m.value = sustain
	case adsrRelease:
		tau := release * SampleRate
		if tau < 1 {
			tau = 1
		}
		m.value -= m.value / tau
		if m.value <= 0.0005 {
			m.value = 0
			m.stage = adsrIdle
		}
	}
}

func (m *envADSRModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.attackSmooth.SetTarget(p.Resolve(m.attackIn))
	m.decaySmooth.SetTarget(p.Resolve(m.decayIn))
	m.sustainSmooth.SetTarget(p.Resolve(m.sustainIn))
	m.releaseSmooth.SetTarget(p.Resolve(m.releaseIn))

	gate := p.Resolve(m.gateIn)
	if gate > 0.5 && m.prevGate <= 0.5 {
		m.stage = adsrAttack
	} else if gate <= 0.5 && m.prevGate > 0.5 {
		m.stage = adsrRelease
	}
	m.prevGate = gate
}

func (m *envADSRModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.value
}

func (m *envADSRModule) HandleMessage(msg Message) {}
