// filter_sem.go - Oberheim SEM-style 12dB multimode filter with mode-mix output

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// semModule reuses the Chamberlin two-integrator core (same derivation as
// filter_svf.go) but exposes it as a single continuously-variable "mix"
// control that crossfades lowpass -> notch -> highpass the way the SEM's
// mode switch plus a blend pot would, rather than a hard enum selector.
type semModule struct {
	moduleBase

	inIn     Signal
	cutoffIn Signal
	resIn    Signal
	mixIn    Signal

	cutoffSm Smoother
	resSm    Smoother
	mixSm    Smoother

	low, band, high, notch float64
}

func newSEMModule(id string, params map[string]any) (Module, error) {
	m := &semModule{
		moduleBase: newModuleBase(id, "filter_sem"),
		inIn:       VoltsSignal(0),
		cutoffIn:   VoltsSignal(5),
		resIn:      VoltsSignal(0.5),
		mixIn:      VoltsSignal(0),
		cutoffSm:   NewSmoother(5),
		resSm:      NewSmoother(0.5),
		mixSm:      NewSmoother(0),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("filter_sem", newSEMModule) }

func (m *semModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("filter_sem", k)
		}
		switch k {
		case "cutoff":
			m.cutoffIn = VoltsSignal(f)
		case "resonance":
			m.resIn = VoltsSignal(f)
		case "mix":
			m.mixIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("filter_sem", k)
		}
	}
	return nil
}

func (m *semModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "cutoff":
		m.cutoffIn = sig
	case "resonance":
		m.resIn = sig
	case "mix":
		m.mixIn = sig
	default:
		return ErrUnknownPort("filter_sem", port)
	}
	return nil
}

func (m *semModule) Tick(frame uint64, p *Patch) {}

func (m *semModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.cutoffSm.SetTarget(p.Resolve(m.cutoffIn))
	m.resSm.SetTarget(p.Resolve(m.resIn))
	m.mixSm.SetTarget(p.Resolve(m.mixIn))
	m.mixSm.Next()

	in := p.Resolve(m.inIn)
	cutoff := voctToHz(m.cutoffSm.Next())
	if cutoff > SampleRate/3 {
		cutoff = SampleRate / 3
	}
	if cutoff < 1 {
		cutoff = 1
	}
	res := m.resSm.Next()
	if res < 0 {
		res = 0
	}
	if res > 5 {
		res = 5
	}

	f := 2 * math.Sin(math.Pi*cutoff/SampleRate)
	q := 2 * (1 - res/5)
	if q < 0.02 {
		q = 0.02
	}

	m.low += f * m.band
	m.high = in - m.low - q*m.band
	m.band += f * m.high
	m.notch = m.high + m.low
}

func (m *semModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	mix := m.mixSm.Value()
	if mix < 0 {
		mix = 0
	}
	if mix > 1 {
		mix = 1
	}
	if mix <= 0.5 {
		t := mix * 2
		return m.low*(1-t) + m.notch*t
	}
	t := (mix - 0.5) * 2
	return m.notch*(1-t) + m.high*t
}

func (m *semModule) HandleMessage(msg Message) {}
