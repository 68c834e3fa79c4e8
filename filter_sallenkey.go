// filter_sallenkey.go - Sallen-Key 2-pole lowpass, unity-gain feedback topology

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// sallenKeyModule implements the Sallen-Key unity-gain lowpass as a
// trapezoidal (zero-delay-feedback) discretization, the same family of
// derivation as the Chamberlin SVF but solved for the Sallen-Key feedback
// path instead, giving a gentler resonance character than the SVF at
// matched Q.
type sallenKeyModule struct {
	moduleBase

	inIn     Signal
	cutoffIn Signal
	qIn      Signal

	cutoffSm Smoother
	qSm      Smoother

	z1, z2 float64
}

func newSallenKeyModule(id string, params map[string]any) (Module, error) {
	m := &sallenKeyModule{
		moduleBase: newModuleBase(id, "filter_sallenkey"),
		inIn:       VoltsSignal(0),
		cutoffIn:   VoltsSignal(5),
		qIn:        VoltsSignal(0.707),
		cutoffSm:   NewSmoother(5),
		qSm:        NewSmoother(0.707),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("filter_sallenkey", newSallenKeyModule) }

func (m *sallenKeyModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("filter_sallenkey", k)
		}
		switch k {
		case "cutoff":
			m.cutoffIn = VoltsSignal(f)
		case "q":
			m.qIn = VoltsSignal(f)
		case "resonance":
			m.qIn = VoltsSignal(resonanceToQ(f))
		default:
			return ErrUnknownParam("filter_sallenkey", k)
		}
	}
	return nil
}

func (m *sallenKeyModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "cutoff":
		m.cutoffIn = sig
	case "q":
		m.qIn = sig
	default:
		return ErrUnknownPort("filter_sallenkey", port)
	}
	return nil
}

func (m *sallenKeyModule) Tick(frame uint64, p *Patch) {}

func (m *sallenKeyModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.cutoffSm.SetTarget(p.Resolve(m.cutoffIn))
	m.qSm.SetTarget(p.Resolve(m.qIn))

	in := p.Resolve(m.inIn)
	cutoff := voctToHz(m.cutoffSm.Next())
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > SampleRate/2-10 {
		cutoff = SampleRate/2 - 10
	}
	q := m.qSm.Next()
	if q < 0.3 {
		q = 0.3
	}

	wc := 2 * math.Pi * cutoff / SampleRate
	g := math.Tan(wc / 2)
	k := 1 / q

	denom := 1 + g*g + g*k
	hp := (in - k*m.z1 - m.z2) / denom
	bp := g*hp + m.z1
	lp := g*bp + m.z2

	m.z1 = g*hp + bp
	m.z2 = g*bp + lp
}

func (m *sallenKeyModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.z2
}

func (m *sallenKeyModule) HandleMessage(msg Message) {}
