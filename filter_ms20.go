// filter_ms20.go - MS-20-style diode-ladder filter: SVF core with diode-pair clipping

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// ms20Module takes the same Chamberlin two-integrator core used by
// filter_svf.go and filter_sem.go, and inserts a tanh diode-pair clipper
// in the feedback path the way the MS-20's actual diode ladder clips the
// resonance signal before it re-enters the loop - this is what gives the
// MS-20 its aggressive, self-oscillation-prone character compared to the
// cleaner feedback of the SVF or SEM.
type ms20Module struct {
	moduleBase

	inIn     Signal
	cutoffIn Signal
	resIn    Signal

	cutoffSm Smoother
	resSm    Smoother

	low, band, high float64
}

func newMS20Module(id string, params map[string]any) (Module, error) {
	m := &ms20Module{
		moduleBase: newModuleBase(id, "filter_ms20"),
		inIn:       VoltsSignal(0),
		cutoffIn:   VoltsSignal(5),
		resIn:      VoltsSignal(1.5),
		cutoffSm:   NewSmoother(5),
		resSm:      NewSmoother(1.5),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("filter_ms20", newMS20Module) }

func (m *ms20Module) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("filter_ms20", k)
		}
		switch k {
		case "cutoff":
			m.cutoffIn = VoltsSignal(f)
		case "resonance":
			m.resIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("filter_ms20", k)
		}
	}
	return nil
}

func (m *ms20Module) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "cutoff":
		m.cutoffIn = sig
	case "resonance":
		m.resIn = sig
	default:
		return ErrUnknownPort("filter_ms20", port)
	}
	return nil
}

func (m *ms20Module) Tick(frame uint64, p *Patch) {}

func (m *ms20Module) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.cutoffSm.SetTarget(p.Resolve(m.cutoffIn))
	m.resSm.SetTarget(p.Resolve(m.resIn))

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
	fb := math.Tanh(res * m.band)

	m.low += f * m.band
	m.high = in - m.low - fb
	m.band += f * m.high
}

func (m *ms20Module) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.low
}

func (m *ms20Module) HandleMessage(msg Message) {}
