// pulsar.go - Pulsar oscillator: a windowed grain repeated at an independent rate

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// pulsarModule re-triggers a short windowed grain of its input at freqIn
// Hz, with amount controlling the grain's width as a fraction of its
// period - at amount 0 the grain is nearly the whole period (closest to
// passing audio straight through) and at amount 1 it collapses to a
// narrow click-like pulse, a formant-rich timbre used the same way a
// pulsar synthesis oscillator is in granular/physical-modeling contexts.
type pulsarModule struct {
	moduleBase

	inIn     Signal
	freqIn   Signal
	amountIn Signal

	freqSm   Smoother
	amountSm Smoother

	phase float64
	out   float64
}

func newPulsarModule(id string, params map[string]any) (Module, error) {
	m := &pulsarModule{
		moduleBase: newModuleBase(id, "pulsar"),
		inIn:       VoltsSignal(0),
		freqIn:     VoltsSignal(100),
		amountIn:   VoltsSignal(0.5),
		freqSm:     NewSmoother(100),
		amountSm:   NewSmoother(0.5),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("pulsar", newPulsarModule) }

func (m *pulsarModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("pulsar", k)
		}
		switch k {
		case "freq":
			m.freqIn = VoltsSignal(f)
		case "amount":
			m.amountIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("pulsar", k)
		}
	}
	return nil
}

func (m *pulsarModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "freq":
		m.freqIn = sig
	case "amount":
		m.amountIn = sig
	default:
		return ErrUnknownPort("pulsar", port)
	}
	return nil
}

func (m *pulsarModule) Tick(frame uint64, p *Patch) {
	if !m.ShouldTick(frame) {
		return
	}
	freq := m.freqSm.Next()
	if freq < 0.01 {
		freq = 0.01
	}
	m.phase += freq / SampleRate
	m.phase -= math.Floor(m.phase)
}

func (m *pulsarModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.freqSm.SetTarget(p.Resolve(m.freqIn))
	m.amountSm.SetTarget(p.Resolve(m.amountIn))

	amount := m.amountSm.Next()
	if amount < 0 {
		amount = 0
	}
	if amount > 0.99 {
		amount = 0.99
	}
	width := 1 - amount

	in := p.Resolve(m.inIn)
	if m.phase >= width {
		m.out = 0
		return
	}
	// Raised-cosine window across the grain so the window's edges are
	// click-free even though the grain itself retriggers every cycle.
	window := 0.5 - 0.5*math.Cos(2*math.Pi*m.phase/width)
	m.out = in * window
}

func (m *pulsarModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *pulsarModule) HandleMessage(msg Message) {}
