// filter_svf.go - Chamberlin state-variable filter: simultaneous lp/hp/bp/notch

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

type svfOutput int

const (
	svfLowpass svfOutput = iota
	svfHighpass
	svfBandpass
	svfNotch
)

func parseSVFOutput(v any) (svfOutput, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	switch s {
	case "lowpass":
		return svfLowpass, true
	case "highpass":
		return svfHighpass, true
	case "bandpass":
		return svfBandpass, true
	case "notch":
		return svfNotch, true
	}
	return 0, false
}

// svfModule is the classic Chamberlin two-integrator-loop topology. Unlike
// biquadModule it keeps all four tap points available on separate output
// ports every frame; "output" only selects which one GetSample("out", _)
// reports. Cutoff is a V/Oct pitch CV, resonance runs 0-5.
type svfModule struct {
	moduleBase

	output svfOutput

	inIn       Signal
	cutoffIn   Signal
	resIn      Signal
	cutoffSm   Smoother
	resSm      Smoother

	low, band, high, notch float64
}

func newSVFModule(id string, params map[string]any) (Module, error) {
	m := &svfModule{
		moduleBase: newModuleBase(id, "filter_svf"),
		output:     svfLowpass,
		inIn:       VoltsSignal(0),
		cutoffIn:   VoltsSignal(5),
		resIn:      VoltsSignal(0.5),
		cutoffSm:   NewSmoother(5),
		resSm:      NewSmoother(0.5),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("filter_svf", newSVFModule) }

func (m *svfModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "output":
			out, ok := parseSVFOutput(v)
			if !ok {
				return ErrUnknownParam("filter_svf", k)
			}
			m.output = out
		case "cutoff":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("filter_svf", k)
			}
			m.cutoffIn = VoltsSignal(f)
		case "resonance":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("filter_svf", k)
			}
			m.resIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("filter_svf", k)
		}
	}
	return nil
}

func (m *svfModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "cutoff":
		m.cutoffIn = sig
	case "resonance":
		m.resIn = sig
	default:
		return ErrUnknownPort("filter_svf", port)
	}
	return nil
}

func (m *svfModule) Tick(frame uint64, p *Patch) {}

func (m *svfModule) Update(frame uint64, p *Patch) {
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
	q := 2 * (1 - res/5)
	if q < 0.02 {
		q = 0.02
	}

	m.low += f * m.band
	m.high = in - m.low - q*m.band
	m.band += f * m.high
	m.notch = m.high + m.low
}

func (m *svfModule) GetSample(port string, channel int) float64 {
	switch port {
	case "out":
		switch m.output {
		case svfLowpass:
			return m.low
		case svfHighpass:
			return m.high
		case svfBandpass:
			return m.band
		case svfNotch:
			return m.notch
		}
	case "lowpass":
		return m.low
	case "highpass":
		return m.high
	case "bandpass":
		return m.band
	case "notch":
		return m.notch
	}
	return 0
}

func (m *svfModule) HandleMessage(msg Message) {}
