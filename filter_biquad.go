// filter_biquad.go - RBJ Audio EQ Cookbook biquad: lowpass/highpass/bandpass/notch/allpass

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

type biquadMode int

const (
	biquadLowpass biquadMode = iota
	biquadHighpass
	biquadBandpass
	biquadNotch
	biquadAllpass
)

func parseBiquadMode(v any) (biquadMode, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	switch s {
	case "lowpass":
		return biquadLowpass, true
	case "highpass":
		return biquadHighpass, true
	case "bandpass":
		return biquadBandpass, true
	case "notch":
		return biquadNotch, true
	case "allpass":
		return biquadAllpass, true
	}
	return 0, false
}

// biquadModule implements the RBJ cookbook direct-form-I biquad, recomputing
// its coefficients every frame from the (smoothed) cutoff and Q so that
// sweeping either parameter stays click-free without a separate crossfade.
type biquadModule struct {
	moduleBase

	mode biquadMode

	inIn     Signal
	cutoffIn Signal
	qIn      Signal

	cutoffSmooth Smoother
	qSmooth      Smoother

	x1, x2, y1, y2 float64
	out            float64
}

func newBiquadModule(id string, params map[string]any) (Module, error) {
	m := &biquadModule{
		moduleBase:   newModuleBase(id, "filter_biquad"),
		mode:         biquadLowpass,
		inIn:         VoltsSignal(0),
		cutoffIn:     VoltsSignal(5),
		qIn:          VoltsSignal(0.707),
		cutoffSmooth: NewSmoother(5),
		qSmooth:      NewSmoother(0.707),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("filter_biquad", newBiquadModule) }

func (m *biquadModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "mode":
			mode, ok := parseBiquadMode(v)
			if !ok {
				return ErrUnknownParam("filter_biquad", k)
			}
			m.mode = mode
		case "cutoff":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("filter_biquad", k)
			}
			m.cutoffIn = VoltsSignal(f)
		case "q":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("filter_biquad", k)
			}
			m.qIn = VoltsSignal(f)
		case "resonance":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("filter_biquad", k)
			}
			m.qIn = VoltsSignal(resonanceToQ(f))
		default:
			return ErrUnknownParam("filter_biquad", k)
		}
	}
	return nil
}

// resonanceToQ maps the 0-5 resonance range onto a usable biquad Q:
// 0 is just under critical damping, 5 rings hard without self-oscillating.
func resonanceToQ(res float64) float64 {
	if res < 0 {
		res = 0
	}
	if res > 5 {
		res = 5
	}
	return 0.5 + res*1.9
}

func (m *biquadModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "cutoff":
		m.cutoffIn = sig
	case "q":
		m.qIn = sig
	default:
		return ErrUnknownPort("filter_biquad", port)
	}
	return nil
}

func (m *biquadModule) Tick(frame uint64, p *Patch) {}

func (m *biquadModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.cutoffSmooth.SetTarget(p.Resolve(m.cutoffIn))
	m.qSmooth.SetTarget(p.Resolve(m.qIn))

	x0 := p.Resolve(m.inIn)

	cutoff := voctToHz(m.cutoffSmooth.Next())
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > SampleRate/2-1 {
		cutoff = SampleRate/2 - 1
	}
	q := m.qSmooth.Next()
	if q < 0.01 {
		q = 0.01
	}

	w0 := 2 * math.Pi * cutoff / SampleRate
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch m.mode {
	case biquadLowpass:
		b0 = (1 - cosw0) / 2
		b1 = 1 - cosw0
		b2 = (1 - cosw0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	case biquadHighpass:
		b0 = (1 + cosw0) / 2
		b1 = -(1 + cosw0)
		b2 = (1 + cosw0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	case biquadBandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	case biquadNotch:
		b0 = 1
		b1 = -2 * cosw0
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	case biquadAllpass:
		b0 = 1 - alpha
		b1 = -2 * cosw0
		b2 = 1 + alpha
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	}

	b0 /= a0
	b1 /= a0
	b2 /= a0
	a1 /= a0
	a2 /= a0

	y0 := b0*x0 + b1*m.x1 + b2*m.x2 - a1*m.y1 - a2*m.y2

	m.x2 = m.x1
	m.x1 = x0
	m.y2 = m.y1
	m.y1 = y0
	m.out = y0
}

func (m *biquadModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *biquadModule) HandleMessage(msg Message) {}
