// filter_ladder.go - TB-303-style 4-pole transistor ladder lowpass filter

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// ladderModule is a four-cascaded-one-pole ladder with resonance fed back
// from the final stage, tanh-saturated at each stage the way the original
// transistor ladder clips - the same softclip idiom the audio callback
// uses on the master output, applied here per-stage instead of just once
// at the end, which is what gives the ladder its characteristic growl as
// resonance and drive climb together.
type ladderModule struct {
	moduleBase

	inIn     Signal
	cutoffIn Signal
	resIn    Signal
	driveIn  Signal

	cutoffSm Smoother
	resSm    Smoother
	driveSm  Smoother

	s1, s2, s3, s4 float64
}

func newLadderModule(id string, params map[string]any) (Module, error) {
	m := &ladderModule{
		moduleBase: newModuleBase(id, "filter_ladder"),
		inIn:       VoltsSignal(0),
		cutoffIn:   VoltsSignal(5),
		resIn:      VoltsSignal(0.5),
		driveIn:    VoltsSignal(1.0),
		cutoffSm:   NewSmoother(5),
		resSm:      NewSmoother(0.5),
		driveSm:    NewSmoother(1.0),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("filter_ladder", newLadderModule) }

func (m *ladderModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("filter_ladder", k)
		}
		switch k {
		case "cutoff":
			m.cutoffIn = VoltsSignal(f)
		case "resonance":
			m.resIn = VoltsSignal(f)
		case "drive":
			m.driveIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("filter_ladder", k)
		}
	}
	return nil
}

func (m *ladderModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "cutoff":
		m.cutoffIn = sig
	case "resonance":
		m.resIn = sig
	case "drive":
		m.driveIn = sig
	default:
		return ErrUnknownPort("filter_ladder", port)
	}
	return nil
}

func (m *ladderModule) Tick(frame uint64, p *Patch) {}

func (m *ladderModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.cutoffSm.SetTarget(p.Resolve(m.cutoffIn))
	m.resSm.SetTarget(p.Resolve(m.resIn))
	m.driveSm.SetTarget(p.Resolve(m.driveIn))

	in := p.Resolve(m.inIn)
	cutoff := voctToHz(m.cutoffSm.Next())
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > SampleRate/2-10 {
		cutoff = SampleRate/2 - 10
	}
	res := m.resSm.Next()
	if res < 0 {
		res = 0
	}
	if res > 5 {
		res = 5
	}
	drive := m.driveSm.Next()

	g := 1 - math.Exp(-2*math.Pi*cutoff/SampleRate)

	// resonance 0-5 maps to feedback 0-4, self-oscillation at the top.
	fb := res * 0.8 * m.s4
	x := math.Tanh(in*drive - fb)

	m.s1 += g * (x - m.s1)
	m.s2 += g * (math.Tanh(m.s1) - m.s2)
	m.s3 += g * (math.Tanh(m.s2) - m.s3)
	m.s4 += g * (math.Tanh(m.s3) - m.s4)
}

func (m *ladderModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.s4
}

func (m *ladderModule) HandleMessage(msg Message) {}
