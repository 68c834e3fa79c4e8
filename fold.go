// fold.go - Wavefolder: reflects the signal back below a threshold instead of clipping

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// foldModule implements triangle-style wavefolding directly rather than
// via a lookup table: a sample that would exceed the fold threshold is
// reflected back into range, repeatedly if it overshoots by more than one
// period. Reflection preserves slope continuity at the fold point, which
// hard clipping does not, so the added harmonics stay odd-ordered and
// musical as the amount climbs.
type foldModule struct {
	moduleBase

	inIn     Signal
	amountIn Signal

	amountSm Smoother
	out      float64
}

func newFoldModule(id string, params map[string]any) (Module, error) {
	m := &foldModule{
		moduleBase: newModuleBase(id, "fold"),
		inIn:       VoltsSignal(0),
		amountIn:   VoltsSignal(1),
		amountSm:   NewSmoother(1),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("fold", newFoldModule) }

func (m *foldModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		if k != "amount" {
			return ErrUnknownParam("fold", k)
		}
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("fold", k)
		}
		m.amountIn = VoltsSignal(f)
	}
	return nil
}

func (m *foldModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "amount":
		m.amountIn = sig
	default:
		return ErrUnknownPort("fold", port)
	}
	return nil
}

func (m *foldModule) Tick(frame uint64, p *Patch) {}

func (m *foldModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.amountSm.SetTarget(p.Resolve(m.amountIn))
	amount := m.amountSm.Next()
	if amount < 0.01 {
		amount = 0.01
	}
	in := p.Resolve(m.inIn) * amount
	m.out = foldTriangle(in)
}

// foldTriangle reflects x into [-1, 1] using a triangle-wave mapping,
// equivalent to the repeated "bounce off the rails" reflection a wavefolder
// circuit performs but expressed with a single fmod instead of a loop.
func foldTriangle(x float64) float64 {
	period := 4.0
	y := math.Mod(x+1, period)
	if y < 0 {
		y += period
	}
	if y > 2 {
		y = period - y
	}
	return y - 1
}

func (m *foldModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *foldModule) HandleMessage(msg Message) {}
