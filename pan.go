// pan.go - Mono-to-stereo constant-power panner

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// panModule takes a single mono input and a pan position in [-1, 1] and
// spreads it across two output channels using an equal-power law (sin/cos
// quarter-wave crossfade) rather than a linear crossfade, so the perceived
// loudness stays constant as pan sweeps from hard left to hard right
// instead of dipping in the center.
type panModule struct {
	moduleBase

	inIn  Signal
	panIn Signal

	panSm Smoother

	left, right float64
}

func newPanModule(id string, params map[string]any) (Module, error) {
	m := &panModule{
		moduleBase: newModuleBase(id, "pan"),
		inIn:       VoltsSignal(0),
		panIn:      VoltsSignal(0),
		panSm:      NewSmoother(0),
	}
	m.setChannelCount(2)
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

// FixedChannelCount: a panner is stereo out by construction.
func (m *panModule) FixedChannelCount() int { return 2 }

func init() { registerModule("pan", newPanModule) }

func (m *panModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		if k != "pan" {
			return ErrUnknownParam("pan", k)
		}
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("pan", k)
		}
		m.panIn = VoltsSignal(f)
	}
	return nil
}

func (m *panModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "pan":
		m.panIn = sig
	default:
		return ErrUnknownPort("pan", port)
	}
	return nil
}

func (m *panModule) Tick(frame uint64, p *Patch) {}

func (m *panModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.panSm.SetTarget(p.Resolve(m.panIn))

	in := p.Resolve(m.inIn)
	pos := m.panSm.Next()
	if pos < -1 {
		pos = -1
	}
	if pos > 1 {
		pos = 1
	}
	// Map [-1, 1] -> [0, pi/2] and use the quarter-wave sin/cos pair, the
	// standard equal-power panning law.
	theta := (pos + 1) * (math.Pi / 4)
	m.left = in * math.Cos(theta)
	m.right = in * math.Sin(theta)
}

func (m *panModule) GetSample(port string, channel int) float64 {
	switch port {
	case "out":
		switch channel {
		case 0:
			return m.left
		case 1:
			return m.right
		}
		return 0
	case "left":
		return m.left
	case "right":
		return m.right
	}
	return 0
}

func (m *panModule) GetPoly(port string) PolySignal {
	if port != "out" {
		return Silent()
	}
	var ps PolySignal
	ps.N = 2
	ps.Values[0] = m.left
	ps.Values[1] = m.right
	return ps
}

func (m *panModule) HandleMessage(msg Message) {}
