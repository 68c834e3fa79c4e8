// mix.go - Mix, Sum, and PolyMix: the patch's signal-combining primitives

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// mixModule is a fixed 4-input weighted mixer: each input has its own gain
// and the output is their weighted sum, matching a simple mixer-channel
// strip rather than a general N-ary sum.
type mixModule struct {
	moduleBase

	ins   [4]Signal
	gains [4]Signal

	gainSm [4]Smoother
	out    float64
}

func newMixModule(id string, params map[string]any) (Module, error) {
	m := &mixModule{moduleBase: newModuleBase(id, "mix")}
	for i := range m.ins {
		m.ins[i] = VoltsSignal(0)
		m.gains[i] = VoltsSignal(1)
		m.gainSm[i] = NewSmoother(1)
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("mix", newMixModule) }

func (m *mixModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		idx, ok := mixGainKey(k)
		if !ok {
			return ErrUnknownParam("mix", k)
		}
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("mix", k)
		}
		m.gains[idx] = VoltsSignal(f)
	}
	return nil
}

func mixGainKey(k string) (int, bool) {
	switch k {
	case "gain1":
		return 0, true
	case "gain2":
		return 1, true
	case "gain3":
		return 2, true
	case "gain4":
		return 3, true
	}
	return 0, false
}

func (m *mixModule) Connect(port string, sig Signal) error {
	switch port {
	case "in1":
		m.ins[0] = sig
	case "in2":
		m.ins[1] = sig
	case "in3":
		m.ins[2] = sig
	case "in4":
		m.ins[3] = sig
	case "gain1":
		m.gains[0] = sig
	case "gain2":
		m.gains[1] = sig
	case "gain3":
		m.gains[2] = sig
	case "gain4":
		m.gains[3] = sig
	default:
		return ErrUnknownPort("mix", port)
	}
	return nil
}

func (m *mixModule) Tick(frame uint64, p *Patch) {}

func (m *mixModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	sum := 0.0
	for i := range m.ins {
		m.gainSm[i].SetTarget(p.Resolve(m.gains[i]))
		sum += p.Resolve(m.ins[i]) * m.gainSm[i].Next()
	}
	m.out = sum
}

func (m *mixModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *mixModule) HandleMessage(msg Message) {}

// sumModule is an unweighted N-input adder over up to 8 inputs, the
// simplest possible combiner for patch points that just need summing
// without per-input gain.
type sumModule struct {
	moduleBase

	ins [8]Signal
	out float64
}

func newSumModule(id string, params map[string]any) (Module, error) {
	m := &sumModule{moduleBase: newModuleBase(id, "sum")}
	for i := range m.ins {
		m.ins[i] = VoltsSignal(0)
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("sum", newSumModule) }

func (m *sumModule) TryUpdateParams(params map[string]any) error {
	if len(params) == 0 {
		return nil
	}
	return ErrUnknownParam("sum", firstKey(params))
}

func (m *sumModule) Connect(port string, sig Signal) error {
	idx, ok := sumPortIndex(port)
	if !ok {
		return ErrUnknownPort("sum", port)
	}
	m.ins[idx] = sig
	return nil
}

func sumPortIndex(port string) (int, bool) {
	names := []string{"in1", "in2", "in3", "in4", "in5", "in6", "in7", "in8"}
	for i, n := range names {
		if n == port {
			return i, true
		}
	}
	return 0, false
}

func (m *sumModule) Tick(frame uint64, p *Patch) {}

func (m *sumModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	sum := 0.0
	for _, in := range m.ins {
		sum += p.Resolve(in)
	}
	m.out = sum
}

func (m *sumModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *sumModule) HandleMessage(msg Message) {}

// polyMixModule sums a single poly-width cable's active channels into one
// mono output - the standard way a poly sequencer or MPE voice bank gets
// collapsed down to something a mono effect can process.
type polyMixMode int

const (
	polyMixSum polyMixMode = iota
	polyMixAverage
	polyMixMax
	polyMixMin
)

type polyMixModule struct {
	moduleBase

	in   Signal
	mode polyMixMode
	out  float64
}

func newPolyMixModule(id string, params map[string]any) (Module, error) {
	m := &polyMixModule{moduleBase: newModuleBase(id, "poly_mix"), in: VoltsSignal(0)}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("poly_mix", newPolyMixModule) }

func (m *polyMixModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		if k != "mode" {
			return ErrUnknownParam("poly_mix", k)
		}
		s, ok := v.(string)
		if !ok {
			return ErrUnknownParam("poly_mix", k)
		}
		switch s {
		case "sum":
			m.mode = polyMixSum
		case "average":
			m.mode = polyMixAverage
		case "max":
			m.mode = polyMixMax
		case "min":
			m.mode = polyMixMin
		default:
			return ErrUnknownParam("poly_mix", k)
		}
	}
	return nil
}

func (m *polyMixModule) Connect(port string, sig Signal) error {
	if port != "in" {
		return ErrUnknownPort("poly_mix", port)
	}
	m.in = sig
	return nil
}

func (m *polyMixModule) Tick(frame uint64, p *Patch) {}

func (m *polyMixModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	c, ok := m.in.AsCable()
	if !ok {
		m.out = p.Resolve(m.in)
		return
	}
	src, ok := p.Module(c.ModuleID)
	if !ok {
		m.out = 0
		return
	}
	pm, ok := src.(polySource)
	if !ok {
		m.out = src.GetSample(c.Port, c.Channel)
		return
	}
	poly := pm.GetPoly(c.Port)
	m.out = reducePoly(poly, m.mode)
}

// reducePoly folds a poly signal's active channels down to one scalar per
// the requested PolyMix mode; an empty poly reduces to 0 for every mode.
// Max and Min compare magnitude but keep the winning sample's sign, so a
// loud negative swing wins Max over a quieter positive one - magnitude is
// what matters when picking the dominant voice out of a bank.
func reducePoly(poly PolySignal, mode polyMixMode) float64 {
	if poly.N <= 0 {
		return 0
	}
	switch mode {
	case polyMixAverage:
		sum := 0.0
		for i := 0; i < poly.N; i++ {
			sum += poly.Values[i]
		}
		return sum / float64(poly.N)
	case polyMixMax:
		best := poly.Values[0]
		for i := 1; i < poly.N; i++ {
			if math.Abs(poly.Values[i]) > math.Abs(best) {
				best = poly.Values[i]
			}
		}
		return best
	case polyMixMin:
		best := poly.Values[0]
		for i := 1; i < poly.N; i++ {
			if math.Abs(poly.Values[i]) < math.Abs(best) {
				best = poly.Values[i]
			}
		}
		return best
	default: // polyMixSum
		sum := 0.0
		for i := 0; i < poly.N; i++ {
			sum += poly.Values[i]
		}
		return sum
	}
}

func (m *polyMixModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *polyMixModule) HandleMessage(msg Message) {}

// polySource is implemented by modules whose output port can carry more
// than one active channel (sequencers, MIDI-to-CV voice banks) so that
// poly-aware consumers like polyMixModule can read every channel at once
// instead of just channel 0.
type polySource interface {
	GetPoly(port string) PolySignal
}
