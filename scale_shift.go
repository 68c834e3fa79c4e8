// scale_shift.go - ScaleAndShift (linear) and Remap (range-to-range) utilities

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

// scaleAndShiftModule computes out = in*scale + shift, the general-purpose
// linear transform used anywhere a cable needs rescaling before it reaches
// a parameter with a different natural range (e.g. an LFO at +-1 driving a
// filter cutoff in Hz).
type scaleAndShiftModule struct {
	moduleBase

	inIn    Signal
	scaleIn Signal
	shiftIn Signal

	scaleSm Smoother
	shiftSm Smoother

	out float64
}

func newScaleAndShiftModule(id string, params map[string]any) (Module, error) {
	m := &scaleAndShiftModule{
		moduleBase: newModuleBase(id, "scale_and_shift"),
		inIn:       VoltsSignal(0),
		scaleIn:    VoltsSignal(1),
		shiftIn:    VoltsSignal(0),
		scaleSm:    NewSmoother(1),
		shiftSm:    NewSmoother(0),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("scale_and_shift", newScaleAndShiftModule) }

func (m *scaleAndShiftModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("scale_and_shift", k)
		}
		switch k {
		case "scale":
			m.scaleIn = VoltsSignal(f)
		case "shift":
			m.shiftIn = VoltsSignal(f)
		default:
			return ErrUnknownParam("scale_and_shift", k)
		}
	}
	return nil
}

func (m *scaleAndShiftModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "scale":
		m.scaleIn = sig
	case "shift":
		m.shiftIn = sig
	default:
		return ErrUnknownPort("scale_and_shift", port)
	}
	return nil
}

func (m *scaleAndShiftModule) Tick(frame uint64, p *Patch) {}

func (m *scaleAndShiftModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.scaleSm.SetTarget(p.Resolve(m.scaleIn))
	m.shiftSm.SetTarget(p.Resolve(m.shiftIn))
	m.out = p.Resolve(m.inIn)*m.scaleSm.Next() + m.shiftSm.Next()
}

func (m *scaleAndShiftModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *scaleAndShiftModule) HandleMessage(msg Message) {}

// remapModule maps in from [inMin, inMax] to [outMin, outMax], clamping the
// input to the source range first, unlike scaleAndShiftModule which never
// clamps - remap is for bounded control ranges (pots, MIDI CC), scale/shift
// is for unbounded audio-rate math.
type remapModule struct {
	moduleBase

	inIn    Signal
	inMin   Signal
	inMax   Signal
	outMin  Signal
	outMax  Signal

	inMinSm  Smoother
	inMaxSm  Smoother
	outMinSm Smoother
	outMaxSm Smoother

	out float64
}

func newRemapModule(id string, params map[string]any) (Module, error) {
	m := &remapModule{
		moduleBase: newModuleBase(id, "remap"),
		inIn:       VoltsSignal(0),
		inMin:      VoltsSignal(0),
		inMax:      VoltsSignal(1),
		outMin:     VoltsSignal(0),
		outMax:     VoltsSignal(1),
		inMinSm:    NewSmoother(0),
		inMaxSm:    NewSmoother(1),
		outMinSm:   NewSmoother(0),
		outMaxSm:   NewSmoother(1),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("remap", newRemapModule) }

func (m *remapModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("remap", k)
		}
		switch k {
		case "in_min":
			m.inMin = VoltsSignal(f)
		case "in_max":
			m.inMax = VoltsSignal(f)
		case "out_min":
			m.outMin = VoltsSignal(f)
		case "out_max":
			m.outMax = VoltsSignal(f)
		default:
			return ErrUnknownParam("remap", k)
		}
	}
	return nil
}

func (m *remapModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "in_min":
		m.inMin = sig
	case "in_max":
		m.inMax = sig
	case "out_min":
		m.outMin = sig
	case "out_max":
		m.outMax = sig
	default:
		return ErrUnknownPort("remap", port)
	}
	return nil
}

func (m *remapModule) Tick(frame uint64, p *Patch) {}

func (m *remapModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.inMinSm.SetTarget(p.Resolve(m.inMin))
	m.inMaxSm.SetTarget(p.Resolve(m.inMax))
	m.outMinSm.SetTarget(p.Resolve(m.outMin))
	m.outMaxSm.SetTarget(p.Resolve(m.outMax))

	in := p.Resolve(m.inIn)
	inMin := m.inMinSm.Next()
	inMax := m.inMaxSm.Next()
	outMin := m.outMinSm.Next()
	outMax := m.outMaxSm.Next()

	if in < inMin {
		in = inMin
	}
	if in > inMax {
		in = inMax
	}
	span := inMax - inMin
	if span == 0 {
		m.out = outMin
		return
	}
	t := (in - inMin) / span
	m.out = outMin + t*(outMax-outMin)
}

func (m *remapModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *remapModule) HandleMessage(msg Message) {}
