// crush.go - Bitcrusher: sample-and-hold rate reduction plus bit-depth quantization

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// crushModule degrades input in two ways controlled by a single amount
// parameter: it holds samples for longer (lowering effective sample rate)
// and quantizes the held value to fewer bits, both scaling with amount so
// 0 is transparent and 1 is maximally crushed.
type crushModule struct {
	moduleBase

	inIn     Signal
	amountIn Signal

	amountSm Smoother

	held     float64
	holdCtr  int
}

func newCrushModule(id string, params map[string]any) (Module, error) {
	m := &crushModule{
		moduleBase: newModuleBase(id, "crush"),
		inIn:       VoltsSignal(0),
		amountIn:   VoltsSignal(0),
		amountSm:   NewSmoother(0),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("crush", newCrushModule) }

func (m *crushModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		if k != "amount" {
			return ErrUnknownParam("crush", k)
		}
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("crush", k)
		}
		m.amountIn = VoltsSignal(f)
	}
	return nil
}

func (m *crushModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "amount":
		m.amountIn = sig
	default:
		return ErrUnknownPort("crush", port)
	}
	return nil
}

func (m *crushModule) Tick(frame uint64, p *Patch) {}

func (m *crushModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	m.amountSm.SetTarget(p.Resolve(m.amountIn))
	amount := m.amountSm.Next()
	if amount < 0 {
		amount = 0
	}
	if amount > 1 {
		amount = 1
	}

	in := p.Resolve(m.inIn)

	holdSamples := 1 + int(amount*63)
	if m.holdCtr <= 0 {
		m.held = in
		m.holdCtr = holdSamples
	}
	m.holdCtr--

	bits := 16 - amount*13
	if bits < 2 {
		bits = 2
	}
	levels := math.Pow(2, bits)
	m.held = math.Round(m.held*levels) / levels
}

func (m *crushModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.held
}

func (m *crushModule) HandleMessage(msg Message) {}
