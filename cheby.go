// cheby.go - Chebyshev polynomial waveshaper: amount crossfades between harmonic orders

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

// chebyModule waveshapes its input through a Chebyshev polynomial of the
// first kind. T_n maps a full-scale sine to its nth harmonic, making the
// polynomial order a direct harmonic selector; amount crossfades between
// two adjacent integer orders (rather than picking a single fixed order)
// so the control feels continuous instead of stepping between timbres.
type chebyModule struct {
	moduleBase

	inIn     Signal
	amountIn Signal

	amountSm Smoother
	out      float64
}

func newChebyModule(id string, params map[string]any) (Module, error) {
	m := &chebyModule{
		moduleBase: newModuleBase(id, "cheby"),
		inIn:       VoltsSignal(0),
		amountIn:   VoltsSignal(0),
		amountSm:   NewSmoother(0),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("cheby", newChebyModule) }

func (m *chebyModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		if k != "amount" {
			return ErrUnknownParam("cheby", k)
		}
		f, ok := toFloat(v)
		if !ok {
			return ErrUnknownParam("cheby", k)
		}
		m.amountIn = VoltsSignal(f)
	}
	return nil
}

func (m *chebyModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	case "amount":
		m.amountIn = sig
	default:
		return ErrUnknownPort("cheby", port)
	}
	return nil
}

func (m *chebyModule) Tick(frame uint64, p *Patch) {}

// chebyshevT evaluates the order-n Chebyshev polynomial of the first kind
// at x in [-1, 1] via the standard recurrence, avoiding a lookup table.
func chebyshevT(n int, x float64) float64 {
	if x < -1 {
		x = -1
	}
	if x > 1 {
		x = 1
	}
	if n == 0 {
		return 1
	}
	prev, cur := 1.0, x
	for k := 1; k < n; k++ {
		prev, cur = cur, 2*x*cur-prev
	}
	return cur
}

func (m *chebyModule) Update(frame uint64, p *Patch) {
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
	if in < -1 {
		in = -1
	}
	if in > 1 {
		in = 1
	}

	orderF := 1 + amount*7 // orders 1..8
	lo := int(math.Floor(orderF))
	hi := lo + 1
	t := orderF - float64(lo)

	m.out = chebyshevT(lo, in)*(1-t) + chebyshevT(hi, in)*t
}

func (m *chebyModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *chebyModule) HandleMessage(msg Message) {}
