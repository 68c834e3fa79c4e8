// clock_divider.go - Divides an incoming clock's pulse rate by an integer factor

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

// clockDividerModule emits a pulse once every divisor rising edges of its
// input clock, phase-locked to the input rather than free-running, so a
// divide-by-4 on a steady clock stays exactly aligned even if the input
// clock's rate is itself modulated.
type clockDividerModule struct {
	moduleBase

	clockIn Signal
	divisor int

	count    int
	prevGate float64
	out      float64
}

func newClockDividerModule(id string, params map[string]any) (Module, error) {
	m := &clockDividerModule{
		moduleBase: newModuleBase(id, "clock_divider"),
		clockIn:    VoltsSignal(0),
		divisor:    2,
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("clock_divider", newClockDividerModule) }

func (m *clockDividerModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		if k != "divisor" {
			return ErrUnknownParam("clock_divider", k)
		}
		f, ok := toFloat(v)
		if !ok || f < 1 {
			return ErrUnknownParam("clock_divider", k)
		}
		m.divisor = int(f)
	}
	return nil
}

func (m *clockDividerModule) Connect(port string, sig Signal) error {
	if port != "clock" {
		return ErrUnknownPort("clock_divider", port)
	}
	m.clockIn = sig
	return nil
}

func (m *clockDividerModule) Tick(frame uint64, p *Patch) {}

func (m *clockDividerModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	gate := p.Resolve(m.clockIn)
	rising := gate > 0.5 && m.prevGate <= 0.5
	m.prevGate = gate
	// The output is a one-frame trigger, not a gate: clear it every frame
	// and raise it only on the edge that completes a division.
	m.out = 0
	if !rising {
		return
	}
	m.count++
	if m.count >= m.divisor {
		m.count = 0
		m.out = 1
	}
}

func (m *clockDividerModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *clockDividerModule) HandleMessage(msg Message) {}
