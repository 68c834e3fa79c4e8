// combine_split.go - Combine packs mono cables into one poly output, Split does the reverse

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

// combineModule packs up to 16 mono input cables into a single poly output,
// skipping disconnected inputs entirely rather than reserving a silent
// channel for them - connecting inputs 1 and 3 but not 2 yields a 2-channel
// output, not a 3-channel output with a hole in the middle.
type combineModule struct {
	moduleBase

	ins [PolyMax]Signal
	out PolySignal
}

func newCombineModule(id string, params map[string]any) (Module, error) {
	m := &combineModule{moduleBase: newModuleBase(id, "combine")}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

// DeriveChannelCount: as wide as the number of connected inputs, since
// disconnected ports are skipped rather than packed as silent channels.
func (m *combineModule) DeriveChannelCount(*Patch) int {
	n := 0
	for _, sig := range m.ins {
		if !sig.Disconnected() {
			n++
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func init() { registerModule("combine", newCombineModule) }

func (m *combineModule) TryUpdateParams(params map[string]any) error {
	if len(params) == 0 {
		return nil
	}
	return ErrUnknownParam("combine", firstKey(params))
}

func (m *combineModule) Connect(port string, sig Signal) error {
	idx, ok := combinePortIndex(port)
	if !ok {
		return ErrUnknownPort("combine", port)
	}
	m.ins[idx] = sig
	return nil
}

func combinePortIndex(port string) (int, bool) {
	for i := 0; i < PolyMax; i++ {
		if port == combinePortName(i) {
			return i, true
		}
	}
	return 0, false
}

func combinePortName(i int) string {
	names := [PolyMax]string{
		"in0", "in1", "in2", "in3", "in4", "in5", "in6", "in7",
		"in8", "in9", "in10", "in11", "in12", "in13", "in14", "in15",
	}
	return names[i]
}

func (m *combineModule) Tick(frame uint64, p *Patch) {}

func (m *combineModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	var out PolySignal
	for _, sig := range m.ins {
		if sig.Disconnected() {
			continue
		}
		if out.N >= PolyMax {
			break
		}
		out.Values[out.N] = p.Resolve(sig)
		out.N++
	}
	m.out = out
}

func (m *combineModule) GetSample(port string, channel int) float64 {
	if port != "out" || channel < 0 || channel >= m.out.N {
		return 0
	}
	return m.out.Values[channel]
}

func (m *combineModule) GetPoly(port string) PolySignal {
	if port != "out" {
		return Silent()
	}
	return m.out
}

func (m *combineModule) HandleMessage(msg Message) {}

// splitModule is the inverse of combineModule: it takes one poly cable and
// exposes each of its up-to-16 channels as a separate mono port, plus a
// "channels" port reporting how many of them are actually active so a
// patch can branch on voice count.
type splitModule struct {
	moduleBase

	in  Signal
	out PolySignal
}

func newSplitModule(id string, params map[string]any) (Module, error) {
	m := &splitModule{moduleBase: newModuleBase(id, "split"), in: VoltsSignal(0)}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

// PolyWidthInputs opts split into the default width derivation: it is as
// wide as whatever poly source feeds its one input.
func (m *splitModule) PolyWidthInputs() []Signal { return []Signal{m.in} }

func init() { registerModule("split", newSplitModule) }

func (m *splitModule) TryUpdateParams(params map[string]any) error {
	if len(params) == 0 {
		return nil
	}
	return ErrUnknownParam("split", firstKey(params))
}

func (m *splitModule) Connect(port string, sig Signal) error {
	if port != "in" {
		return ErrUnknownPort("split", port)
	}
	m.in = sig
	return nil
}

func (m *splitModule) Tick(frame uint64, p *Patch) {}

func (m *splitModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	c, ok := m.in.AsCable()
	if !ok {
		var out PolySignal
		if !m.in.Disconnected() {
			out = Mono(p.Resolve(m.in))
		}
		m.out = out
		return
	}
	src, ok := p.Module(c.ModuleID)
	if !ok {
		m.out = Silent()
		return
	}
	if ps, ok := src.(polySource); ok {
		m.out = ps.GetPoly(c.Port)
		return
	}
	m.out = Mono(src.GetSample(c.Port, c.Channel))
}

func (m *splitModule) GetSample(port string, channel int) float64 {
	if port == "channels" {
		return float64(m.out.N)
	}
	idx, ok := combinePortIndex(splitPortToIn(port))
	if !ok {
		return 0
	}
	if idx >= m.out.N {
		return 0
	}
	return m.out.Values[idx]
}

// splitPortToIn reuses combinePortIndex's "inN" naming table by remapping
// "chN" to "inN", rather than duplicating the 16-entry name list.
func splitPortToIn(port string) string {
	if len(port) > 2 && port[:2] == "ch" {
		return "in" + port[2:]
	}
	return ""
}

func (m *splitModule) HandleMessage(msg Message) {}
