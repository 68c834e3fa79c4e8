// root_clock.go - The patch-wide transport: cycle position as a poly CV

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

// RootClockID is the conventional id a patch's transport module is expected
// to live at; modules with a default-connected playhead input (TrackModule,
// IntervalSeq) resolve to this id when their own playhead is left
// disconnected. Nothing stops a patch from creating additional root_clock
// instances under other ids for sync'd sub-transports - only the default-
// connection mechanism treats this one id as special.
const RootClockID = "root_clock"

// cyclePositioner is implemented by modules that can report their position
// as an exact (cycle, fractional-cycle) pair instead of a single lossy
// float. Playhead consumers prefer this over GetSample("playhead", 0) so
// that long-running patches don't accumulate floating-point drift summing
// an ever-growing cycle count into a fraction.
type cyclePositioner interface {
	CyclePosition() (cycle int64, frac float64)
}

// rootClockModule is the single source of musical time every pattern-aware
// module (TrackModule, IntervalSeq) reads from. Its output is a 2-channel
// poly signal rather than a plain float: channel 0 carries the integer
// cycle number, channel 1 the fractional position within the cycle, kept
// as two separate channels rather than added together so that downstream
// consumers can reconstruct an exact pattern.Rational cycle position
// without the precision loss a single float64 sum would introduce once
// the cycle count gets large.
type rootClockModule struct {
	moduleBase

	bpm     float64
	running bool

	samplesPerCycle float64
	samplePos       float64
	cycle           int64
}

func newRootClockModule(id string, params map[string]any) (Module, error) {
	m := &rootClockModule{
		moduleBase: newModuleBase(id, "root_clock"),
		bpm:        120,
		running:    true,
	}
	m.setChannelCount(2)
	m.recomputeRate()
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("root_clock", newRootClockModule) }

// cyclesPerBeat is fixed at 1: one musical cycle equals one beat. A patch
// that wants a 4-beat bar as "one cycle" composes that with pattern-level
// Slow(4) rather than the clock itself supporting a beats-per-cycle knob.
const cyclesPerBeat = 1.0

func (m *rootClockModule) recomputeRate() {
	beatsPerSecond := m.bpm / 60.0
	cyclesPerSecond := beatsPerSecond * cyclesPerBeat
	if cyclesPerSecond <= 0 {
		cyclesPerSecond = 0.001
	}
	m.samplesPerCycle = SampleRate / cyclesPerSecond
}

func (m *rootClockModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "bpm":
			f, ok := toFloat(v)
			if !ok || f <= 0 {
				return ErrUnknownParam("root_clock", k)
			}
			m.bpm = f
			m.recomputeRate()
		case "running":
			b, ok := v.(bool)
			if !ok {
				return ErrUnknownParam("root_clock", k)
			}
			m.running = b
		default:
			return ErrUnknownParam("root_clock", k)
		}
	}
	return nil
}

func (m *rootClockModule) Connect(port string, sig Signal) error {
	return ErrUnknownPort("root_clock", port)
}

// FixedChannelCount: playhead is always the (cycle, fraction) pair.
func (m *rootClockModule) FixedChannelCount() int { return 2 }

func (m *rootClockModule) Tick(frame uint64, p *Patch) {
	if !m.ShouldTick(frame) {
		return
	}
	if !m.running {
		return
	}
	m.samplePos++
	if m.samplePos >= m.samplesPerCycle {
		m.samplePos -= m.samplesPerCycle
		m.cycle++
	}
}

func (m *rootClockModule) Update(frame uint64, p *Patch) {}

func (m *rootClockModule) GetSample(port string, channel int) float64 {
	if port != "playhead" {
		return 0
	}
	switch channel {
	case 0:
		return float64(m.cycle)
	case 1:
		if m.samplesPerCycle <= 0 {
			return 0
		}
		return m.samplePos / m.samplesPerCycle
	}
	return 0
}

func (m *rootClockModule) GetPoly(port string) PolySignal {
	if port != "playhead" {
		return Silent()
	}
	var ps PolySignal
	ps.N = 2
	ps.Values[0] = m.GetSample(port, 0)
	ps.Values[1] = m.GetSample(port, 1)
	return ps
}

// CyclePosition returns the current transport position as two separate
// parts: the integer cycle count and the fractional position within that
// cycle as a float64.
func (m *rootClockModule) CyclePosition() (cycle int64, frac float64) {
	frac = 0
	if m.samplesPerCycle > 0 {
		frac = m.samplePos / m.samplesPerCycle
	}
	return m.cycle, frac
}

func (m *rootClockModule) HandleMessage(msg Message) {
	switch msg.Tag {
	case "clock_start":
		m.running = true
	case "clock_stop":
		m.running = false
	case "clock_reset":
		m.cycle = 0
		m.samplePos = 0
	}
}

func (m *rootClockModule) ListensFor() []string {
	return []string{"clock_start", "clock_stop", "clock_reset"}
}
