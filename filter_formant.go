// filter_formant.go - Vowel formant filter: three parallel bandpass resonators

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math"

type vowel int

const (
	vowelA vowel = iota
	vowelE
	vowelI
	vowelO
	vowelU
)

func parseVowel(v any) (vowel, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	switch s {
	case "a":
		return vowelA, true
	case "e":
		return vowelE, true
	case "i":
		return vowelI, true
	case "o":
		return vowelO, true
	case "u":
		return vowelU, true
	}
	return 0, false
}

// formantFreqs holds the first three formant center frequencies (Hz) for
// each vowel, the standard textbook set for a modal adult voice.
var formantFreqs = map[vowel][3]float64{
	vowelA: {730, 1090, 2440},
	vowelE: {530, 1840, 2480},
	vowelI: {270, 2290, 3010},
	vowelO: {570, 840, 2410},
	vowelU: {440, 1020, 2240},
}

// formantModule sums three bandpass resonators tuned to a vowel's formant
// frequencies, each built from the same RBJ bandpass derivation as
// filter_biquad.go's bandpass mode but at a fixed Q per formant.
type formantModule struct {
	moduleBase

	v    vowel
	inIn Signal

	stages [3]biquadState
}

type biquadState struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (s *biquadState) setBandpass(freq, q float64) {
	w0 := 2 * math.Pi * freq / SampleRate
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / (2 * q)
	a0 := 1 + alpha
	s.b0 = alpha / a0
	s.b1 = 0
	s.b2 = -alpha / a0
	s.a1 = -2 * cosw0 / a0
	s.a2 = (1 - alpha) / a0
}

func (s *biquadState) process(x0 float64) float64 {
	y0 := s.b0*x0 + s.b1*s.x1 + s.b2*s.x2 - s.a1*s.y1 - s.a2*s.y2
	s.x2, s.x1 = s.x1, x0
	s.y2, s.y1 = s.y1, y0
	return y0
}

func newFormantModule(id string, params map[string]any) (Module, error) {
	m := &formantModule{
		moduleBase: newModuleBase(id, "filter_formant"),
		v:    vowelA,
		inIn: VoltsSignal(0),
	}
	freqs := formantFreqs[m.v]
	for i, f := range freqs {
		m.stages[i].setBandpass(f, 10)
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("filter_formant", newFormantModule) }

func (m *formantModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "vowel":
			vw, ok := parseVowel(v)
			if !ok {
				return ErrUnknownParam("filter_formant", k)
			}
			m.v = vw
			freqs := formantFreqs[m.v]
			for i, f := range freqs {
				m.stages[i].setBandpass(f, 10)
			}
		default:
			return ErrUnknownParam("filter_formant", k)
		}
	}
	return nil
}

func (m *formantModule) Connect(port string, sig Signal) error {
	switch port {
	case "in":
		m.inIn = sig
	default:
		return ErrUnknownPort("filter_formant", port)
	}
	return nil
}

func (m *formantModule) Tick(frame uint64, p *Patch) {}

func (m *formantModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	in := p.Resolve(m.inIn)
	for i := range m.stages {
		m.stages[i].process(in)
	}
}

func (m *formantModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	sum := 0.0
	for i := range m.stages {
		sum += m.stages[i].y1
	}
	return sum / 3
}

func (m *formantModule) HandleMessage(msg Message) {}
