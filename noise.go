// noise.go - Noise source: white, pink, and brown color variants

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "math/rand"

type noiseColor int

const (
	noiseWhite noiseColor = iota
	noisePink
	noiseBrown
)

func parseNoiseColor(v any) (noiseColor, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	switch s {
	case "white":
		return noiseWhite, true
	case "pink":
		return noisePink, true
	case "brown":
		return noiseBrown, true
	}
	return 0, false
}

// noiseModule generates one fresh sample per frame. Pink noise uses the
// Voss-McCartney octave-bank sum (seven rows, each updated half as often
// as the last); brown is leaky-integrated white, the leak keeping the walk
// from drifting off to the rails over long runs.
type noiseModule struct {
	moduleBase

	color noiseColor
	rng   *rand.Rand

	out float64

	pinkRows    [7]float64
	pinkCounter uint32
	brown       float64
}

func newNoiseModule(id string, params map[string]any) (Module, error) {
	m := &noiseModule{
		moduleBase: newModuleBase(id, "noise"),
		rng:        rand.New(rand.NewSource(1)),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("noise", newNoiseModule) }

func (m *noiseModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		if k != "color" {
			return ErrUnknownParam("noise", k)
		}
		c, ok := parseNoiseColor(v)
		if !ok {
			return ErrUnknownParam("noise", k)
		}
		m.color = c
	}
	return nil
}

func (m *noiseModule) Connect(port string, sig Signal) error {
	return ErrUnknownPort("noise", port)
}

func (m *noiseModule) Tick(frame uint64, p *Patch) {
	if !m.ShouldTick(frame) {
		return
	}
	white := m.rng.Float64()*2 - 1
	switch m.color {
	case noisePink:
		m.pinkCounter++
		for i := range m.pinkRows {
			if m.pinkCounter&(1<<uint(i)-1) == 0 {
				m.pinkRows[i] = m.rng.Float64()*2 - 1
			}
		}
		sum := white
		for _, r := range m.pinkRows {
			sum += r
		}
		m.out = sum / float64(len(m.pinkRows)+1)
	case noiseBrown:
		m.brown = m.brown*0.998 + white*0.1
		if m.brown > 1 {
			m.brown = 1
		}
		if m.brown < -1 {
			m.brown = -1
		}
		m.out = m.brown
	default:
		m.out = white
	}
}

func (m *noiseModule) Update(frame uint64, p *Patch) {}

func (m *noiseModule) GetSample(port string, channel int) float64 {
	if port != "out" {
		return 0
	}
	return m.out
}

func (m *noiseModule) HandleMessage(msg Message) {}
