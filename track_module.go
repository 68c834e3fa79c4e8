// track_module.go - Keyframe/easing automation track, read off a playhead

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"math"
	"sort"
)

// interpolationType names one of the curves a track's keyframes blend
// through: linear and step, plus the easing families (sine, quad, cubic,
// quart, quint, expo, circ, back, elastic, bounce) each in
// {in, out, in-out}.
type interpolationType int

const (
	interpLinear interpolationType = iota
	interpStep
	interpSineIn
	interpSineOut
	interpSineInOut
	interpQuadIn
	interpQuadOut
	interpQuadInOut
	interpCubicIn
	interpCubicOut
	interpCubicInOut
	interpQuartIn
	interpQuartOut
	interpQuartInOut
	interpQuintIn
	interpQuintOut
	interpQuintInOut
	interpExpoIn
	interpExpoOut
	interpExpoInOut
	interpCircIn
	interpCircOut
	interpCircInOut
	interpBackIn
	interpBackOut
	interpBackInOut
	interpElasticIn
	interpElasticOut
	interpElasticInOut
	interpBounceIn
	interpBounceOut
	interpBounceInOut
)

var interpolationNames = map[string]interpolationType{
	"linear":         interpLinear,
	"step":           interpStep,
	"sine_in":        interpSineIn,
	"sine_out":       interpSineOut,
	"sine_in_out":    interpSineInOut,
	"quad_in":        interpQuadIn,
	"quad_out":       interpQuadOut,
	"quad_in_out":    interpQuadInOut,
	"cubic_in":       interpCubicIn,
	"cubic_out":      interpCubicOut,
	"cubic_in_out":   interpCubicInOut,
	"quart_in":       interpQuartIn,
	"quart_out":      interpQuartOut,
	"quart_in_out":   interpQuartInOut,
	"quint_in":       interpQuintIn,
	"quint_out":      interpQuintOut,
	"quint_in_out":   interpQuintInOut,
	"expo_in":        interpExpoIn,
	"expo_out":       interpExpoOut,
	"expo_in_out":    interpExpoInOut,
	"circ_in":        interpCircIn,
	"circ_out":       interpCircOut,
	"circ_in_out":    interpCircInOut,
	"back_in":        interpBackIn,
	"back_out":       interpBackOut,
	"back_in_out":    interpBackInOut,
	"elastic_in":     interpElasticIn,
	"elastic_out":    interpElasticOut,
	"elastic_in_out": interpElasticInOut,
	"bounce_in":      interpBounceIn,
	"bounce_out":     interpBounceOut,
	"bounce_in_out":  interpBounceInOut,
}

// ease maps x in [0,1] through interpolation type t, returning the eased
// fraction to blend between a keyframe pair's values with.
func ease(t interpolationType, x float64) float64 {
	switch t {
	case interpStep:
		return 0
	case interpSineIn:
		return 1 - math.Cos(x*math.Pi/2)
	case interpSineOut:
		return math.Sin(x * math.Pi / 2)
	case interpSineInOut:
		return -(math.Cos(math.Pi*x) - 1) / 2
	case interpQuadIn:
		return x * x
	case interpQuadOut:
		return 1 - (1-x)*(1-x)
	case interpQuadInOut:
		if x < 0.5 {
			return 2 * x * x
		}
		return 1 - math.Pow(-2*x+2, 2)/2
	case interpCubicIn:
		return x * x * x
	case interpCubicOut:
		return 1 - math.Pow(1-x, 3)
	case interpCubicInOut:
		if x < 0.5 {
			return 4 * x * x * x
		}
		return 1 - math.Pow(-2*x+2, 3)/2
	case interpQuartIn:
		return x * x * x * x
	case interpQuartOut:
		return 1 - math.Pow(1-x, 4)
	case interpQuartInOut:
		if x < 0.5 {
			return 8 * x * x * x * x
		}
		return 1 - math.Pow(-2*x+2, 4)/2
	case interpQuintIn:
		return x * x * x * x * x
	case interpQuintOut:
		return 1 - math.Pow(1-x, 5)
	case interpQuintInOut:
		if x < 0.5 {
			return 16 * x * x * x * x * x
		}
		return 1 - math.Pow(-2*x+2, 5)/2
	case interpExpoIn:
		if x <= 0 {
			return 0
		}
		return math.Pow(2, 10*x-10)
	case interpExpoOut:
		if x >= 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*x)
	case interpExpoInOut:
		switch {
		case x <= 0:
			return 0
		case x >= 1:
			return 1
		case x < 0.5:
			return math.Pow(2, 20*x-10) / 2
		default:
			return (2 - math.Pow(2, -20*x+10)) / 2
		}
	case interpCircIn:
		return 1 - math.Sqrt(1-x*x)
	case interpCircOut:
		return math.Sqrt(1 - (x-1)*(x-1))
	case interpCircInOut:
		if x < 0.5 {
			return (1 - math.Sqrt(1-4*x*x)) / 2
		}
		return (math.Sqrt(1-math.Pow(-2*x+2, 2)) + 1) / 2
	case interpBackIn:
		const c1, c3 = 1.70158, 2.70158
		return c3*x*x*x - c1*x*x
	case interpBackOut:
		const c1, c3 = 1.70158, 2.70158
		return 1 + c3*math.Pow(x-1, 3) + c1*math.Pow(x-1, 2)
	case interpBackInOut:
		const c2 = 1.70158 * 1.525
		if x < 0.5 {
			return (math.Pow(2*x, 2) * ((c2+1)*2*x - c2)) / 2
		}
		return (math.Pow(2*x-2, 2)*((c2+1)*(2*x-2)+c2) + 2) / 2
	case interpElasticIn:
		switch {
		case x <= 0:
			return 0
		case x >= 1:
			return 1
		}
		const c4 = 2 * math.Pi / 3
		return -math.Pow(2, 10*x-10) * math.Sin((10*x-10.75)*c4)
	case interpElasticOut:
		switch {
		case x <= 0:
			return 0
		case x >= 1:
			return 1
		}
		const c4 = 2 * math.Pi / 3
		return math.Pow(2, -10*x)*math.Sin((10*x-0.75)*c4) + 1
	case interpElasticInOut:
		switch {
		case x <= 0:
			return 0
		case x >= 1:
			return 1
		}
		const c5 = 2 * math.Pi / 4.5
		if x < 0.5 {
			return -math.Pow(2, 20*x-10) * math.Sin((20*x-11.125)*c5) / 2
		}
		return math.Pow(2, -20*x+10)*math.Sin((20*x-11.125)*c5)/2 + 1
	case interpBounceIn:
		return 1 - bounceOut(1-x)
	case interpBounceOut:
		return bounceOut(x)
	case interpBounceInOut:
		if x < 0.5 {
			return (1 - bounceOut(1-2*x)) / 2
		}
		return (1 + bounceOut(2*x-1)) / 2
	default: // interpLinear
		return x
	}
}

// bounceOut is the standard four-segment bounce-out easing curve.
func bounceOut(x float64) float64 {
	const n1 = 7.5625
	const d1 = 2.75
	switch {
	case x < 1/d1:
		return n1 * x * x
	case x < 2/d1:
		x -= 1.5 / d1
		return n1*x*x + 0.75
	case x < 2.5/d1:
		x -= 2.25 / d1
		return n1*x*x + 0.9375
	default:
		x -= 2.625 / d1
		return n1*x*x + 0.984375
	}
}

// trackKeyframe is one (value, time) pair of a sequencer track.
type trackKeyframe struct {
	time float64
	poly PolySignal
}

// trackModule is a keyframe-interpolated automation track: an array of
// (polysignal, time) pairs blended by an eased fractional position read
// off playhead. Tracks live in the patch's ordinary module id-space; no
// freestanding track-list subsystem exists alongside it.
type trackModule struct {
	moduleBase

	playheadIn Signal
	keyframes  []trackKeyframe
	interp     interpolationType

	values [PolyMax]float64
}

func newTrackModule(id string, params map[string]any) (Module, error) {
	m := &trackModule{
		moduleBase: newModuleBase(id, "track"),
		playheadIn: DisconnectedSignal(),
	}
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

// DeriveChannelCount reports the widest keyframe's channel count: a track
// is as wide as the widest value it will ever have to emit.
func (m *trackModule) DeriveChannelCount(*Patch) int {
	return maxKeyframeChannels(m.keyframes)
}

func init() { registerModule("track", newTrackModule) }

// parsePolyParam decodes a keyframe's "value" field: either a bare number
// (mono) or an array of numbers (one per poly channel).
func parsePolyParam(v any) (PolySignal, bool) {
	switch t := v.(type) {
	case float64:
		return Mono(t), true
	case []any:
		if len(t) == 0 || len(t) > PolyMax {
			return PolySignal{}, false
		}
		var ps PolySignal
		for i, e := range t {
			f, ok := toFloat(e)
			if !ok {
				return PolySignal{}, false
			}
			ps.Values[i] = f
		}
		ps.N = len(t)
		return ps, true
	default:
		return PolySignal{}, false
	}
}

func maxKeyframeChannels(kfs []trackKeyframe) int {
	n := 0
	for _, k := range kfs {
		if k.poly.N > n {
			n = k.poly.N
		}
	}
	if n == 0 {
		n = 1
	}
	return n
}

func (m *trackModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "keyframes":
			list, ok := v.([]any)
			if !ok {
				return ErrUnknownParam("track", k)
			}
			kfs := make([]trackKeyframe, 0, len(list))
			for _, e := range list {
				em, ok := e.(map[string]any)
				if !ok {
					return ErrUnknownParam("track", k)
				}
				tf, ok := toFloat(em["time"])
				if !ok {
					return ErrUnknownParam("track", k)
				}
				poly, ok := parsePolyParam(em["value"])
				if !ok {
					return ErrUnknownParam("track", k)
				}
				kfs = append(kfs, trackKeyframe{time: tf, poly: poly})
			}
			sort.Slice(kfs, func(i, j int) bool { return kfs[i].time < kfs[j].time })
			m.keyframes = kfs
			m.setChannelCount(maxKeyframeChannels(kfs))
		case "interpolation_type":
			s, ok := v.(string)
			if !ok {
				return ErrUnknownParam("track", k)
			}
			it, ok := interpolationNames[s]
			if !ok {
				return ErrUnknownParam("track", k)
			}
			m.interp = it
		default:
			return ErrUnknownParam("track", k)
		}
	}
	return nil
}

func (m *trackModule) Connect(port string, sig Signal) error {
	if port != "playhead" {
		return ErrUnknownPort("track", port)
	}
	m.playheadIn = sig
	return nil
}

// ApplyDefaultConnections wires playhead to the patch's root clock when
// left disconnected.
func (m *trackModule) ApplyDefaultConnections() {
	if m.playheadIn.Disconnected() {
		m.playheadIn = CableSignal(RootClockID, "playhead", 0)
	}
}

func (m *trackModule) Tick(frame uint64, p *Patch) {}

// currentFraction reads the track's position within its current keyframe
// cycle: the root clock's fractional-cycle channel if playheadIn is wired
// to a cyclePositioner, or the fractional part of whatever scalar value
// otherwise resolves.
func (m *trackModule) currentFraction(p *Patch) float64 {
	c, ok := m.playheadIn.AsCable()
	if !ok {
		_, frac := math.Modf(p.Resolve(m.playheadIn))
		return math.Abs(frac)
	}
	src, ok := p.Module(c.ModuleID)
	if !ok {
		return 0
	}
	if cp, ok := src.(cyclePositioner); ok {
		_, frac := cp.CyclePosition()
		return frac
	}
	_, frac := math.Modf(src.GetSample(c.Port, c.Channel))
	return math.Abs(frac)
}

func (m *trackModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	if len(m.keyframes) == 0 {
		for i := range m.values {
			m.values[i] = 0
		}
		return
	}

	n := m.ChannelCount()
	setAll := func(poly PolySignal) {
		for ch := 0; ch < n; ch++ {
			m.values[ch] = poly.At(ch)
		}
	}

	if len(m.keyframes) == 1 {
		setAll(m.keyframes[0].poly)
		return
	}

	t := m.currentFraction(p)
	first, last := m.keyframes[0], m.keyframes[len(m.keyframes)-1]
	switch {
	case t <= first.time:
		setAll(first.poly)
		return
	case t >= last.time:
		setAll(last.poly)
		return
	}

	idx := sort.Search(len(m.keyframes), func(i int) bool { return m.keyframes[i].time > t }) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.keyframes)-2 {
		idx = len(m.keyframes) - 2
	}
	curr, next := m.keyframes[idx], m.keyframes[idx+1]
	span := next.time - curr.time
	if span <= 0 {
		span = 1e-9
	}
	localT := (t - curr.time) / span
	if localT < 0 {
		localT = 0
	} else if localT > 1 {
		localT = 1
	}
	eased := ease(m.interp, localT)
	for ch := 0; ch < n; ch++ {
		c, nv := curr.poly.At(ch), next.poly.At(ch)
		m.values[ch] = c + (nv-c)*eased
	}
}

func (m *trackModule) GetSample(port string, channel int) float64 {
	if port != "out" || channel < 0 || channel >= m.ChannelCount() {
		return 0
	}
	return m.values[channel]
}

func (m *trackModule) GetPoly(port string) PolySignal {
	if port != "out" {
		return Silent()
	}
	var ps PolySignal
	ps.N = m.ChannelCount()
	copy(ps.Values[:], m.values[:])
	return ps
}

func (m *trackModule) HandleMessage(msg Message) {}
