// interval_seq.go - Scale-degree sequencer: two mini-notation patterns combined into poly CV/gate/trig

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/intuitionamiga/modularcore/pattern"
	"github.com/intuitionamiga/modularcore/pattern/mini"
)

// intervalDegree is the value type intervalSeqModule's two patterns
// produce: either a scale degree, or a rest (Valid == false).
type intervalDegree struct {
	Valid  bool
	Degree int
}

var intervalConverter = mini.Converter[intervalDegree]{
	FromNumber: func(f float64) (intervalDegree, error) {
		return intervalDegree{Valid: true, Degree: int(f)}, nil
	},
	FromIdentifier: func(s string) (intervalDegree, error) {
		return intervalDegree{}, fmt.Errorf("interval_seq: %q is not a scale degree", s)
	},
	RestValue: &intervalDegreeRest,
}

var intervalDegreeRest = intervalDegree{Valid: false}

// noteSemitones maps a note-name prefix to its semitone offset from C,
// for parsing a scale param's root like "C", "C#", "Db".
var noteSemitones = map[string]int{
	"C": 0, "C#": 1, "Db": 1,
	"D": 2, "D#": 3, "Eb": 3,
	"E": 4,
	"F": 5, "F#": 6, "Gb": 6,
	"G": 7, "G#": 8, "Ab": 8,
	"A": 9, "A#": 10, "Bb": 10,
	"B": 11,
}

// scaleModes maps a mode name to its semitone intervals from the root,
// within one octave.
var scaleModes = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"ionian":     {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"min":        {0, 2, 3, 5, 7, 8, 10},
	"aeolian":    {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"locrian":    {0, 1, 3, 5, 6, 8, 10},
	"chromatic":  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// parseScale parses a scale spec like "C(major)", "C3(major)", or
// "Db3(min)": an optional octave in the root defaults to 4 (so the root
// note lands on its usual MIDI octave, e.g. "C(major)" -> MIDI 60).
func parseScale(s string) (baseMidi int, intervals []int, err error) {
	open := strings.IndexByte(s, '(')
	closeParen := strings.IndexByte(s, ')')
	if open < 0 || closeParen < open {
		return 0, nil, fmt.Errorf("interval_seq: invalid scale spec %q", s)
	}
	root := s[:open]
	mode := s[open+1 : closeParen]

	octave := 4
	i := len(root)
	for i > 0 && (root[i-1] >= '0' && root[i-1] <= '9' || root[i-1] == '-') {
		i--
	}
	noteName := root
	if i < len(root) {
		noteName = root[:i]
		oct, perr := strconv.Atoi(root[i:])
		if perr != nil {
			return 0, nil, fmt.Errorf("interval_seq: invalid octave in scale spec %q", s)
		}
		octave = oct
	}
	semitone, ok := noteSemitones[noteName]
	if !ok {
		return 0, nil, fmt.Errorf("interval_seq: unknown root note %q", noteName)
	}
	ivs, ok := scaleModes[mode]
	if !ok {
		return 0, nil, fmt.Errorf("interval_seq: unknown scale mode %q", mode)
	}
	return (octave+1)*12 + semitone, ivs, nil
}

// fracSpan is a half-open span of exact cycle time, used by the combined-
// hap derivation below before it degrades to float64 for runtime use.
type fracSpan struct{ begin, end pattern.Rational }

// combinedHap is one sounding event produced by overlapping the interval
// pattern with the add pattern: every interval-pattern hap that overlaps
// an add-pattern hap produces one combinedHap (a Cartesian-product
// combination, so chords built from stacked intervals and stacked root
// notes both resolve correctly); a hap with no corresponding partner on
// the other pattern is still recorded, with degree == nil, so silence
// spans keep their place in the cache.
type combinedHap struct {
	wholeBegin, wholeEnd float64
	partBegin, partEnd   float64
	degree               *int
	hasOnset             bool
}

// cachedIntervalHap identifies which combined hap a voice is currently
// sounding, so Update can tell a still-playing hap apart from a new one
// and release voices whose hap has ended.
type cachedIntervalHap struct {
	hapIndex    int
	cachedCycle int64
	wholeBegin  float64
	wholeEnd    float64
}

func (c *cachedIntervalHap) contains(playhead float64) bool {
	return playhead >= c.wholeBegin && playhead < c.wholeEnd
}

// intervalVoice is one slot in the sequencer's voice bank.
type intervalVoice struct {
	active       bool
	cachedHap    *cachedIntervalHap
	cv           float64
	trig         float64
	lastAssigned float64
}

const intervalSeqDefaultVoices = 4
const intervalSeqMaxVoices = PolyMax
const intervalSeqSweepCycles = 90

// intervalSeqModule drives a poly cv/gate/trig voice bank from two
// mini-notation patterns: "interval" supplies the chord/arpeggio shape as
// scale-degree offsets, "add" supplies the root-note degree progression.
// Every combination of an overlapping interval-hap and add-hap sounds as
// one voice, so e.g. interval "[0,2,4]" over add "0 3 4" plays a triad on
// each of three root degrees in turn. Degrees are quantized against
// "scale" (a root note plus mode, e.g. "C(major)").
type intervalSeqModule struct {
	moduleBase

	intervalSrc string
	addSrc      string
	intervalPat pattern.Pattern[intervalDegree]
	addPat      pattern.Pattern[intervalDegree]

	baseMidi       int
	scaleIntervals []int

	playheadIn Signal

	explicitChannels int
	channelsExplicit bool

	voices    [intervalSeqMaxVoices]intervalVoice
	nextVoice int

	cacheValid         bool
	cachedCycle        int64
	cachedCombinedHaps []combinedHap
}

func newIntervalSeqModule(id string, params map[string]any) (Module, error) {
	m := &intervalSeqModule{
		moduleBase:     newModuleBase(id, "interval_seq"),
		playheadIn:     DisconnectedSignal(),
		baseMidi:       60,
		scaleIntervals: scaleModes["major"],
	}
	m.setChannelCount(intervalSeqDefaultVoices)
	m.intervalPat = pattern.New(func(st pattern.State) []pattern.Hap[intervalDegree] { return nil })
	m.addPat = pattern.New(func(st pattern.State) []pattern.Hap[intervalDegree] { return nil })
	if err := m.TryUpdateParams(params); err != nil {
		return nil, err
	}
	return m, nil
}

func init() { registerModule("interval_seq", newIntervalSeqModule) }

func (m *intervalSeqModule) TryUpdateParams(params map[string]any) error {
	for k, v := range params {
		switch k {
		case "interval":
			s, ok := v.(string)
			if !ok {
				return ErrUnknownParam("interval_seq", k)
			}
			node, err := mini.Parse(s)
			if err != nil {
				return fmt.Errorf("interval_seq %s: %w", m.id, err)
			}
			pat, err := mini.Convert(node, intervalConverter)
			if err != nil {
				return fmt.Errorf("interval_seq %s: %w", m.id, err)
			}
			m.intervalSrc = s
			m.intervalPat = pat
			m.invalidateCache()
		case "add":
			s, ok := v.(string)
			if !ok {
				return ErrUnknownParam("interval_seq", k)
			}
			node, err := mini.Parse(s)
			if err != nil {
				return fmt.Errorf("interval_seq %s: %w", m.id, err)
			}
			pat, err := mini.Convert(node, intervalConverter)
			if err != nil {
				return fmt.Errorf("interval_seq %s: %w", m.id, err)
			}
			m.addSrc = s
			m.addPat = pat
			m.invalidateCache()
		case "scale":
			s, ok := v.(string)
			if !ok {
				return ErrUnknownParam("interval_seq", k)
			}
			baseMidi, intervals, err := parseScale(s)
			if err != nil {
				return err
			}
			m.baseMidi = baseMidi
			m.scaleIntervals = intervals
		case "channels":
			f, ok := toFloat(v)
			if !ok {
				return ErrUnknownParam("interval_seq", k)
			}
			n := int(f)
			if n < 1 {
				n = 1
			}
			if n > intervalSeqMaxVoices {
				n = intervalSeqMaxVoices
			}
			m.explicitChannels = n
			m.channelsExplicit = true
		default:
			return ErrUnknownParam("interval_seq", k)
		}
	}
	m.setChannelCount(m.DeriveChannelCount(nil))
	return nil
}

// DeriveChannelCount sizes the voice bank: an explicit "channels" param
// wins, otherwise the sweep-line derivation over both patterns decides.
// The derivation reads no other modules, so the patch argument is unused.
func (m *intervalSeqModule) DeriveChannelCount(*Patch) int {
	if m.channelsExplicit {
		return m.explicitChannels
	}
	return deriveCombinedPolyphony(m.intervalPat, m.addPat)
}

func (m *intervalSeqModule) Connect(port string, sig Signal) error {
	if port != "playhead" {
		return ErrUnknownPort("interval_seq", port)
	}
	m.playheadIn = sig
	return nil
}

// ApplyDefaultConnections wires playhead to the patch's root clock when
// left disconnected.
func (m *intervalSeqModule) ApplyDefaultConnections() {
	if m.playheadIn.Disconnected() {
		m.playheadIn = CableSignal(RootClockID, "playhead", 0)
	}
}

func (m *intervalSeqModule) Tick(frame uint64, p *Patch) {}

// playheadPosition reads the track's (cycle, fractional) position off
// whatever playheadIn resolves to: a cyclePositioner's exact pair if the
// cable source implements one (the root clock does), or the floor/frac
// split of a plain resolved scalar otherwise.
func (m *intervalSeqModule) playheadPosition(p *Patch) (int64, float64) {
	c, ok := m.playheadIn.AsCable()
	if !ok {
		v := p.Resolve(m.playheadIn)
		cycle := int64(v)
		if v < 0 && float64(cycle) != v {
			cycle--
		}
		return cycle, v - float64(cycle)
	}
	src, ok := p.Module(c.ModuleID)
	if !ok {
		return 0, 0
	}
	if cp, ok := src.(cyclePositioner); ok {
		return cp.CyclePosition()
	}
	v := src.GetSample(c.Port, c.Channel)
	cycle := int64(v)
	if v < 0 && float64(cycle) != v {
		cycle--
	}
	return cycle, v - float64(cycle)
}

func (m *intervalSeqModule) invalidateCache() {
	m.cacheValid = false
	m.cachedCombinedHaps = nil
}

// combineHaps overlaps intervalHaps with addHaps: every interval hap
// pairs with every overlapping add hap into one combinedHap (degree =
// sum, onset = either side's onset falling in the overlap); a hap with no
// overlapping partner is kept with degree == nil, a placeholder rest.
func combineHaps(intervalHaps, addHaps []pattern.Hap[intervalDegree]) []combinedHap {
	if len(intervalHaps) == 0 && len(addHaps) == 0 {
		return nil
	}
	var out []combinedHap
	for _, ih := range intervalHaps {
		if ih.Whole == nil {
			continue
		}
		var overlapping []pattern.Hap[intervalDegree]
		for _, ah := range addHaps {
			if ah.Whole == nil {
				continue
			}
			if ah.Whole.Begin.Lt(ih.Whole.End) && ah.Whole.End.Gt(ih.Whole.Begin) {
				overlapping = append(overlapping, ah)
			}
		}
		if len(overlapping) == 0 {
			out = append(out, combinedHap{
				wholeBegin: ih.Whole.Begin.Float64(),
				wholeEnd:   ih.Whole.End.Float64(),
				partBegin:  ih.Part.Begin.Float64(),
				partEnd:    ih.Part.End.Float64(),
				degree:     nil,
				hasOnset:   ih.HasOnset(),
			})
			continue
		}
		for _, ah := range overlapping {
			begin := pattern.MaxR(ih.Whole.Begin, ah.Whole.Begin)
			end := pattern.MinR(ih.Whole.End, ah.Whole.End)
			hasOnset := (ih.HasOnset() && ih.Part.Begin.Gte(begin) && ih.Part.Begin.Lt(end)) ||
				(ah.HasOnset() && ah.Part.Begin.Gte(begin) && ah.Part.Begin.Lt(end))
			var degree *int
			if ih.Value.Valid && ah.Value.Valid {
				d := ih.Value.Degree + ah.Value.Degree
				degree = &d
			}
			out = append(out, combinedHap{
				wholeBegin: begin.Float64(),
				wholeEnd:   end.Float64(),
				partBegin:  begin.Float64(),
				partEnd:    end.Float64(),
				degree:     degree,
				hasOnset:   hasOnset,
			})
		}
	}
	for _, ah := range addHaps {
		if ah.Whole == nil {
			continue
		}
		overlapsAny := false
		for _, ih := range intervalHaps {
			if ih.Whole != nil && ih.Whole.Begin.Lt(ah.Whole.End) && ih.Whole.End.Gt(ah.Whole.Begin) {
				overlapsAny = true
				break
			}
		}
		if !overlapsAny {
			out = append(out, combinedHap{
				wholeBegin: ah.Whole.Begin.Float64(),
				wholeEnd:   ah.Whole.End.Float64(),
				partBegin:  ah.Part.Begin.Float64(),
				partEnd:    ah.Part.End.Float64(),
				degree:     nil,
				hasOnset:   ah.HasOnset(),
			})
		}
	}
	return out
}

func (m *intervalSeqModule) refreshCache(cycle int64) {
	span := pattern.Span(pattern.RInt(cycle), pattern.RInt(cycle+1))
	intervalHaps := m.intervalPat.Query(pattern.State{Span: span})
	addHaps := m.addPat.Query(pattern.State{Span: span})
	m.cachedCombinedHaps = combineHaps(intervalHaps, addHaps)
	m.cachedCycle = cycle
	m.cacheValid = true
}

// deriveCombinedPolyphony analyzes both patterns together over a 90-cycle
// horizon to find the maximum number of simultaneously-sounding combined
// haps, sizing the voice bank by sweep-line without the caller having to
// name a channel count.
func deriveCombinedPolyphony(intervalPat, addPat pattern.Pattern[intervalDegree]) int {
	span := pattern.Span(pattern.RInt(0), pattern.RInt(intervalSeqSweepCycles))
	intervalHaps := intervalPat.Query(pattern.State{Span: span})
	addHaps := addPat.Query(pattern.State{Span: span})

	if len(intervalHaps) == 0 && len(addHaps) == 0 {
		return 1
	}

	var spans []fracSpan
	switch {
	case len(addHaps) == 0:
		for _, h := range intervalHaps {
			if h.Value.Valid {
				spans = append(spans, fracSpan{h.Part.Begin, h.Part.End})
			}
		}
	case len(intervalHaps) == 0:
		for _, h := range addHaps {
			if h.Value.Valid {
				spans = append(spans, fracSpan{h.Part.Begin, h.Part.End})
			}
		}
	default:
		for _, ih := range intervalHaps {
			for _, ah := range addHaps {
				if ah.Part.Begin.Lt(ih.Part.End) && ah.Part.End.Gt(ih.Part.Begin) {
					if ih.Value.Valid && ah.Value.Valid {
						begin := pattern.MaxR(ih.Part.Begin, ah.Part.Begin)
						end := pattern.MinR(ih.Part.End, ah.Part.End)
						spans = append(spans, fracSpan{begin, end})
					}
				}
			}
		}
	}
	if len(spans) == 0 {
		return 1
	}

	type event struct {
		t     pattern.Rational
		delta int
	}
	events := make([]event, 0, len(spans)*2)
	for _, sp := range spans {
		events = append(events, event{sp.begin, 1}, event{sp.end, -1})
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].t.Eq(events[j].t) {
			return events[i].t.Lt(events[j].t)
		}
		return events[i].delta < events[j].delta // ends before starts at a tie
	})

	current := 0
	maxSimultaneous := 0
	for _, e := range events {
		if e.delta > 0 {
			current++
			if current > maxSimultaneous {
				maxSimultaneous = current
			}
			if maxSimultaneous >= intervalSeqMaxVoices {
				return intervalSeqMaxVoices
			}
		} else {
			current--
			if current < 0 {
				current = 0
			}
		}
	}
	if maxSimultaneous < 1 {
		maxSimultaneous = 1
	}
	return maxSimultaneous
}

// degreeToVoltage quantizes a scale degree (possibly negative, possibly
// outside one octave) to a V/Oct voltage (0 V = A0, MIDI 21) against the
// module's current scale. Octave wrapping is explicit: degree -1 in a
// 7-note scale is the 7th step of the octave below, not steps[-1 % 7],
// which in Go would index the wrong side of zero.
func (m *intervalSeqModule) degreeToVoltage(degree int) float64 {
	ivs := m.scaleIntervals
	if len(ivs) == 0 {
		// Chromatic fallback: degree is a bare semitone offset from the root.
		return float64(m.baseMidi-21+degree) / 12.0
	}
	n := len(ivs)
	var octave, wrapped int
	if degree >= 0 {
		octave = degree / n
		wrapped = degree % n
	} else {
		adj := degree + 1
		octave = adj/n - 1
		wrapped = ((degree % n) + n) % n
	}
	semitone := ivs[wrapped]
	midi := m.baseMidi + octave*12 + semitone
	return float64(midi-21) / 12.0
}

// allocateVoice picks the next free voice in round-robin order starting
// at nextVoice; if every voice is busy it steals the least-recently-
// assigned one.
func (m *intervalSeqModule) allocateVoice(playhead float64, n int) int {
	for i := 0; i < n; i++ {
		idx := (m.nextVoice + i) % n
		if !m.voices[idx].active {
			m.nextVoice = (idx + 1) % n
			m.voices[idx].lastAssigned = playhead
			return idx
		}
	}
	oldest := 0
	for i := 1; i < n; i++ {
		if m.voices[i].lastAssigned < m.voices[oldest].lastAssigned {
			oldest = i
		}
	}
	m.voices[oldest].active = false
	m.voices[oldest].cachedHap = nil
	m.voices[oldest].lastAssigned = playhead
	m.nextVoice = (oldest + 1) % n
	return oldest
}

func (m *intervalSeqModule) releaseEndedVoices(playhead float64, n int) {
	for i := 0; i < n; i++ {
		v := &m.voices[i]
		if v.cachedHap != nil && !v.cachedHap.contains(playhead) {
			v.active = false
			v.cachedHap = nil
		}
	}
}

func (m *intervalSeqModule) Update(frame uint64, p *Patch) {
	if !m.ShouldUpdate(frame) {
		return
	}
	cycle, frac := m.playheadPosition(p)
	playhead := float64(cycle) + frac
	n := m.ChannelCount()

	m.releaseEndedVoices(playhead, n)

	// Every frame's trig reads as a one-shot pulse: cleared here, then set
	// again below only on the exact frame a new hap gets assigned a voice.
	for i := 0; i < n; i++ {
		m.voices[i].trig = 0
	}

	if m.intervalSrc == "" && m.addSrc == "" {
		return
	}

	if !m.cacheValid || m.cachedCycle != cycle {
		m.refreshCache(cycle)
	}

	for hapIndex, combined := range m.cachedCombinedHaps {
		if !combined.hasOnset || combined.degree == nil {
			continue
		}
		if playhead < combined.partBegin || playhead >= combined.partEnd {
			continue
		}
		alreadyAssigned := false
		for i := 0; i < n; i++ {
			if ch := m.voices[i].cachedHap; ch != nil && ch.hapIndex == hapIndex && ch.cachedCycle == cycle {
				alreadyAssigned = true
				break
			}
		}
		if alreadyAssigned {
			continue
		}

		idx := m.allocateVoice(playhead, n)
		voltage := m.degreeToVoltage(*combined.degree)
		m.voices[idx].cachedHap = &cachedIntervalHap{
			hapIndex:    hapIndex,
			cachedCycle: cycle,
			wholeBegin:  combined.wholeBegin,
			wholeEnd:    combined.wholeEnd,
		}
		m.voices[idx].cv = voltage
		m.voices[idx].active = true
		m.voices[idx].trig = 1
	}
}

func (m *intervalSeqModule) GetSample(port string, channel int) float64 {
	poly := m.GetPoly(port)
	if channel < 0 || channel >= poly.N {
		return 0
	}
	return poly.Values[channel]
}

func (m *intervalSeqModule) GetPoly(port string) PolySignal {
	var ps PolySignal
	ps.N = m.ChannelCount()
	for i := 0; i < ps.N; i++ {
		v := m.voices[i]
		switch port {
		case "cv":
			ps.Values[i] = v.cv
		case "gate":
			if v.active {
				ps.Values[i] = 5
			}
		case "trig":
			if v.trig != 0 {
				ps.Values[i] = 5
			}
		}
	}
	return ps
}

func (m *intervalSeqModule) HandleMessage(msg Message) {}
