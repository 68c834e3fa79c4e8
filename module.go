// module.go - The Module contract every DSP unit in the patch graph implements

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"math"
)

// SampleRate is the fixed audio-thread sample rate the whole engine runs at.
const SampleRate = 48000.0

// Message is a control-plane event routed to every module that registered
// interest in its Tag, independent of cable connections. MIDI notes, clock
// start/stop, and transport resets all travel as Messages rather than as
// audio-rate Signals.
type Message struct {
	Tag     string
	Payload any
}

// Module is the contract every unit in the patch graph satisfies. A single
// audio frame always visits every module in this order:
//
//  1. Tick advances internal state (oscillator phase, envelope stage, clock
//     divider counters) exactly once per frame, before any GetSample call.
//  2. Update lets a module pull its input Signals (by resolving any Cables
//     against the Patch) and recompute whatever it derives from them.
//  3. GetSample is called, possibly many times by different listeners, and
//     must be a pure read of state already settled by Tick/Update - it may
//     not advance any state itself.
//
// Because GetSample can be called more than once per frame (fan-out), and
// a cable graph can contain cycles, every module memoizes the work done in
// Tick/Update behind a per-frame "processed" flag (see moduleBase) so that
// re-entrant resolution during Update never does the work twice and cycles
// resolve using the previous frame's value rather than recursing forever.
type Module interface {
	// ID returns the module's identifier within its owning Patch.
	ID() string

	// Tick advances the module by one sample frame. frame is a monotonic
	// counter shared by the whole patch, used to detect "already ticked
	// this frame" without a separate reset pass.
	Tick(frame uint64, p *Patch)

	// Update resolves this module's inputs against p and recomputes any
	// output that depends on them. Called after Tick, same frame number.
	Update(frame uint64, p *Patch)

	// GetSample returns the current value of the named output port/channel.
	// Must not mutate state that affects future Tick/Update calls.
	GetSample(port string, channel int) float64

	// TryUpdateParams applies a partial parameter patch (e.g. frequency,
	// waveform) without rebuilding the module. Returns an error if any key
	// is not a recognized parameter for this module type.
	TryUpdateParams(params map[string]any) error

	// Connect wires an input port to a Signal (a cable, a constant, or
	// disconnects it).
	Connect(port string, sig Signal) error

	// HandleMessage is invoked for every Message whose Tag this module is
	// registered to listen for.
	HandleMessage(msg Message)

	// ChannelCount reports the module's active output width, always in
	// [1, PolyMax]. It is computed and written by the patch layer on every
	// patch update, never during evaluation.
	ChannelCount() int
}

// moduleBase centralizes the per-frame memoization bookkeeping so concrete
// modules only need to embed it and guard their Tick/Update bodies with
// ShouldTick/ShouldUpdate.
type moduleBase struct {
	id           string
	typ          string
	channelCount int
	tickedFrame  uint64
	updFrame     uint64
	everTicked   bool
	everUpdated  bool
}

func newModuleBase(id, typeName string) moduleBase {
	return moduleBase{id: id, typ: typeName, channelCount: 1}
}

func (b *moduleBase) ID() string { return b.id }

// setID updates the module's self-reported id after a patch-update rename
// (see Patch.rename); concrete modules never call this themselves.
func (b *moduleBase) setID(id string) { b.id = id }

// typeName reports the registry type name this module was constructed as;
// patch_update.go uses it to decide whether a kept id changed module type.
func (b *moduleBase) typeName() string { return b.typ }

// ChannelCount is always in [1, PolyMax]; a module that was never touched
// by a patch update reads as mono.
func (b *moduleBase) ChannelCount() int {
	if b.channelCount < 1 {
		return 1
	}
	return b.channelCount
}

// setChannelCount clamps and stores the width the patch layer derived.
// Constructors also call it through TryUpdateParams so a module built
// outside a patch update still reports a sane width.
func (b *moduleBase) setChannelCount(n int) {
	if n < 1 {
		n = 1
	}
	if n > PolyMax {
		n = PolyMax
	}
	b.channelCount = n
}

// How a module's channel count is derived is declared by implementing at
// most one of the three interfaces below; a module that implements none
// gets the default rule (the maximum active width across its poly-capable
// inputs, or 1 if it declares none via polyWidthInputs).

// fixedChannelCount declares a width baked into the module type, e.g. a
// stereo panner's 2.
type fixedChannelCount interface {
	FixedChannelCount() int
}

// paramChannelCount declares a width named directly by a parameter, e.g. a
// MIDI voice bank's "voices".
type paramChannelCount interface {
	ParamChannelCount() int
}

// derivedChannelCount declares a custom derivation, for widths that depend
// on more than one field (a sequencer's pattern sweep, a track's widest
// keyframe).
type derivedChannelCount interface {
	DeriveChannelCount(p *Patch) int
}

// polyWidthInputs opts a module into the default derivation by naming the
// input signals whose source widths it spreads over.
type polyWidthInputs interface {
	PolyWidthInputs() []Signal
}

// computeChannelCount applies the declared derivation strategy for m. The
// result is always in [1, PolyMax]; setChannelCount clamps again on write.
func computeChannelCount(p *Patch, m Module) int {
	switch d := m.(type) {
	case fixedChannelCount:
		return d.FixedChannelCount()
	case paramChannelCount:
		return d.ParamChannelCount()
	case derivedChannelCount:
		return d.DeriveChannelCount(p)
	case polyWidthInputs:
		n := 1
		for _, sig := range d.PolyWidthInputs() {
			if w := sourceWidth(p, sig); w > n {
				n = w
			}
		}
		return n
	}
	return 1
}

// sourceWidth reports the active channel count behind a signal: a cable's
// source module width, or 1 for constants and disconnected ports.
func sourceWidth(p *Patch, sig Signal) int {
	c, ok := sig.AsCable()
	if !ok {
		return 1
	}
	src, ok := p.Module(c.ModuleID)
	if !ok {
		return 1
	}
	if n := src.ChannelCount(); n > 1 {
		return n
	}
	return 1
}

// ShouldTick reports whether Tick still needs to run for frame, and marks
// it as done. Call this as the first line of every concrete Tick method.
func (b *moduleBase) ShouldTick(frame uint64) bool {
	if b.everTicked && b.tickedFrame == frame {
		return false
	}
	b.tickedFrame = frame
	b.everTicked = true
	return true
}

// ShouldUpdate is the Update-phase equivalent of ShouldTick.
func (b *moduleBase) ShouldUpdate(frame uint64) bool {
	if b.everUpdated && b.updFrame == frame {
		return false
	}
	b.updFrame = frame
	b.everUpdated = true
	return true
}

// Smoother is a one-pole low-pass applied to every audio-rate control
// parameter so that patch edits, MIDI CC changes, and sequencer steps never
// produce a sample-to-sample discontinuity audible as a click or zipper.
// The coefficient is derived from a fixed time constant rather than exposed
// as a tunable, matching the fire-and-forget smoothing the rest of the
// engine's per-sample parameter processing expects.
type Smoother struct {
	value  float64
	target float64
	coeff  float64
	primed bool
}

// smootherTimeConstantMs is the time to settle within ~63% of a step change.
const smootherTimeConstantMs = 5.0

// NewSmoother creates a Smoother already settled at initial.
func NewSmoother(initial float64) Smoother {
	tau := smootherTimeConstantMs / 1000.0
	coeff := 1.0
	if tau > 0 {
		coeff = 1.0 - math.Exp(-1.0/(tau*SampleRate))
	}
	return Smoother{value: initial, target: initial, coeff: coeff, primed: true}
}

// SetTarget updates the value the smoother is chasing.
func (s *Smoother) SetTarget(target float64) {
	if !s.primed {
		s.value = target
		s.primed = true
	}
	s.target = target
}

// Next advances the smoother by one sample and returns the new value.
func (s *Smoother) Next() float64 {
	s.value += (s.target - s.value) * s.coeff
	return s.value
}

// Value returns the current smoothed value without advancing it.
func (s *Smoother) Value() float64 { return s.value }

// voctToHz converts a pitch CV in volts-per-octave to Hz. 0 V is A0
// (27.5 Hz); each volt doubles the frequency, so 4 V is concert A at 440.
func voctToHz(v float64) float64 {
	return 27.5 * math.Exp2(v)
}

// ErrUnknownParam is returned by TryUpdateParams when a key isn't recognized.
func ErrUnknownParam(moduleType, key string) error {
	return fmt.Errorf("module type %q: unknown parameter %q", moduleType, key)
}

// ErrUnknownPort is returned by Connect/GetSample for an unrecognized port.
func ErrUnknownPort(moduleType, port string) error {
	return fmt.Errorf("module type %q: unknown port %q", moduleType, port)
}

// Constructor builds a Module from its id and a param bag taken from a
// patch-update Create operation.
type Constructor func(id string, params map[string]any) (Module, error)

// registry maps a module type name (as it appears in a patch document) to
// the constructor that builds it. Populated by each module file's init.
var registry = map[string]Constructor{}

func registerModule(typeName string, ctor Constructor) {
	if _, exists := registry[typeName]; exists {
		panic(fmt.Sprintf("module type %q registered twice", typeName))
	}
	registry[typeName] = ctor
}

// NewModule looks up typeName in the registry and constructs it.
func NewModule(typeName, id string, params map[string]any) (Module, error) {
	ctor, ok := registry[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown module type %q", typeName)
	}
	return ctor(id, params)
}
