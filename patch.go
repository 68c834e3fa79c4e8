// patch.go - The live module graph the audio thread reads every frame

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync"
)

// RootOutputID is the well-known id every patch must contain: its GetSample
// output is what the audio callback actually writes to the device.
const RootOutputID = "root"

// AudioInID is the id of the patch's hidden audio-input module, always
// present even if nothing connects to it, so that any patch can reference
// "the live input" without first creating it explicitly.
const AudioInID = "audio_in"

// Patch is the live module graph. The audio thread only ever reads it
// through TryLock - it never blocks waiting for a patch update to finish,
// trading a dropped frame (silence) for the guarantee that audio timing
// never stalls on control-plane work.
type Patch struct {
	mu sync.Mutex

	modules map[string]Module
	order   []string // insertion order, used only for deterministic iteration in tests/dumps

	// listeners maps a message tag to the set of module ids that asked to
	// receive messages with that tag. Rebuilt whenever a patch update adds,
	// removes, or reconnects a module, rather than touched incrementally,
	// which keeps the rebuild-after-mutate invariant simple to reason about.
	listeners map[string][]string

	// scopes holds the patch's waveform-display taps. It lives here rather
	// than on Engine because apply_patch's scope-reconciliation phase needs
	// to mutate it under the same lock that guards the module graph,
	// atomically with the rest of a patch update.
	scopes *scopeCollection

	frame uint64
}

// NewPatch creates an empty patch containing only the hidden AudioIn module.
func NewPatch() *Patch {
	p := &Patch{
		modules:   make(map[string]Module),
		listeners: make(map[string][]string),
		scopes:    newScopeCollection(),
	}
	audioIn := newAudioInModule(AudioInID)
	p.modules[AudioInID] = audioIn
	p.order = append(p.order, AudioInID)
	return p
}

// TryLock attempts to acquire the patch for audio-thread access. Returns
// false immediately if a control-plane update is in progress.
func (p *Patch) TryLock() bool { return p.mu.TryLock() }

// Unlock releases a lock taken with TryLock or Lock.
func (p *Patch) Unlock() { p.mu.Unlock() }

// Lock acquires the patch unconditionally; only the control-plane (patch
// updates) ever calls this - the audio thread must always use TryLock.
func (p *Patch) Lock() { p.mu.Lock() }

// Module looks up a module by id. Callers must hold the patch lock.
func (p *Patch) Module(id string) (Module, bool) {
	m, ok := p.modules[id]
	return m, ok
}

// Modules returns the patch's modules in stable insertion order. Callers
// must hold the patch lock.
func (p *Patch) Modules() []Module {
	out := make([]Module, 0, len(p.order))
	for _, id := range p.order {
		if m, ok := p.modules[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// TickAll advances every module once for frame, then updates every module
// once. Splitting the two loops means every module's Tick has already run
// by the time any module's Update resolves a cable - a one-sample-delayed
// but always-defined value for feedback cycles, and a pure top-to-bottom
// value for acyclic fan-out, decided purely by iteration order never
// mattering for correctness, only for which frame a cycle settles on.
func (p *Patch) TickAll() {
	p.frame++
	for _, m := range p.modules {
		m.Tick(p.frame, p)
	}
	for _, m := range p.modules {
		m.Update(p.frame, p)
	}
}

// Frame returns the current frame counter.
func (p *Patch) Frame() uint64 { return p.frame }

// Resolve reads the PolySignal-equivalent scalar a Signal currently carries,
// resolving a Cable by looking up the referenced module and calling
// GetSample. A Cable to a missing module or port resolves to silence (0)
// rather than an error, since a dangling cable is a normal transient state
// during a patch update, not a program bug.
func (p *Patch) Resolve(sig Signal) float64 {
	if v, ok := sig.AsVolts(); ok {
		return v
	}
	c, ok := sig.AsCable()
	if !ok {
		return 0
	}
	m, ok := p.modules[c.ModuleID]
	if !ok {
		return 0
	}
	return m.GetSample(c.Port, c.Channel)
}

// RootSample returns the current value of the patch's root output, the one
// value the audio callback actually plays. Returns 0 if no root module
// exists (e.g. mid-construction during an atomic patch update).
func (p *Patch) RootSample(channel int) float64 {
	m, ok := p.modules[RootOutputID]
	if !ok {
		return 0
	}
	return m.GetSample("out", channel)
}

// PushAudioIn feeds a live input sample into the hidden AudioIn module so
// that patches referencing audio_in.out see the current input frame.
func (p *Patch) PushAudioIn(channel int, v float64) {
	if ai, ok := p.modules[AudioInID].(*audioInModule); ok {
		ai.set(channel, v)
	}
}

// RebuildListeners recomputes the message-tag -> listener-id index from
// scratch. Called once at the end of every patch update; never touched
// incrementally so that deletions can never leave a stale entry behind.
func (p *Patch) RebuildListeners() {
	p.listeners = make(map[string][]string)
	for id, m := range p.modules {
		lm, ok := m.(messageListener)
		if !ok {
			continue
		}
		for _, tag := range lm.ListensFor() {
			p.listeners[tag] = append(p.listeners[tag], id)
		}
	}
}

// Dispatch delivers msg to every module currently registered for its Tag.
func (p *Patch) Dispatch(msg Message) {
	for _, id := range p.listeners[msg.Tag] {
		if m, ok := p.modules[id]; ok {
			m.HandleMessage(msg)
		}
	}
}

// messageListener is implemented by modules that need to declare which
// message tags they want delivered to HandleMessage; modules that don't
// care about any messages simply don't implement it.
type messageListener interface {
	ListensFor() []string
}

// set installs id directly, bypassing the patch-update diff engine. Used
// only by ApplyPatch once a module has already been constructed/reused.
func (p *Patch) set(id string, m Module) {
	if _, existed := p.modules[id]; !existed {
		p.order = append(p.order, id)
	}
	p.modules[id] = m
}

// remove deletes id from the patch. Used only by ApplyPatch.
func (p *Patch) remove(id string) {
	delete(p.modules, id)
	for i, oid := range p.order {
		if oid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// rename moves the module currently at oldID to newID in place, preserving
// its instance and its position in iteration order - the mechanism behind
// type-preserving reuse during a patch update. A module that embeds
// moduleBase also gets its self-reported ID() updated via idSetter; a
// module that doesn't is left reporting its old id, which would only
// happen for a hand-written Module that skips moduleBase entirely (none do
// in this tree).
func (p *Patch) rename(oldID, newID string) {
	mod, ok := p.modules[oldID]
	if !ok {
		return
	}
	delete(p.modules, oldID)
	p.modules[newID] = mod
	for i, oid := range p.order {
		if oid == oldID {
			p.order[i] = newID
			break
		}
	}
	if s, ok := mod.(idSetter); ok {
		s.setID(newID)
	}
}

// idSetter is implemented by moduleBase-embedding modules so ApplyPatch's
// rename phase can keep a module's self-reported id in sync after a rename.
type idSetter interface {
	setID(id string)
}

// SetScopeTap installs or removes (tap == nil) a scope tap under key.
// Exposed for direct control-API use outside apply_patch (e.g. a one-off
// debug probe); apply_patch itself reconciles the full desired set via
// ApplyPatch's scope phase.
func (p *Patch) SetScopeTap(key string, tap *scopeTap) {
	p.scopes.Set(key, tap)
}

// SampleScopes is called once per audio frame by the audio callback.
func (p *Patch) SampleScopes() {
	p.scopes.Sample(p)
}

// ScopeBuffers returns every active tap's current ring contents.
func (p *Patch) ScopeBuffers() map[string][scopeRingCapacity]float32 {
	return p.scopes.Buffers()
}

func (p *Patch) requireModule(id string) (Module, error) {
	m, ok := p.modules[id]
	if !ok {
		return nil, fmt.Errorf("patch: no module with id %q", id)
	}
	return m, nil
}
