// patch_update.go - Atomic, all-or-nothing patch graph replacement

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sort"
)

// ConnSpec is one input port's desired wiring: either a constant value or
// a cable to another module's output, mirroring Signal's own two live
// variants (a desired patch never asks for an explicitly-disconnected
// port; omitting the port from ModuleSpec.Connections does that).
type ConnSpec struct {
	Volts *float64
	Cable *CableSpec
}

// CableSpec names a cable target by id/port/channel, the desired-graph
// counterpart of Cable.
type CableSpec struct {
	ModuleID string
	Port     string
	Channel  int
}

func (c ConnSpec) toSignal() Signal {
	if c.Volts != nil {
		return VoltsSignal(*c.Volts)
	}
	if c.Cable != nil {
		return CableSignal(c.Cable.ModuleID, c.Cable.Port, c.Cable.Channel)
	}
	return DisconnectedSignal()
}

// ModuleSpec is the desired state of a single module within a PatchDocument.
type ModuleSpec struct {
	ID          string
	Type        string
	Params      map[string]any
	Connections map[string]ConnSpec
}

// ScopeSpec is the desired configuration of one waveform tap, keyed by an
// arbitrary caller-chosen tap key. ModuleID/Port/Channel name what the
// tap watches, the same triple CableSpec carries.
type ScopeSpec struct {
	Key              string
	ModuleID         string
	Port             string
	Channel          int
	MsPerFrame       float64
	TriggerThreshold *float64
}

// TrackKeyframeSpec is one (time, polysignal) pair of a sequencer track.
type TrackKeyframeSpec struct {
	Time  float64
	Value []float64
}

// TrackSpec is the control API's wire shape for a sequencer track.
// Tracks are reconciled as ordinary modules of type "track"; TrackSpec
// exists only to give the desired graph's separate tracks list its own
// typed shape before it's folded into the module diff.
type TrackSpec struct {
	ID            string
	Playhead      *ConnSpec
	Keyframes     []TrackKeyframeSpec
	Interpolation string
}

// asModuleSpec translates a TrackSpec into the ModuleSpec ApplyPatch's
// ordinary module-diffing machinery understands, so tracks are created,
// renamed, reparameterized, and reconnected with exactly the same code
// path as every other module type.
func (t TrackSpec) asModuleSpec() ModuleSpec {
	kfs := make([]any, len(t.Keyframes))
	for i, k := range t.Keyframes {
		var valAny any
		switch len(k.Value) {
		case 0:
			valAny = 0.0
		case 1:
			valAny = k.Value[0]
		default:
			vs := make([]any, len(k.Value))
			for j, v := range k.Value {
				vs[j] = v
			}
			valAny = vs
		}
		kfs[i] = map[string]any{"time": k.Time, "value": valAny}
	}
	conns := make(map[string]ConnSpec, 1)
	if t.Playhead != nil {
		conns["playhead"] = *t.Playhead
	}
	return ModuleSpec{
		ID:   t.ID,
		Type: "track",
		Params: map[string]any{
			"keyframes":          kfs,
			"interpolation_type": t.Interpolation,
		},
		Connections: conns,
	}
}

// PatchDocument is the entire desired graph a patch update moves to: the
// modules, scope taps, and sequencer tracks that should exist afterward.
type PatchDocument struct {
	Modules []ModuleSpec
	Scopes  []ScopeSpec
	Tracks  []TrackSpec
}

// defaultConnector is implemented by modules that have one or more input
// ports with a default connection: a port left disconnected at
// construction/reconnect time should resolve to a standing cable (e.g. a
// sequencer's playhead input defaulting to the root clock) rather than
// reading as silence. ApplyPatch calls this after the ordinary Connect
// pass so an explicit wire always wins over the default.
type defaultConnector interface {
	ApplyDefaultConnections()
}

// ApplyPatch replaces p's module graph with the one described by doc in a
// single atomic operation: either every module in doc ends up constructed,
// parameterized, and wired, or none of p's existing state is touched at
// all. Five phases:
//
//  1. Classify every id in doc and in p as kept / deleted / created.
//  2. Type-preserving reuse: pair same-type ids among the deletes and
//     creates (excluding type changes) and rename the existing instance
//     in place instead of destroying and rebuilding it.
//  3. Apply deletions (non-reused deletes, then the renames).
//  4. Construct every newly-created module. If any single construction
//     fails, the whole update aborts before anything is applied to p.
//  5. Reparameterize every kept/renamed module, reconnect every module's
//     inputs (applying default connections where a port is left
//     disconnected), rebuild the message-listener index, and reconcile
//     scope taps.
func ApplyPatch(p *Patch, doc PatchDocument) error {
	p.Lock()
	defer p.Unlock()

	allModules := make([]ModuleSpec, 0, len(doc.Modules)+len(doc.Tracks))
	allModules = append(allModules, doc.Modules...)
	for _, t := range doc.Tracks {
		allModules = append(allModules, t.asModuleSpec())
	}

	desired := make(map[string]ModuleSpec, len(allModules))
	for _, spec := range allModules {
		if spec.ID == AudioInID {
			return fmt.Errorf("patch update: %q is a reserved module id", AudioInID)
		}
		if _, dup := desired[spec.ID]; dup {
			return fmt.Errorf("patch update: duplicate module id %q", spec.ID)
		}
		desired[spec.ID] = spec
	}

	type kind int
	const (
		kindKeep kind = iota
		kindDelete
		kindCreate
	)
	classification := make(map[string]kind)

	for id := range p.modules {
		if id == AudioInID {
			continue
		}
		if _, want := desired[id]; !want {
			classification[id] = kindDelete
		}
	}
	for id, spec := range desired {
		existing, exists := p.modules[id]
		if !exists {
			classification[id] = kindCreate
			continue
		}
		if moduleTypeName(existing) != spec.Type {
			classification[id] = kindDelete
		} else {
			classification[id] = kindKeep
		}
	}
	// A type change needs both a deletion and a fresh construction for the
	// same id; kindKeep/kindDelete/kindCreate as computed above only cover
	// one verdict per id, so re-scan for that combined case explicitly.
	needsRecreate := make(map[string]bool)
	for id, spec := range desired {
		if existing, exists := p.modules[id]; exists && moduleTypeName(existing) != spec.Type {
			needsRecreate[id] = true
		}
	}

	// Phase 2: type-preserving reuse. For each module type appearing in
	// both the true deletes and the true creates (excluding ids already
	// claimed by a same-id type change above), pair the lexicographically
	// earliest delete with the earliest create of that type and rename
	// the existing instance in place - this is what keeps an ADSR's
	// envelope stage or a filter's memory intact when a patch edit merely
	// renames a node.
	deletesByType := make(map[string][]string)
	for id, k := range classification {
		if k != kindDelete || needsRecreate[id] {
			continue
		}
		mod, ok := p.modules[id]
		if !ok {
			continue
		}
		deletesByType[moduleTypeName(mod)] = append(deletesByType[moduleTypeName(mod)], id)
	}
	createsByType := make(map[string][]string)
	for id, spec := range desired {
		if classification[id] != kindCreate {
			continue
		}
		createsByType[spec.Type] = append(createsByType[spec.Type], id)
	}
	for t := range deletesByType {
		sort.Strings(deletesByType[t])
	}
	for t := range createsByType {
		sort.Strings(createsByType[t])
	}

	type renamePair struct{ oldID, newID string }
	var renames []renamePair
	for t, dels := range deletesByType {
		creates := createsByType[t]
		n := len(dels)
		if len(creates) < n {
			n = len(creates)
		}
		for i := 0; i < n; i++ {
			renames = append(renames, renamePair{oldID: dels[i], newID: creates[i]})
		}
	}
	// renamedNew ids are treated like kindKeep for reparameterization
	// purposes below; delete them from classification's "to delete" set
	// entirely so phase 3 doesn't also remove the instance being reused.
	renamedNew := make(map[string]bool, len(renames))
	for _, r := range renames {
		renamedNew[r.newID] = true
		delete(classification, r.oldID)
	}

	// Phase 4: construct every new (or type-changed) module before
	// touching p at all, so a construction failure leaves p untouched.
	created := make(map[string]Module)
	for id, spec := range desired {
		if renamedNew[id] {
			continue
		}
		if classification[id] != kindCreate && !needsRecreate[id] {
			continue
		}
		mod, err := NewModule(spec.Type, id, spec.Params)
		if err != nil {
			return fmt.Errorf("patch update: constructing %q: %w", id, err)
		}
		created[id] = mod
	}

	// Nothing past this point can fail, so it's safe to start mutating p.

	// Phase 3: deletions (ids dropped outright, and the old half of any
	// type change), then rename reused modules in place.
	for id, k := range classification {
		if k == kindDelete {
			p.remove(id)
		}
	}
	for id := range needsRecreate {
		p.remove(id)
	}
	for _, r := range renames {
		p.rename(r.oldID, r.newID)
	}

	// Phase 5a: install newly-created modules.
	for id, mod := range created {
		p.set(id, mod)
	}

	// Phase 5b: reparameterize kept and renamed modules (type-changed
	// ones already got their params at construction time above).
	for id, spec := range desired {
		if needsRecreate[id] {
			continue
		}
		if classification[id] != kindKeep && !renamedNew[id] {
			continue
		}
		mod, ok := p.modules[id]
		if !ok {
			continue
		}
		if err := mod.TryUpdateParams(spec.Params); err != nil {
			return fmt.Errorf("patch update: reparameterizing %q: %w", id, err)
		}
	}

	// Phase 5c: reconnect every desired module's inputs, kept and created
	// alike, now that every id in doc resolves to a live module. Ports
	// left disconnected then get a chance to pick up a default connection.
	for id, spec := range desired {
		mod, ok := p.modules[id]
		if !ok {
			continue
		}
		for port, conn := range spec.Connections {
			if err := mod.Connect(port, conn.toSignal()); err != nil {
				return fmt.Errorf("patch update: connecting %q.%q: %w", id, port, err)
			}
		}
		if dc, ok := mod.(defaultConnector); ok {
			dc.ApplyDefaultConnections()
		}
	}

	// Phase 5c': derive and write every module's channel count now that
	// all cables resolve. Widths can depend on upstream widths (a spread
	// module downstream of a voice bank), so iterate to a fixpoint; each
	// pass can only widen along one more cable hop, so the graph's depth
	// bounds the loop and the cap below bounds pathological cycles.
	for pass := 0; pass < PolyMax; pass++ {
		changed := false
		for id := range desired {
			mod, ok := p.modules[id]
			if !ok {
				continue
			}
			s, ok := mod.(interface{ setChannelCount(int) })
			if !ok {
				continue
			}
			n := computeChannelCount(p, mod)
			if n < 1 {
				n = 1
			}
			if n > PolyMax {
				n = PolyMax
			}
			if n != mod.ChannelCount() {
				s.setChannelCount(n)
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	p.RebuildListeners()

	// Phase 5d: reconcile scope taps against the desired set, keyed by
	// tap key. Existing taps not named in doc.Scopes are dropped; every
	// named tap is (re)installed fresh.
	desiredScopes := make(map[string]ScopeSpec, len(doc.Scopes))
	for _, s := range doc.Scopes {
		desiredScopes[s.Key] = s
	}
	for _, key := range p.scopes.Keys() {
		if _, want := desiredScopes[key]; !want {
			p.scopes.Set(key, nil)
		}
	}
	for key, s := range desiredScopes {
		p.scopes.Set(key, newScopeTap(s.ModuleID, s.Port, s.Channel, s.MsPerFrame, s.TriggerThreshold))
	}

	return nil
}

// moduleTypeName recovers the registry type name a live module was built
// from. Every concrete module type satisfies this via a small typeName()
// method alongside its constructor registration.
func moduleTypeName(m Module) string {
	if tn, ok := m.(interface{ typeName() string }); ok {
		return tn.typeName()
	}
	return fmt.Sprintf("%T", m)
}
