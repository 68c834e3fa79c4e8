// scope.go - decimated ring-buffer taps for waveform visualization

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "sync"

const scopeRingCapacity = 256

// scopeTap names a signal to watch: a module's port, plus a channel for
// poly sources. skipRate decimates the incoming per-frame stream so the
// ring always represents msPerFrame of signal regardless of sample rate.
type scopeTap struct {
	ModuleID string
	Port     string
	Channel  int

	msPerFrame float64
	skipRate   int
	skipCount  int

	ring   [scopeRingCapacity]float32
	widx   int
	filled int

	triggerThreshold float64
	hasTrigger       bool
	triggered        bool
	holding          bool
}

func newScopeTap(moduleID, port string, channel int, msPerFrame float64, triggerThreshold *float64) *scopeTap {
	t := &scopeTap{
		ModuleID:   moduleID,
		Port:       port,
		Channel:    channel,
		msPerFrame: msPerFrame,
	}
	t.skipRate = samplesPerTap(msPerFrame)
	if triggerThreshold != nil {
		t.hasTrigger = true
		t.triggerThreshold = *triggerThreshold
	}
	return t
}

// samplesPerTap derives the decimation factor so scopeRingCapacity taps
// span msPerFrame milliseconds of signal at SampleRate.
func samplesPerTap(msPerFrame float64) int {
	totalSamples := msPerFrame / 1000.0 * SampleRate
	n := int(totalSamples / scopeRingCapacity)
	if n < 1 {
		n = 1
	}
	return n
}

// push is called once per audio frame; it only actually samples every
// skipRate frames, and applies Schmitt-trigger hold if configured: once
// the trigger fires the ring keeps filling until it wraps and then holds
// (stops advancing), giving a stable waveform display instead of a
// scrolling one.
func (t *scopeTap) push(sample float64) {
	if t.holding {
		return
	}
	t.skipCount++
	if t.skipCount < t.skipRate {
		return
	}
	t.skipCount = 0

	if t.hasTrigger && !t.triggered {
		if sample >= t.triggerThreshold {
			t.triggered = true
		} else if sample <= t.triggerThreshold-0.01 {
			t.triggered = false
		} else {
			return
		}
	}

	t.ring[t.widx] = float32(sample)
	t.widx++
	if t.filled < scopeRingCapacity {
		t.filled++
	}
	if t.widx >= scopeRingCapacity {
		t.widx = 0
		if t.hasTrigger && t.triggered {
			t.holding = true
		}
	}
}

// snapshot returns the ring contents in chronological order (oldest
// first). Unfilled slots at startup read as 0.
func (t *scopeTap) snapshot() [scopeRingCapacity]float32 {
	var out [scopeRingCapacity]float32
	if t.filled < scopeRingCapacity {
		copy(out[:], t.ring[:t.filled])
		return out
	}
	copy(out[:], t.ring[t.widx:])
	copy(out[scopeRingCapacity-t.widx:], t.ring[:t.widx])
	return out
}

// scopeCollection is the try-lock-guarded map of active taps, one of the
// three objects shared between the audio thread and the control thread
// (alongside the patch and the recording writer).
type scopeCollection struct {
	mu   sync.Mutex
	taps map[string]*scopeTap
}

func newScopeCollection() *scopeCollection {
	return &scopeCollection{taps: make(map[string]*scopeTap)}
}

// Set replaces a tap's configuration; used by ApplyPatch's scope-
// reconciliation phase. Passing nil removes the tap.
func (c *scopeCollection) Set(key string, tap *scopeTap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tap == nil {
		delete(c.taps, key)
		return
	}
	c.taps[key] = tap
}

// Keys returns the currently installed tap keys, used by ApplyPatch's
// scope-reconciliation phase to find taps the desired graph no longer
// names.
func (c *scopeCollection) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.taps))
	for k := range c.taps {
		out = append(out, k)
	}
	return out
}

// Sample is called from the audio callback once per frame for every
// active tap; failure to acquire the lock is silent (the control thread
// is mid-reconfiguration) and simply skips this frame's samples.
func (c *scopeCollection) Sample(p *Patch) {
	if !c.mu.TryLock() {
		return
	}
	defer c.mu.Unlock()
	for _, tap := range c.taps {
		m, ok := p.Module(tap.ModuleID)
		if !ok {
			continue
		}
		tap.push(m.GetSample(tap.Port, tap.Channel))
	}
}

// Buffers returns a snapshot of every tap's ring, keyed the same way the
// control API's get_scope_buffers() call exposes them.
func (c *scopeCollection) Buffers() map[string][scopeRingCapacity]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][scopeRingCapacity]float32, len(c.taps))
	for k, tap := range c.taps {
		out[k] = tap.snapshot()
	}
	return out
}
