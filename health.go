// health.go - lock-free health counters read by the control thread

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "sync/atomic"

// HealthSnapshot is a point-in-time read of the audio thread's health
// counters. The audio callback never reports errors; everything that can
// go wrong on the fast path is reduced to silence plus one of these.
type HealthSnapshot struct {
	PatchLockMisses        uint64
	OutputCallbackOverruns uint64
	RecorderWriteMisses    uint64
}

// healthCounters holds the atomics mutated from the audio callback and
// read from anywhere else; each field gets its own cache line's worth of
// padding would be overkill at three counters, so they're plain fields.
type healthCounters struct {
	patchLockMisses        atomic.Uint64
	outputCallbackOverruns atomic.Uint64
	recorderWriteMisses    atomic.Uint64
}

func (h *healthCounters) Snapshot() HealthSnapshot {
	return HealthSnapshot{
		PatchLockMisses:        h.patchLockMisses.Load(),
		OutputCallbackOverruns: h.outputCallbackOverruns.Load(),
		RecorderWriteMisses:    h.recorderWriteMisses.Load(),
	}
}
