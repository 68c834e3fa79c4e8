// audio_callback.go - the seven-step per-frame audio thread process

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"math"
	"time"
)

const (
	// moduleOutputVolts is the nominal peak amplitude modules produce on
	// their audio-rate outputs, attenuated down to the +-1 float range
	// audio devices and the WAV sink expect.
	moduleOutputVolts = 5.0

	fadeUpFactor   = 1.1
	fadeDownFactor = 0.9
	fadeEpsilon    = 1e-4
)

// Engine drives one Patch through the realtime audio callback: tick/update
// the graph, read the root output, fade in/out across start/stop, feed the
// scope taps and the recorder, and track health counters. It is the thing
// audioOutput pulls samples from.
type Engine struct {
	patch    *Patch
	recorder *recorder
	health   healthCounters

	stopped bool
	fade    float64
}

func NewEngine(patch *Patch) *Engine {
	return &Engine{
		patch:    patch,
		recorder: newRecorder(),
		fade:     0,
	}
}

// SetStopped arms or disarms the fade-to-silence ramp; it does not tear
// down the patch, matching the control API's set_stopped(bool).
func (e *Engine) SetStopped(stopped bool) {
	e.stopped = stopped
}

func (e *Engine) Health() HealthSnapshot {
	return e.health.Snapshot()
}

// NextFrame produces one output sample in the approximate range [-1, 1].
func (e *Engine) NextFrame() float32 {
	start := time.Now()

	// 1. Try-acquire the patch; on failure emit silence for this frame.
	if !e.patch.TryLock() {
		e.health.patchLockMisses.Add(1)
		return 0
	}
	defer e.patch.Unlock()

	// 2 & 3. tick() then update() every module.
	e.patch.TickAll()

	// 4. Read root output, attenuate, fade, soft-clip.
	raw := e.patch.RootSample(0) / moduleOutputVolts
	e.advanceFade()
	out := math.Tanh(raw * e.fade)

	// 5. Scope taps.
	e.patch.SampleScopes()

	// 6. Recording.
	if e.recorder.IsArmed() {
		if !e.recorder.WriteSample(out) {
			e.health.recorderWriteMisses.Add(1)
		}
	}

	// 7. Overrun accounting.
	budget := time.Second / time.Duration(SampleRate)
	if time.Since(start) > budget {
		e.health.outputCallbackOverruns.Add(1)
	}

	return float32(out)
}

// advanceFade ramps the fade factor geometrically: up while running,
// down while stopped, clamping at 1.0 and snapping to 0 below epsilon so
// a long-stopped engine doesn't keep multiplying by 0.9 forever.
func (e *Engine) advanceFade() {
	if e.stopped {
		e.fade *= fadeDownFactor
		if e.fade < fadeEpsilon {
			e.fade = 0
		}
		return
	}
	if e.fade >= 1.0 {
		e.fade = 1.0
		return
	}
	e.fade = e.fade*fadeUpFactor + 0.001
	if e.fade > 1.0 {
		e.fade = 1.0
	}
}

// StartRecording arms the WAV sink at path and returns the path actually
// used; an empty path picks a timestamped default in the working
// directory.
func (e *Engine) StartRecording(path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("recording_%d.wav", time.Now().Unix())
	}
	if err := e.recorder.Start(path); err != nil {
		return "", err
	}
	return path, nil
}

// StopRecording disarms the WAV sink, returning the path that was being
// written, if any.
func (e *Engine) StopRecording() (string, bool) {
	return e.recorder.Stop()
}

// SetScopeTap installs or removes (tap == nil) a scope tap under key,
// outside the declarative apply_patch path - useful for a one-off debug
// probe that shouldn't need a round trip through the desired graph. The
// scope collection guards itself with its own mutex, so this never
// contends with the patch-graph lock.
func (e *Engine) SetScopeTap(key string, tap *scopeTap) {
	e.patch.SetScopeTap(key, tap)
}

// ScopeBuffers returns every active tap's current ring contents.
func (e *Engine) ScopeBuffers() map[string][scopeRingCapacity]float32 {
	return e.patch.ScopeBuffers()
}

// PushAudioIn feeds live audio input into the patch's hidden audio_in
// module; the control thread (or a device driver) calls this before the
// next NextFrame if the patch uses an audio_in cable.
func (e *Engine) PushAudioIn(channel int, v float64) {
	if !e.patch.TryLock() {
		return
	}
	defer e.patch.Unlock()
	e.patch.PushAudioIn(channel, v)
}

// Dispatch delivers a message to every module listening for its tag.
func (e *Engine) Dispatch(msg Message) {
	if !e.patch.TryLock() {
		return
	}
	defer e.patch.Unlock()
	e.patch.Dispatch(msg)
}

// Apply runs the atomic five-phase patch update against the engine's
// live patch.
func (e *Engine) Apply(doc PatchDocument) error {
	return ApplyPatch(e.patch, doc)
}
