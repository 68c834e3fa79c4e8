//go:build !headless

// audio_backend_oto.go - oto/v3 audio output implementation

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// audioOutput drives an oto/v3 player from an Engine. oto pulls byte
// buffers through io.Reader; Read fills each frame by asking the engine
// for one mono sample and broadcasting it across however many device
// channels the stream was opened with. The engine is bound for the
// output's whole lifetime, so the hot path needs no pointer indirection
// or locking at all - Start/Stop only toggle the player.
type audioOutput struct {
	ctx      *oto.Context
	player   *oto.Player
	engine   *Engine
	channels int

	framesPulled atomic.Uint64

	mu      sync.Mutex
	started bool
}

const audioBytesPerSample = 4 // f32le

func newAudioOutput(e *Engine, sampleRate, channels int) (*audioOutput, error) {
	if channels < 1 {
		channels = 1
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, fmt.Errorf("audio output: %w", err)
	}
	<-ready

	ao := &audioOutput{
		ctx:      ctx,
		engine:   e,
		channels: channels,
	}
	ao.player = ctx.NewPlayer(ao)
	return ao, nil
}

// Read renders whole frames directly into p: one engine sample per frame,
// duplicated onto every device channel. Any trailing bytes that don't fit
// a whole frame are zeroed so the device never replays stale data.
func (ao *audioOutput) Read(p []byte) (int, error) {
	frameBytes := audioBytesPerSample * ao.channels
	frames := len(p) / frameBytes

	for f := 0; f < frames; f++ {
		bits := math.Float32bits(ao.engine.NextFrame())
		base := f * frameBytes
		for c := 0; c < ao.channels; c++ {
			binary.LittleEndian.PutUint32(p[base+c*audioBytesPerSample:], bits)
		}
	}
	for i := frames * frameBytes; i < len(p); i++ {
		p[i] = 0
	}

	ao.framesPulled.Add(uint64(frames))
	return len(p), nil
}

// FramesPulled reports how many frames the device has consumed since the
// output was created; alongside HealthSnapshot it lets the control thread
// tell "device not pulling" apart from "engine producing silence".
func (ao *audioOutput) FramesPulled() uint64 {
	return ao.framesPulled.Load()
}

func (ao *audioOutput) Start() {
	ao.mu.Lock()
	defer ao.mu.Unlock()
	if ao.started {
		return
	}
	ao.player.Play()
	ao.started = true
}

// Stop pauses the device without tearing it down; Start resumes the same
// stream. The engine's own fade ramp handles the audible edge.
func (ao *audioOutput) Stop() {
	ao.mu.Lock()
	defer ao.mu.Unlock()
	if !ao.started {
		return
	}
	ao.player.Pause()
	ao.started = false
}

func (ao *audioOutput) Close() {
	ao.mu.Lock()
	defer ao.mu.Unlock()
	if ao.player != nil {
		ao.player.Close()
		ao.player = nil
	}
	ao.started = false
}

func (ao *audioOutput) IsStarted() bool {
	ao.mu.Lock()
	defer ao.mu.Unlock()
	return ao.started
}
