// recorder.go - WAV recording sink, 32-bit float PCM mono

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-audio/wav"
)

// wavFormatIEEEFloat is the WAVE_FORMAT_IEEE_FLOAT audio format tag.
const wavFormatIEEEFloat = 0x0003

// recorder is the try-lock-guarded WAV writer shared between the audio
// thread and the control thread: the audio callback writes one sample per
// frame when armed, and a failed try_lock is silent - the next frame
// retries. The armed flag is a separate atomic so the callback can skip
// the whole path without touching the mutex while recording is off.
type recorder struct {
	mu    sync.Mutex
	file  *os.File
	enc   *wav.Encoder
	path  string
	armed atomic.Bool
}

func newRecorder() *recorder {
	return &recorder{}
}

// Start opens path and arms recording. Any previously open recording is
// closed first.
func (r *recorder) Start(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.armed.Load() {
		r.closeLocked()
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("recorder: create %s: %w", path, err)
	}
	r.file = f
	r.enc = wav.NewEncoder(f, int(SampleRate), 32, 1, wavFormatIEEEFloat)
	r.path = path
	r.armed.Store(true)
	return nil
}

// Stop closes the current recording and returns its path, or ("", false)
// if nothing was armed.
func (r *recorder) Stop() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.armed.Load() {
		return "", false
	}
	path := r.path
	r.closeLocked()
	return path, true
}

func (r *recorder) closeLocked() {
	r.armed.Store(false)
	if r.enc != nil {
		r.enc.Close()
	}
	if r.file != nil {
		r.file.Close()
	}
	r.enc = nil
	r.file = nil
}

// WriteSample is called once per audio frame from the callback; it never
// blocks. A failed try_lock (the control thread is stopping/starting a
// recording right now) is reported via ok=false so the caller can bump
// the recorder-write-misses counter. v is expected in the engine's
// post-softclip range of roughly [-1, 1].
func (r *recorder) WriteSample(v float64) (ok bool) {
	if !r.mu.TryLock() {
		return false
	}
	defer r.mu.Unlock()
	if r.enc == nil {
		return true
	}
	if err := r.enc.WriteFrame(float32(v)); err != nil {
		return false
	}
	return true
}

// IsArmed reports whether a recording is open, without taking the mutex.
func (r *recorder) IsArmed() bool {
	return r.armed.Load()
}
