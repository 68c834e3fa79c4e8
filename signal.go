// signal.go - Core signal value types for the modular patch graph

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import "fmt"

// PolyMax is the maximum number of channels a PolySignal can carry at once.
// Chosen to comfortably cover MPE voice counts and stacked sequencer degrees
// without forcing a heap allocation per sample.
const PolyMax = 16

// Cable is a weak back-reference to an output port on another module. It is
// "weak" in the sense that it names a module by id rather than holding a
// pointer to it: modules are free to disappear during a patch update and a
// dangling Cable simply resolves to Disconnected on the next tick.
type Cable struct {
	ModuleID string
	Port     string
	Channel  int
}

// Signal is the value carried on a single mono parameter or input port.
// The zero value is Disconnected.
type Signal struct {
	kind  signalKind
	volts float64
	cable Cable
}

type signalKind uint8

const (
	sigDisconnected signalKind = iota
	sigVolts
	sigCable
)

// Disconnected reports whether the signal carries no value at all.
func (s Signal) Disconnected() bool { return s.kind == sigDisconnected }

// IsCable reports whether the signal references another module's output.
func (s Signal) IsCable() bool { return s.kind == sigCable }

// AsCable returns the referenced cable and true if the signal is a cable.
func (s Signal) AsCable() (Cable, bool) {
	if s.kind != sigCable {
		return Cable{}, false
	}
	return s.cable, true
}

// AsVolts returns the literal value and true if the signal is a constant.
func (s Signal) AsVolts() (float64, bool) {
	if s.kind != sigVolts {
		return 0, false
	}
	return s.volts, true
}

// DisconnectedSignal is the canonical disconnected value.
func DisconnectedSignal() Signal { return Signal{kind: sigDisconnected} }

// VoltsSignal builds a constant-value signal.
func VoltsSignal(v float64) Signal { return Signal{kind: sigVolts, volts: v} }

// CableSignal builds a signal that reads another module's output port.
func CableSignal(moduleID, port string, channel int) Signal {
	return Signal{kind: sigCable, cable: Cable{ModuleID: moduleID, Port: port, Channel: channel}}
}

func (s Signal) String() string {
	switch s.kind {
	case sigVolts:
		return fmt.Sprintf("%g", s.volts)
	case sigCable:
		return fmt.Sprintf("%s.%s[%d]", s.cable.ModuleID, s.cable.Port, s.cable.Channel)
	default:
		return "disconnected"
	}
}

// PolySignal is a fixed-capacity array of up to PolyMax channels plus an
// active count. Modules that only ever produce one channel still return a
// PolySignal with N set to 1; this keeps the read path uniform everywhere.
type PolySignal struct {
	Values [PolyMax]float64
	N      int
}

// Mono builds a single-channel PolySignal.
func Mono(v float64) PolySignal {
	var p PolySignal
	p.Values[0] = v
	p.N = 1
	return p
}

// Silent returns a PolySignal with no active channels.
func Silent() PolySignal { return PolySignal{} }

// At reads lane i with the spread rule: a consumer iterating lanes wider
// than this signal reads channel i mod N, so narrower sources repeat over
// wider outputs (a 2-voice source heard on lane 5 plays voice 1). A signal
// with no active channels reads silence on every lane. This wrap is for
// module INPUTS only - a module's own output read (GetSample) returns 0 V
// past its active count instead, never wrapping.
func (p PolySignal) At(i int) float64 {
	if i < 0 || p.N <= 0 {
		return 0
	}
	if i < p.N {
		return p.Values[i]
	}
	return p.Values[i%p.N]
}

// First is shorthand for At(0), the common case of reading a mono cable.
func (p PolySignal) First() float64 { return p.At(0) }
