package main

import "testing"

func TestSignalVariants(t *testing.T) {
	d := DisconnectedSignal()
	if !d.Disconnected() || d.IsCable() {
		t.Fatal("expected disconnected signal")
	}
	v := VoltsSignal(2.5)
	if got, ok := v.AsVolts(); !ok || got != 2.5 {
		t.Fatalf("expected volts 2.5, got %v ok=%v", got, ok)
	}
	c := CableSignal("osc1", "out", 1)
	cab, ok := c.AsCable()
	if !ok || cab.ModuleID != "osc1" || cab.Port != "out" || cab.Channel != 1 {
		t.Fatalf("unexpected cable: %+v ok=%v", cab, ok)
	}
}

func TestPolySignalAtWraparoundRule(t *testing.T) {
	mono := Mono(3.0)
	if mono.At(0) != 3.0 {
		t.Fatalf("expected channel 0 = 3.0, got %v", mono.At(0))
	}
	if mono.At(5) != 3.0 {
		t.Fatalf("expected lane 5 of a mono signal to wrap to channel 0, got %v", mono.At(5))
	}

	silent := Silent()
	if silent.At(0) != 0 || silent.At(3) != 0 {
		t.Fatal("expected N==0 to always read silence, never wrap")
	}

	var poly PolySignal
	poly.Values[0] = 1
	poly.Values[1] = 2
	poly.N = 2
	if poly.At(0) != 1 || poly.At(1) != 2 {
		t.Fatal("expected in-range reads to return actual channel values")
	}
	// Lane i reads channel i mod N: lane 5 of a 2-voice signal is voice 1.
	if poly.At(5) != 2 {
		t.Fatalf("expected lane 5 to read channel 5 mod 2 = 1, got %v", poly.At(5))
	}
}

func TestPolySignalFirst(t *testing.T) {
	if Mono(7).First() != 7 {
		t.Fatal("expected First() to equal At(0)")
	}
}
