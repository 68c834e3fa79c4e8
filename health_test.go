package main

import "testing"

func TestHealthCountersSnapshot(t *testing.T) {
	var h healthCounters
	h.patchLockMisses.Add(2)
	h.outputCallbackOverruns.Add(1)
	h.recorderWriteMisses.Add(3)

	snap := h.Snapshot()
	if snap.PatchLockMisses != 2 || snap.OutputCallbackOverruns != 1 || snap.RecorderWriteMisses != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}
