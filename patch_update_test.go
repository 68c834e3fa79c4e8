package main

import "testing"

func TestApplyPatchCreatesModulesAndWiresCables(t *testing.T) {
	p := NewPatch()
	doc := PatchDocument{Modules: []ModuleSpec{
		{ID: "osc1", Type: "osc", Params: map[string]any{"waveform": "sine"}},
		{ID: "root", Type: "mix", Connections: map[string]ConnSpec{
			"in1": {Cable: &CableSpec{ModuleID: "osc1", Port: "out"}},
		}},
	}}
	if err := ApplyPatch(p, doc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := p.Module("osc1"); !ok {
		t.Fatal("expected osc1 to be created")
	}
	root, ok := p.Module("root")
	if !ok {
		t.Fatal("expected root to be created")
	}
	p.TickAll()
	if root.GetSample("out", 0) == 0 {
		t.Fatal("expected root's mix input to read osc1's output through the wired cable")
	}
}

func TestApplyPatchRejectsReservedAudioInID(t *testing.T) {
	p := NewPatch()
	doc := PatchDocument{Modules: []ModuleSpec{{ID: AudioInID, Type: "osc"}}}
	if err := ApplyPatch(p, doc); err == nil {
		t.Fatal("expected error when a spec claims the reserved audio_in id")
	}
}

func TestApplyPatchRejectsDuplicateID(t *testing.T) {
	p := NewPatch()
	doc := PatchDocument{Modules: []ModuleSpec{
		{ID: "a", Type: "osc"},
		{ID: "a", Type: "mix"},
	}}
	if err := ApplyPatch(p, doc); err == nil {
		t.Fatal("expected error for duplicate module id")
	}
}

func TestApplyPatchLeavesPatchUntouchedOnConstructionFailure(t *testing.T) {
	p := NewPatch()
	if err := ApplyPatch(p, PatchDocument{Modules: []ModuleSpec{{ID: "good", Type: "osc"}}}); err != nil {
		t.Fatalf("seed apply: %v", err)
	}
	doc := PatchDocument{Modules: []ModuleSpec{
		{ID: "good", Type: "osc"},
		{ID: "bad", Type: "nonexistent_type"},
	}}
	if err := ApplyPatch(p, doc); err == nil {
		t.Fatal("expected error for unknown module type")
	}
	if _, ok := p.Module("bad"); ok {
		t.Fatal("expected failed construction to leave no trace in the patch")
	}
	if _, ok := p.Module("good"); !ok {
		t.Fatal("expected the original patch state to survive a failed update")
	}
}

func TestApplyPatchDeletesDroppedModules(t *testing.T) {
	p := NewPatch()
	ApplyPatch(p, PatchDocument{Modules: []ModuleSpec{{ID: "a", Type: "osc"}}})
	if err := ApplyPatch(p, PatchDocument{Modules: nil}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := p.Module("a"); ok {
		t.Fatal("expected module dropped from the desired graph to be removed")
	}
}

func TestApplyPatchRenameReusesInstanceAndState(t *testing.T) {
	p := NewPatch()
	if err := ApplyPatch(p, PatchDocument{Modules: []ModuleSpec{{ID: "env-old", Type: "env_adsr"}}}); err != nil {
		t.Fatalf("seed apply: %v", err)
	}
	before, _ := p.Module("env-old")
	for i := 0; i < 1000; i++ {
		p.TickAll()
	}
	if err := ApplyPatch(p, PatchDocument{Modules: []ModuleSpec{{ID: "env-new", Type: "env_adsr"}}}); err != nil {
		t.Fatalf("rename apply: %v", err)
	}
	if _, ok := p.Module("env-old"); ok {
		t.Fatal("expected the old id to be gone after the rename")
	}
	after, ok := p.Module("env-new")
	if !ok {
		t.Fatal("expected env-new to exist")
	}
	if before != after {
		t.Fatal("expected the rename to reuse the existing instance")
	}
	if after.ID() != "env-new" {
		t.Fatalf("expected the reused instance to report its new id, got %q", after.ID())
	}
	if after.(*envADSRModule).stage != adsrIdle {
		t.Fatal("expected the reused envelope to still be idle, not retriggered")
	}
}

func TestApplyPatchIsIdempotentOnModuleIdentity(t *testing.T) {
	p := NewPatch()
	doc := PatchDocument{Modules: []ModuleSpec{
		{ID: "osc1", Type: "osc", Params: map[string]any{"waveform": "saw"}},
		{ID: "f1", Type: "filter_svf"},
	}}
	if err := ApplyPatch(p, doc); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	osc1, _ := p.Module("osc1")
	f1, _ := p.Module("f1")
	if err := ApplyPatch(p, doc); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if got, _ := p.Module("osc1"); got != osc1 {
		t.Fatal("expected osc1 to be the same instance after a repeated apply")
	}
	if got, _ := p.Module("f1"); got != f1 {
		t.Fatal("expected f1 to be the same instance after a repeated apply")
	}
}

func TestApplyPatchReconcilesScopeTaps(t *testing.T) {
	p := NewPatch()
	doc := PatchDocument{
		Modules: []ModuleSpec{{ID: "osc1", Type: "osc"}},
		Scopes:  []ScopeSpec{{Key: "main", ModuleID: "osc1", Port: "out", MsPerFrame: 10}},
	}
	if err := ApplyPatch(p, doc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := p.ScopeBuffers()["main"]; !ok {
		t.Fatal("expected the main tap to be installed")
	}
	doc.Scopes = nil
	if err := ApplyPatch(p, doc); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if _, ok := p.ScopeBuffers()["main"]; ok {
		t.Fatal("expected the main tap to be dropped once no longer desired")
	}
}

func TestApplyPatchReconcilesTracksAsModules(t *testing.T) {
	p := NewPatch()
	doc := PatchDocument{
		Tracks: []TrackSpec{{
			ID:            "t1",
			Interpolation: "linear",
			Keyframes: []TrackKeyframeSpec{
				{Time: 0, Value: []float64{0}},
				{Time: 1, Value: []float64{5}},
			},
		}},
	}
	if err := ApplyPatch(p, doc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	mod, ok := p.Module("t1")
	if !ok {
		t.Fatal("expected track t1 to exist as a module")
	}
	if moduleTypeName(mod) != "track" {
		t.Fatalf("expected track module type, got %q", moduleTypeName(mod))
	}
	tm := mod.(*trackModule)
	if c, ok := tm.playheadIn.AsCable(); !ok || c.ModuleID != RootClockID {
		t.Fatalf("expected track playhead to default-connect to the root clock, got %+v", tm.playheadIn)
	}
}

func TestApplyPatchDerivesChannelCounts(t *testing.T) {
	p := NewPatch()
	doc := PatchDocument{Modules: []ModuleSpec{
		{ID: "clk", Type: "root_clock"},
		{ID: "seq", Type: "interval_seq", Params: map[string]any{"interval": "0,2,4", "channels": 3.0}},
		{ID: "pan1", Type: "pan"},
		{ID: "sp", Type: "split", Connections: map[string]ConnSpec{
			"in": {Cable: &CableSpec{ModuleID: "seq", Port: "cv"}},
		}},
		{ID: "osc1", Type: "osc"},
	}}
	if err := ApplyPatch(p, doc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	expect := map[string]int{
		"clk":  2, // fixed: the (cycle, fraction) pair
		"seq":  3, // named channels param
		"pan1": 2, // fixed stereo
		"sp":   3, // default rule: width of its poly source
		"osc1": 1, // mono module, no derivation declared
	}
	for id, want := range expect {
		mod, ok := p.Module(id)
		if !ok {
			t.Fatalf("expected %s present", id)
		}
		if got := mod.ChannelCount(); got != want {
			t.Fatalf("%s: expected channel count %d, got %d", id, want, got)
		}
	}
}

func TestGetSampleBeyondChannelCountReadsZero(t *testing.T) {
	// Module output reads past the active channel count return 0 V; they
	// never wrap the way a spread input lane does.
	seqM, _ := newIntervalSeqModule("s1", map[string]any{"interval": "0,2,4", "channels": 3.0, "add": "0"})
	seq := seqM.(*intervalSeqModule)
	p := newTestPatchWith("s1", seq)
	seq.Connect("playhead", VoltsSignal(0.0))
	seq.Update(1, p)
	if got := seq.GetSample("gate", seq.ChannelCount()); got != 0 {
		t.Fatalf("expected interval_seq read past channel count to be 0, got %v", got)
	}

	cvM, _ := newMidiCVModule("cv1", map[string]any{"voices": 2.0})
	cv := cvM.(*midiCVModule)
	cv.HandleMessage(Message{Tag: "midi_note_on", Payload: MidiNoteOnMessage{Note: 60, Velocity: 100}})
	if got := cv.GetSample("gate", 2); got != 0 {
		t.Fatalf("expected midi_cv read past voice count to be 0, got %v", got)
	}

	cm, _ := newCombineModule("c1", nil)
	comb := cm.(*combineModule)
	pc := newTestPatchWith("c1", comb)
	comb.Connect("in0", VoltsSignal(1))
	comb.Connect("in1", VoltsSignal(2))
	comb.Update(1, pc)
	if got := comb.GetSample("out", 2); got != 0 {
		t.Fatalf("expected combine read past packed width to be 0, got %v", got)
	}
}

func TestApplyPatchRecreatesOnTypeChange(t *testing.T) {
	p := NewPatch()
	ApplyPatch(p, PatchDocument{Modules: []ModuleSpec{{ID: "a", Type: "osc"}}})
	before, _ := p.Module("a")
	if err := ApplyPatch(p, PatchDocument{Modules: []ModuleSpec{{ID: "a", Type: "mix"}}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	after, ok := p.Module("a")
	if !ok {
		t.Fatal("expected module a to still exist after a type change")
	}
	if before == after {
		t.Fatal("expected a type change to produce a fresh module instance")
	}
	if moduleTypeName(after) != "mix" {
		t.Fatalf("expected recreated module to have the new type, got %q", moduleTypeName(after))
	}
}
