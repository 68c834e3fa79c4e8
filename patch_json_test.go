package main

import "testing"

func TestParsePatchDocumentRejectsEmptyConnection(t *testing.T) {
	data := []byte(`{"modules": [{"id": "m", "module_type": "osc", "connections": {
		"freq": {}
	}}]}`)
	if _, err := ParsePatchDocument(data); err == nil {
		t.Fatal("expected error for a connection specifying neither volts nor cable")
	}
}

func TestParsePatchDocumentDecodesCableConnection(t *testing.T) {
	data := []byte(`{"modules": [{"id": "m", "module_type": "osc", "connections": {
		"freq": {"cable": {"module_id": "lfo1", "port": "out", "channel": 2}}
	}}]}`)
	doc, err := ParsePatchDocument(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conn := doc.Modules[0].Connections["freq"]
	if conn.Cable == nil || conn.Cable.ModuleID != "lfo1" || conn.Cable.Port != "out" || conn.Cable.Channel != 2 {
		t.Fatalf("unexpected decoded cable: %+v", conn.Cable)
	}
}

func TestParsePatchDocumentDecodesScopesAndTracks(t *testing.T) {
	data := []byte(`{
		"modules": [],
		"scopes": [
			{"tap_key": "main", "module_id": "root", "port": "out", "channel": 0, "ms_per_frame": 20, "trigger_threshold": 0.1}
		],
		"tracks": [
			{"id": "lfo-track", "interpolation_type": "sine_in_out", "keyframes": [
				{"time": 0, "value": [0]},
				{"time": 0.5, "value": [5, 2.5]}
			]}
		]
	}`)
	doc, err := ParsePatchDocument(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Scopes) != 1 {
		t.Fatalf("expected 1 scope, got %d", len(doc.Scopes))
	}
	s := doc.Scopes[0]
	if s.Key != "main" || s.ModuleID != "root" || s.MsPerFrame != 20 {
		t.Fatalf("unexpected decoded scope: %+v", s)
	}
	if s.TriggerThreshold == nil || *s.TriggerThreshold != 0.1 {
		t.Fatalf("expected trigger threshold 0.1, got %+v", s.TriggerThreshold)
	}
	if len(doc.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(doc.Tracks))
	}
	tr := doc.Tracks[0]
	if tr.ID != "lfo-track" || tr.Interpolation != "sine_in_out" || len(tr.Keyframes) != 2 {
		t.Fatalf("unexpected decoded track: %+v", tr)
	}
	if len(tr.Keyframes[1].Value) != 2 || tr.Keyframes[1].Value[1] != 2.5 {
		t.Fatalf("unexpected keyframe values: %+v", tr.Keyframes[1])
	}
}
