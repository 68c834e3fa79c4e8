// patch_json.go - JSON encoding for the control API's desired-graph shape

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/modularcore
License: GPLv3 or later
*/

package main

import (
	"encoding/json"
	"fmt"
)

// jsonModuleSpec mirrors ModuleSpec with struct tags matching the control
// API's module shape: id, module_type, a params bag, and named connections.
type jsonModuleSpec struct {
	ID          string                  `json:"id"`
	Type        string                  `json:"module_type"`
	Params      map[string]any          `json:"params"`
	Connections map[string]jsonConnSpec `json:"connections"`
}

type jsonCableSpec struct {
	ModuleID string `json:"module_id"`
	Port     string `json:"port"`
	Channel  int    `json:"channel"`
}

// jsonConnSpec decodes either {"volts": 1.5} or
// {"cable": {"module_id": "...", "port": "out", "channel": 0}}.
type jsonConnSpec struct {
	Volts *float64       `json:"volts,omitempty"`
	Cable *jsonCableSpec `json:"cable,omitempty"`
}

func (c jsonConnSpec) toConnSpec() (ConnSpec, error) {
	if c.Volts != nil && c.Cable != nil {
		return ConnSpec{}, fmt.Errorf("connection specifies both volts and cable")
	}
	if c.Volts == nil && c.Cable == nil {
		return ConnSpec{}, fmt.Errorf("connection specifies neither volts nor cable")
	}
	if c.Volts != nil {
		return ConnSpec{Volts: c.Volts}, nil
	}
	return ConnSpec{Cable: &CableSpec{
		ModuleID: c.Cable.ModuleID,
		Port:     c.Cable.Port,
		Channel:  c.Cable.Channel,
	}}, nil
}

// jsonScopeSpec mirrors ScopeSpec: the tap key, what it watches, how many
// milliseconds of signal one ring's worth of samples should span, and an
// optional Schmitt-trigger threshold.
type jsonScopeSpec struct {
	Key              string   `json:"tap_key"`
	ModuleID         string   `json:"module_id"`
	Port             string   `json:"port"`
	Channel          int      `json:"channel"`
	MsPerFrame       float64  `json:"ms_per_frame"`
	TriggerThreshold *float64 `json:"trigger_threshold,omitempty"`
}

type jsonTrackKeyframe struct {
	Time  float64   `json:"time"`
	Value []float64 `json:"value"`
}

// jsonTrackSpec mirrors TrackSpec: id, an optional playhead connection,
// the keyframe list, and the interpolation curve name.
type jsonTrackSpec struct {
	ID            string              `json:"id"`
	Playhead      *jsonConnSpec       `json:"playhead,omitempty"`
	Keyframes     []jsonTrackKeyframe `json:"keyframes"`
	Interpolation string              `json:"interpolation_type"`
}

type jsonPatchDocument struct {
	Modules []jsonModuleSpec `json:"modules"`
	Scopes  []jsonScopeSpec  `json:"scopes,omitempty"`
	Tracks  []jsonTrackSpec  `json:"tracks,omitempty"`
}

// ParsePatchDocument decodes the control API's desired-graph JSON payload
// into a PatchDocument ready for ApplyPatch.
func ParsePatchDocument(data []byte) (PatchDocument, error) {
	var jd jsonPatchDocument
	if err := json.Unmarshal(data, &jd); err != nil {
		return PatchDocument{}, fmt.Errorf("parse patch document: %w", err)
	}
	doc := PatchDocument{Modules: make([]ModuleSpec, 0, len(jd.Modules))}
	for _, jm := range jd.Modules {
		conns := make(map[string]ConnSpec, len(jm.Connections))
		for port, jc := range jm.Connections {
			cs, err := jc.toConnSpec()
			if err != nil {
				return PatchDocument{}, fmt.Errorf("module %q port %q: %w", jm.ID, port, err)
			}
			conns[port] = cs
		}
		doc.Modules = append(doc.Modules, ModuleSpec{
			ID:          jm.ID,
			Type:        jm.Type,
			Params:      jm.Params,
			Connections: conns,
		})
	}
	for _, js := range jd.Scopes {
		doc.Scopes = append(doc.Scopes, ScopeSpec{
			Key:              js.Key,
			ModuleID:         js.ModuleID,
			Port:             js.Port,
			Channel:          js.Channel,
			MsPerFrame:       js.MsPerFrame,
			TriggerThreshold: js.TriggerThreshold,
		})
	}
	for _, jt := range jd.Tracks {
		var playhead *ConnSpec
		if jt.Playhead != nil {
			cs, err := jt.Playhead.toConnSpec()
			if err != nil {
				return PatchDocument{}, fmt.Errorf("track %q playhead: %w", jt.ID, err)
			}
			playhead = &cs
		}
		kfs := make([]TrackKeyframeSpec, 0, len(jt.Keyframes))
		for _, kf := range jt.Keyframes {
			kfs = append(kfs, TrackKeyframeSpec{Time: kf.Time, Value: kf.Value})
		}
		doc.Tracks = append(doc.Tracks, TrackSpec{
			ID:            jt.ID,
			Playhead:      playhead,
			Keyframes:     kfs,
			Interpolation: jt.Interpolation,
		})
	}
	return doc, nil
}
