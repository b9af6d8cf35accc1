// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"
)

// Distance penalty keys.
const (
	DistanceItemTitle      = "item_title"
	DistanceParentTitle    = "parent_title"
	DistanceYear           = "year"
	DistanceUnitTitle      = "unit_title"
	DistanceUnitNumber     = "unit_number"
	DistanceUnitCount      = "unit_count"
	DistanceMissingUnits   = "missing_units"
	DistanceUnmatchedFiles = "unmatched_files"
)

var distanceWeights = map[string]float64{
	DistanceItemTitle:      3.0,
	DistanceParentTitle:    3.0,
	DistanceYear:           1.0,
	DistanceUnitTitle:      3.0,
	DistanceUnitNumber:     1.0,
	DistanceUnitCount:      0.5,
	DistanceMissingUnits:   0.9,
	DistanceUnmatchedFiles: 0.6,
}

// Distance accumulates weighted penalties between parsed and expected metadata.
// The zero value is ready to use. Lower is better.
type Distance struct {
	penalties map[string][]float64
}

// Add records a penalty in [0,1] under key.
func (d *Distance) Add(key string, penalty float64) {
	if d.penalties == nil {
		d.penalties = make(map[string][]float64)
	}
	d.penalties[key] = append(d.penalties[key], min(max(penalty, 0), 1))
}

// AddBool records a full penalty when mismatch is true, and an explicit zero otherwise.
func (d *Distance) AddBool(key string, mismatch bool) {
	if mismatch {
		d.Add(key, 1)
		return
	}
	d.Add(key, 0)
}

// AddRatio records part/total as a penalty. A zero total records nothing.
func (d *Distance) AddRatio(key string, part, total int) {
	if total <= 0 {
		return
	}
	d.Add(key, float64(part)/float64(total))
}

func weightOf(key string) float64 {
	if w, ok := distanceWeights[key]; ok {
		return w
	}
	return 1
}

// Raw is the weighted penalty sum, added up in key order so equal
// distances always produce identical floats.
func (d Distance) Raw() float64 {
	var raw float64
	for _, key := range slices.Sorted(maps.Keys(d.penalties)) {
		for _, p := range d.penalties[key] {
			raw += p * weightOf(key)
		}
	}
	return raw
}

// Max is the largest Raw value possible for the recorded keys.
func (d Distance) Max() float64 {
	var m float64
	for _, key := range slices.Sorted(maps.Keys(d.penalties)) {
		m += float64(len(d.penalties[key])) * weightOf(key)
	}
	return m
}

// Normalized maps the distance into [0,1]. An empty distance is 0.
func (d Distance) Normalized() float64 {
	m := d.Max()
	if m == 0 {
		return 0
	}
	return d.Raw() / m
}

// Reasons returns the keys that carry a non-zero penalty, heaviest first.
func (d Distance) Reasons() []string {
	type weighted struct {
		key string
		w   float64
	}
	var ws []weighted
	for key, ps := range d.penalties {
		var sum float64
		for _, p := range ps {
			sum += p
		}
		if sum > 0 {
			ws = append(ws, weighted{key: key, w: sum * weightOf(key)})
		}
	}
	slices.SortFunc(ws, func(a, b weighted) int {
		switch {
		case a.w > b.w:
			return -1
		case a.w < b.w:
			return 1
		default:
			return strings.Compare(a.key, b.key)
		}
	})
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.key)
	}
	return out
}

// Clone returns an independent copy.
func (d Distance) Clone() Distance {
	out := Distance{penalties: make(map[string][]float64, len(d.penalties))}
	for k, v := range d.penalties {
		out.penalties[k] = slices.Clone(v)
	}
	return out
}

func (d Distance) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Normalized float64  `json:"normalized"`
		Reasons    []string `json:"reasons,omitempty"`
	}{d.Normalized(), d.Reasons()})
}

// LocalRelease aggregates the files of one release or download folder.
type LocalRelease struct {
	Name           string      `json:"name"`
	Distance       float64     `json:"distance"`
	Reasons        []string    `json:"reasons,omitempty"`
	MissingUnits   []MediaUnit `json:"missingUnits,omitempty"`
	UnmatchedFiles []string    `json:"unmatchedFiles,omitempty"`
	FileCount      int         `json:"fileCount"`
}

// LocalFile is a candidate file found on disk.
type LocalFile struct {
	Path               string              `json:"path"`
	Size               int64               `json:"size"`
	ModTime            time.Time           `json:"modTime"`
	Parsed             *ParsedInfo         `json:"parsed,omitempty"`
	Item               *MediaItem          `json:"item,omitempty"`
	Units              []MediaUnit         `json:"units,omitempty"`
	Quality            QualityModel        `json:"quality"`
	Language           Language            `json:"language"`
	Distance           Distance            `json:"distance"`
	ExistingFile       bool                `json:"existingFile"`
	Release            *LocalRelease       `json:"release,omitempty"`
	ReleaseGroup       string              `json:"releaseGroup,omitempty"`
	SceneName          string              `json:"sceneName,omitempty"`
	DownloadClientItem *DownloadClientItem `json:"downloadClientItem,omitempty"`
}

// ItemID returns the matched item id, or 0.
func (f *LocalFile) ItemID() int {
	if f == nil || f.Item == nil {
		return 0
	}
	return f.Item.ID
}
