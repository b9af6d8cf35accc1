// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"path/filepath"
	"slices"
	"time"
)

// MediaItem is a monitored library entry (a book, album, movie or season).
// Units and Files are fully loaded before the item is handed to a pipeline.
type MediaItem struct {
	ID           int             `json:"id"`
	Title        string          `json:"title"`
	ParentTitle  string          `json:"parentTitle,omitempty"`
	Year         int             `json:"year,omitempty"`
	Monitored    bool            `json:"monitored"`
	AnyReleaseOk bool            `json:"anyReleaseOk"`
	ProfileID    int             `json:"profileId"`
	Profile      *QualityProfile `json:"profile,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	Path         string          `json:"path"`
	RootFolder   string          `json:"rootFolder"`
	Units        []MediaUnit     `json:"units,omitempty"`
	Files        []MediaFile     `json:"files,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Unit returns the unit with id.
func (m *MediaItem) Unit(id int) (MediaUnit, bool) {
	for _, u := range m.Units {
		if u.ID == id {
			return u, true
		}
	}
	return MediaUnit{}, false
}

// UnitByNumber returns the unit with the given number.
func (m *MediaItem) UnitByNumber(number int) (MediaUnit, bool) {
	for _, u := range m.Units {
		if u.Number == number {
			return u, true
		}
	}
	return MediaUnit{}, false
}

// MonitoredUnits returns the monitored units in number order.
func (m *MediaItem) MonitoredUnits() []MediaUnit {
	var out []MediaUnit
	for _, u := range m.Units {
		if u.Monitored {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b MediaUnit) int { return compareInt(a.Number, b.Number) })
	return out
}

// FilesForUnit returns the existing files linked to unitID.
func (m *MediaItem) FilesForUnit(unitID int) []MediaFile {
	var out []MediaFile
	for _, f := range m.Files {
		if slices.Contains(f.UnitIDs, unitID) {
			out = append(out, f)
		}
	}
	return out
}

// FilesForUnits returns the distinct files linked to any of units.
func (m *MediaItem) FilesForUnits(units []MediaUnit) []MediaFile {
	seen := make(map[int]struct{})
	var out []MediaFile
	for _, u := range units {
		for _, f := range m.FilesForUnit(u.ID) {
			if _, ok := seen[f.ID]; ok {
				continue
			}
			seen[f.ID] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// MediaUnit is the smallest entity a file maps to (track, chapter, episode).
type MediaUnit struct {
	ID        int    `json:"id"`
	ItemID    int    `json:"itemId"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Monitored bool   `json:"monitored"`
	FileIDs   []int  `json:"fileIds,omitempty"`
}

// UnitIDs returns the ids of units.
func UnitIDs(units []MediaUnit) []int {
	ids := make([]int, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	return ids
}

// MediaFile is a file recorded in the library.
type MediaFile struct {
	ID           int          `json:"id"`
	ItemID       int          `json:"itemId"`
	UnitIDs      []int        `json:"unitIds"`
	Path         string       `json:"path"`
	RelativePath string       `json:"relativePath"`
	Size         int64        `json:"size"`
	Quality      QualityModel `json:"quality"`
	Language     Language     `json:"language"`
	ReleaseGroup string       `json:"releaseGroup,omitempty"`
	SceneName    string       `json:"sceneName,omitempty"`
	IndexerFlags IndexerFlags `json:"indexerFlags,omitempty"`
	DateAdded    time.Time    `json:"dateAdded"`
}

// Name returns the file name without directories.
func (f MediaFile) Name() string {
	return filepath.Base(f.Path)
}

// HistoryEventType names a history row kind.
type HistoryEventType string

const (
	HistoryGrabbed         HistoryEventType = "grabbed"
	HistoryImported        HistoryEventType = "imported"
	HistoryImportFailed    HistoryEventType = "import_failed"
	HistoryDownloadFailed  HistoryEventType = "download_failed"
	HistoryFileDeleted     HistoryEventType = "file_deleted"
	HistoryDownloadIgnored HistoryEventType = "download_ignored"
)

// Keys of HistoryRecord.Data.
const (
	HistoryDataIndexerFlags = "indexerFlags"
	HistoryDataProtocol     = "protocol"
	HistoryDataIndexer      = "indexer"
	HistoryDataSize         = "size"
)

// HistoryRecord is one entry of an item's activity history.
type HistoryRecord struct {
	ID          int               `json:"id"`
	ItemID      int               `json:"itemId"`
	UnitID      int               `json:"unitId"`
	EventType   HistoryEventType  `json:"eventType"`
	DownloadID  string            `json:"downloadId,omitempty"`
	SourceTitle string            `json:"sourceTitle"`
	Quality     QualityModel      `json:"quality"`
	Language    Language          `json:"language"`
	Data        map[string]string `json:"data,omitempty"`
	Date        time.Time         `json:"date"`
}

// IndexerFlags returns the flags recorded on a grab.
func (h HistoryRecord) IndexerFlags() IndexerFlags {
	if h.Data == nil {
		return 0
	}
	return ParseIndexerFlags(splitList(h.Data[HistoryDataIndexerFlags])...)
}
