// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"strings"
	"time"
)

// DownloadProtocol is the transport a release is fetched over.
type DownloadProtocol string

const (
	ProtocolUnknown DownloadProtocol = "unknown"
	ProtocolUsenet  DownloadProtocol = "usenet"
	ProtocolTorrent DownloadProtocol = "torrent"
)

// ParseDownloadProtocol maps free text to a protocol.
func ParseDownloadProtocol(s string) DownloadProtocol {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "usenet", "nzb":
		return ProtocolUsenet
	case "torrent", "magnet":
		return ProtocolTorrent
	default:
		return ProtocolUnknown
	}
}

// IndexerFlags is a bit set of indexer-provided release markers.
type IndexerFlags uint32

const (
	FlagFreeleech IndexerFlags = 1 << iota
	FlagHalfleech
	FlagDoubleUpload
	FlagInternal
	FlagScene
	FlagApproved
	FlagGolden
	FlagNuked
)

var indexerFlagNames = []struct {
	flag IndexerFlags
	name string
}{
	{FlagFreeleech, "freeleech"},
	{FlagHalfleech, "halfleech"},
	{FlagDoubleUpload, "doubleupload"},
	{FlagInternal, "internal"},
	{FlagScene, "scene"},
	{FlagApproved, "approved"},
	{FlagGolden, "golden"},
	{FlagNuked, "nuked"},
}

// Has reports whether all bits of f are set.
func (flags IndexerFlags) Has(f IndexerFlags) bool {
	return flags&f == f
}

// Score sums the ranking weight of the set flags.
func (flags IndexerFlags) Score() int {
	score := 0
	for _, f := range []IndexerFlags{FlagDoubleUpload, FlagFreeleech, FlagApproved, FlagGolden, FlagInternal} {
		if flags.Has(f) {
			score += 2
		}
	}
	if flags.Has(FlagHalfleech) {
		score++
	}
	return score
}

// Names returns the lower-case names of the set flags.
func (flags IndexerFlags) Names() []string {
	var out []string
	for _, n := range indexerFlagNames {
		if flags.Has(n.flag) {
			out = append(out, n.name)
		}
	}
	return out
}

// ParseIndexerFlags builds a flag set from names. Unknown names are ignored.
func ParseIndexerFlags(names ...string) IndexerFlags {
	var flags IndexerFlags
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		for _, n := range indexerFlagNames {
			if n.name == name {
				flags |= n.flag
			}
		}
	}
	return flags
}

// ReleaseInfo is a raw release report from an indexer.
type ReleaseInfo struct {
	GUID             string           `json:"guid"`
	Title            string           `json:"title"`
	DownloadURL      string           `json:"downloadUrl,omitempty"`
	InfoURL          string           `json:"infoUrl,omitempty"`
	Indexer          string           `json:"indexer"`
	IndexerID        int              `json:"indexerId"`
	DownloadProtocol DownloadProtocol `json:"downloadProtocol"`
	IndexerFlags     IndexerFlags     `json:"indexerFlags"`
	PublishDate      time.Time        `json:"publishDate"`
	AgeHours         float64          `json:"ageHours"`
	Size             int64            `json:"size"`
	Seeders          int              `json:"seeders"`
	Peers            int              `json:"peers"`
}

// Age returns the age of the release at now, preferring the publish date.
func (r ReleaseInfo) Age(now time.Time) time.Duration {
	if !r.PublishDate.IsZero() {
		return now.Sub(r.PublishDate)
	}
	return time.Duration(r.AgeHours * float64(time.Hour))
}

// ParsedInfo is the structured result of parsing a release or file name.
type ParsedInfo struct {
	ReleaseTitle string       `json:"releaseTitle"`
	ItemTitle    string       `json:"itemTitle"`
	ParentTitle  string       `json:"parentTitle,omitempty"`
	Year         int          `json:"year,omitempty"`
	UnitNumbers  []int        `json:"unitNumbers,omitempty"`
	Quality      QualityModel `json:"quality"`
	Language     Language     `json:"language"`
	ReleaseGroup string       `json:"releaseGroup,omitempty"`
	Discography  bool         `json:"discography,omitempty"`
}

// SearchCriteria narrows a batch to a known item and units.
type SearchCriteria struct {
	Item        *MediaItem  `json:"item,omitempty"`
	Units       []MediaUnit `json:"units,omitempty"`
	UserInvoked bool        `json:"userInvoked"`
}

// QueuedItem is a download already in progress for an item.
type QueuedItem struct {
	DownloadID string           `json:"downloadId"`
	ItemID     int              `json:"itemId"`
	UnitIDs    []int            `json:"unitIds"`
	Title      string           `json:"title"`
	Quality    QualityModel     `json:"quality"`
	Language   Language         `json:"language"`
	Protocol   DownloadProtocol `json:"protocol"`
	Size       int64            `json:"size"`
}

// RemoteItem is a candidate release with everything the release rules read.
// All fields are populated before evaluation; rules never load data.
type RemoteItem struct {
	Release         ReleaseInfo     `json:"release"`
	Parsed          *ParsedInfo     `json:"parsed,omitempty"`
	Item            *MediaItem      `json:"item,omitempty"`
	Units           []MediaUnit     `json:"units,omitempty"`
	Profile         *QualityProfile `json:"-"`
	DownloadAllowed bool            `json:"downloadAllowed"`
	History         []HistoryRecord `json:"-"`
	Queued          []QueuedItem    `json:"-"`
}

// Quality returns the parsed quality, or an unknown quality.
func (r RemoteItem) Quality() QualityModel {
	if r.Parsed == nil {
		return NewQualityModel(QualityUnknown)
	}
	return r.Parsed.Quality
}

// Language returns the parsed language.
func (r RemoteItem) Language() Language {
	if r.Parsed == nil {
		return LanguageUnknown
	}
	return r.Parsed.Language
}

// ItemID returns the resolved item id, or 0.
func (r RemoteItem) ItemID() int {
	if r.Item == nil {
		return 0
	}
	return r.Item.ID
}
