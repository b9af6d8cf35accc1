// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package library links parsed releases to library items and supplies the
// history and queue state the decision pipelines read.
package library

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/pkg/stringutils"
)

// MaxTitleDistance is the largest normalized title distance accepted when
// matching a parsed title against library items.
const MaxTitleDistance = 0.25

// ItemSource lists fully loaded library items.
type ItemSource interface {
	List(ctx context.Context) ([]*models.MediaItem, error)
}

// HistorySource reads item history.
type HistorySource interface {
	ByItem(ctx context.Context, itemID int) ([]models.HistoryRecord, error)
	FindGrabByDownloadID(ctx context.Context, downloadID string) (*models.HistoryRecord, error)
}

// DownloadSource returns the latest download snapshots.
type DownloadSource interface {
	Snapshot() []models.DownloadClientItem
}

// Library resolves releases against the stored library.
type Library struct {
	items     ItemSource
	history   HistorySource
	downloads DownloadSource
}

// New creates a Library. downloads may be nil when no client is configured.
func New(items ItemSource, history HistorySource, downloads DownloadSource) *Library {
	return &Library{items: items, history: history, downloads: downloads}
}

// Resolve returns the item parsed names, and the units the release covers.
// When criteria name an item, only that item is considered.
func (l *Library) Resolve(ctx context.Context, parsed *models.ParsedInfo, criteria *models.SearchCriteria) (*models.MediaItem, []models.MediaUnit, error) {
	if parsed == nil {
		return nil, nil, nil
	}

	var item *models.MediaItem
	if criteria != nil && criteria.Item != nil {
		if titleMatches(criteria.Item, parsed) {
			item = criteria.Item
		}
	} else {
		items, err := l.items.List(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("list items: %w", err)
		}
		item = bestMatch(items, parsed)
	}
	if item == nil {
		return nil, nil, nil
	}
	return item, unitsFor(item, parsed, criteria), nil
}

func titleMatches(item *models.MediaItem, parsed *models.ParsedInfo) bool {
	if stringutils.TitleDistance(item.Title, parsed.ItemTitle) <= MaxTitleDistance {
		return true
	}
	// music and book releases often carry "Artist - Album" in the item title
	return item.ParentTitle != "" && parsed.ParentTitle != "" &&
		stringutils.TitleDistance(item.ParentTitle, parsed.ParentTitle) <= MaxTitleDistance &&
		stringutils.FuzzyContains(parsed.ItemTitle, item.Title)
}

func bestMatch(items []*models.MediaItem, parsed *models.ParsedInfo) *models.MediaItem {
	var (
		best     *models.MediaItem
		bestDist = MaxTitleDistance
	)
	for _, item := range items {
		d := stringutils.TitleDistance(item.Title, parsed.ItemTitle)
		if d > MaxTitleDistance && !titleMatches(item, parsed) {
			continue
		}
		if parsed.Year != 0 && item.Year != 0 && parsed.Year != item.Year {
			d += 0.1
		}
		if best == nil || d < bestDist {
			best, bestDist = item, d
		}
	}
	return best
}

func unitsFor(item *models.MediaItem, parsed *models.ParsedInfo, criteria *models.SearchCriteria) []models.MediaUnit {
	if len(parsed.UnitNumbers) > 0 {
		var units []models.MediaUnit
		for _, n := range parsed.UnitNumbers {
			if u, ok := item.UnitByNumber(n); ok {
				units = append(units, u)
			}
		}
		return units
	}
	if criteria != nil && criteria.Item == item && len(criteria.Units) > 0 {
		return slices.Clone(criteria.Units)
	}
	return slices.Clone(item.Units)
}

// History returns the item's history, newest first.
func (l *Library) History(ctx context.Context, itemID int) ([]models.HistoryRecord, error) {
	return l.history.ByItem(ctx, itemID)
}

// Queue returns the active downloads whose grab belongs to itemID.
func (l *Library) Queue(ctx context.Context, itemID int) ([]models.QueuedItem, error) {
	if l.downloads == nil {
		return nil, nil
	}

	var queued []models.QueuedItem
	for _, d := range l.downloads.Snapshot() {
		if d.Status == models.DownloadCompleted || d.Status == models.DownloadFailed {
			continue
		}
		grab, err := l.history.FindGrabByDownloadID(ctx, d.DownloadID)
		if err != nil {
			return nil, fmt.Errorf("find grab for %s: %w", d.DownloadID, err)
		}
		if grab == nil {
			log.Trace().Str("downloadID", d.DownloadID).Msg("[LIBRARY] Download has no grab history")
			continue
		}
		if grab.ItemID != itemID {
			continue
		}
		q := models.QueuedItem{
			DownloadID: d.DownloadID,
			ItemID:     grab.ItemID,
			Title:      d.Title,
			Quality:    grab.Quality,
			Language:   grab.Language,
			Protocol:   d.Protocol,
			Size:       d.TotalSize,
		}
		if grab.UnitID != 0 {
			q.UnitIDs = []int{grab.UnitID}
		}
		queued = append(queued, q)
	}
	return queued, nil
}
