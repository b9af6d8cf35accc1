// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stalled

import (
	"cmp"
	"slices"
	"sync"

	"github.com/autobrr/curator/internal/models"
)

// Transition is a status change of one download between two snapshots.
// Previous is the zero value for downloads seen for the first time.
type Transition struct {
	Previous models.DownloadClientItem
	Current  models.DownloadClientItem
	New      bool
}

// Tracker holds the latest evaluated snapshot of every download.
type Tracker struct {
	mu    sync.RWMutex
	items map[string]models.DownloadClientItem
}

func NewTracker() *Tracker {
	return &Tracker{items: make(map[string]models.DownloadClientItem)}
}

// Update replaces the snapshot with items and returns the status changes.
// Downloads missing from items are forgotten. Downloads seen for the first
// time are only reported when the policy marked them stalled.
func (t *Tracker) Update(items []models.DownloadClientItem) []Transition {
	next := make(map[string]models.DownloadClientItem, len(items))
	for _, item := range items {
		next[item.DownloadID] = item
	}

	t.mu.Lock()
	prev := t.items
	t.items = next
	t.mu.Unlock()

	var out []Transition
	for _, item := range items {
		old, known := prev[item.DownloadID]
		if known && old.Status == item.Status && isStalled(old) == isStalled(item) {
			continue
		}
		if !known && !isStalled(item) {
			continue
		}
		out = append(out, Transition{Previous: old, Current: item, New: !known})
	}
	return out
}

// Get returns the latest snapshot of one download.
func (t *Tracker) Get(downloadID string) (models.DownloadClientItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[downloadID]
	return item, ok
}

// Snapshot returns every tracked download, oldest first.
func (t *Tracker) Snapshot() []models.DownloadClientItem {
	t.mu.RLock()
	out := make([]models.DownloadClientItem, 0, len(t.items))
	for _, item := range t.items {
		out = append(out, item)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.DownloadClientItem) int {
		return cmp.Or(a.AddedAt.Compare(b.AddedAt), cmp.Compare(a.DownloadID, b.DownloadID))
	})
	return out
}

// Counts returns the number of tracked downloads per status.
func (t *Tracker) Counts() map[models.DownloadItemStatus]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	counts := make(map[models.DownloadItemStatus]int)
	for _, item := range t.items {
		counts[item.Status]++
	}
	return counts
}

// isStalled reports whether the policy, not the client, put item in its
// current state. Client errors are warnings too but carry their own message.
func isStalled(item models.DownloadClientItem) bool {
	return item.Message == MessageNoConnections || item.Message == MessageFailed
}
