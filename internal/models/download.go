// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import "time"

// DownloadItemStatus is the normalized state of a download.
type DownloadItemStatus string

const (
	DownloadQueued      DownloadItemStatus = "queued"
	DownloadDownloading DownloadItemStatus = "downloading"
	DownloadPaused      DownloadItemStatus = "paused"
	DownloadWarning     DownloadItemStatus = "warning"
	DownloadFailed      DownloadItemStatus = "failed"
	DownloadCompleted   DownloadItemStatus = "completed"
)

// DownloadClientItem is a point-in-time snapshot of one download.
type DownloadClientItem struct {
	DownloadID     string             `json:"downloadId"`
	Title          string             `json:"title"`
	Category       string             `json:"category,omitempty"`
	Client         string             `json:"client"`
	Protocol       DownloadProtocol   `json:"protocol"`
	Status         DownloadItemStatus `json:"status"`
	RawState       string             `json:"rawState,omitempty"`
	Message        string             `json:"message,omitempty"`
	AddedAt        time.Time          `json:"addedAt"`
	LastActivityAt time.Time          `json:"lastActivityAt"`
	OutputPath     string             `json:"outputPath"`
	TotalSize      int64              `json:"totalSize"`
	RemainingSize  int64              `json:"remainingSize"`
	CanMoveFiles   bool               `json:"canMoveFiles"`
	CanBeRemoved   bool               `json:"canBeRemoved"`
}

// Progress returns completion in [0,1].
func (d DownloadClientItem) Progress() float64 {
	if d.TotalSize <= 0 {
		return 0
	}
	return float64(d.TotalSize-d.RemainingSize) / float64(d.TotalSize)
}
