// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"context"
	"path"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/pkg/errors"

	"github.com/autobrr/curator/internal/models"
)

// Items returns a snapshot of every torrent in the configured category.
func (c *Client) Items(ctx context.Context) ([]models.DownloadClientItem, error) {
	torrents, err := c.api.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Category: c.category})
	if err != nil {
		c.setHealth(false)
		return nil, errors.Wrapf(err, "list torrents from %s", c.name)
	}
	c.setHealth(true)

	contentPath := c.SupportsContentPath()
	items := make([]models.DownloadClientItem, 0, len(torrents))
	for _, t := range torrents {
		items = append(items, c.toItem(t, contentPath))
	}
	return items, nil
}

func (c *Client) toItem(t qbt.Torrent, contentPath bool) models.DownloadClientItem {
	item := models.DownloadClientItem{
		DownloadID:     t.Hash,
		Title:          t.Name,
		Category:       t.Category,
		Client:         c.name,
		Protocol:       models.ProtocolTorrent,
		RawState:       string(t.State),
		AddedAt:        unixTime(t.AddedOn),
		LastActivityAt: unixTime(t.LastActivity),
		TotalSize:      t.Size,
		RemainingSize:  t.AmountLeft,
		OutputPath:     path.Join(t.SavePath, t.Name),
	}
	if contentPath && t.ContentPath != "" {
		item.OutputPath = t.ContentPath
	}

	switch t.State {
	case qbt.TorrentStateError:
		item.Status = models.DownloadWarning
		item.Message = "qBittorrent is reporting an error"
	case qbt.TorrentStateMissingFiles:
		item.Status = models.DownloadWarning
		item.Message = "The download is missing files"
	case qbt.TorrentStatePausedDl, qbt.TorrentStateStoppedDl:
		item.Status = models.DownloadPaused
	case qbt.TorrentStateQueuedDl, qbt.TorrentStateCheckingDl, qbt.TorrentStateCheckingResumeData, qbt.TorrentStateAllocating:
		item.Status = models.DownloadQueued
	case qbt.TorrentStatePausedUp, qbt.TorrentStateStoppedUp:
		// seeding finished, the files are ours
		item.Status = models.DownloadCompleted
		item.CanMoveFiles = true
		item.CanBeRemoved = true
	case qbt.TorrentStateUploading, qbt.TorrentStateStalledUp, qbt.TorrentStateQueuedUp,
		qbt.TorrentStateForcedUp, qbt.TorrentStateCheckingUp:
		item.Status = models.DownloadCompleted
	default:
		// downloading, stalledDL, metaDL, forcedDL, moving
		item.Status = models.DownloadDownloading
	}
	return item
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
