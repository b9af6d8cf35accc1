// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package collector

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/models"
)

// DownloadCounter reports the number of tracked downloads per status.
type DownloadCounter interface {
	Counts() map[models.DownloadItemStatus]int
}

var downloadStatuses = []models.DownloadItemStatus{
	models.DownloadQueued,
	models.DownloadDownloading,
	models.DownloadPaused,
	models.DownloadWarning,
	models.DownloadFailed,
	models.DownloadCompleted,
}

// DownloadCollector exposes the tracked downloads at scrape time.
type DownloadCollector struct {
	downloads DownloadCounter

	downloadsByStatusDesc *prometheus.Desc
	downloadsTrackedDesc  *prometheus.Desc
}

func NewDownloadCollector(downloads DownloadCounter) *DownloadCollector {
	return &DownloadCollector{
		downloads: downloads,

		downloadsByStatusDesc: prometheus.NewDesc(
			"curator_downloads",
			"Number of tracked downloads by status",
			[]string{"status"},
			nil,
		),
		downloadsTrackedDesc: prometheus.NewDesc(
			"curator_downloads_tracked",
			"Total number of tracked downloads",
			nil,
			nil,
		),
	}
}

func (c *DownloadCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.downloadsByStatusDesc
	ch <- c.downloadsTrackedDesc
}

func (c *DownloadCollector) Collect(ch chan<- prometheus.Metric) {
	if c.downloads == nil {
		log.Debug().Msg("Download tracker is nil, skipping download metrics")
		return
	}

	counts := c.downloads.Counts()
	total := 0
	for _, status := range downloadStatuses {
		total += counts[status]
		ch <- prometheus.MustNewConstMetric(
			c.downloadsByStatusDesc,
			prometheus.GaugeValue,
			float64(counts[status]),
			string(status),
		)
	}
	// statuses reported by clients that have no normalized name yet
	for status, n := range counts {
		if slices.Contains(downloadStatuses, status) {
			continue
		}
		total += n
		ch <- prometheus.MustNewConstMetric(c.downloadsByStatusDesc, prometheus.GaugeValue, float64(n), string(status))
	}

	ch <- prometheus.MustNewConstMetric(c.downloadsTrackedDesc, prometheus.GaugeValue, float64(total))
}
