// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector exports connection pool statistics.
type MetricsCollector struct {
	db *DB

	openDesc      *prometheus.Desc
	inUseDesc     *prometheus.Desc
	waitCountDesc *prometheus.Desc
}

func NewMetricsCollector(db *DB) *MetricsCollector {
	return &MetricsCollector{
		db: db,
		openDesc: prometheus.NewDesc(
			"curator_db_open_connections",
			"Number of established database connections",
			nil, nil,
		),
		inUseDesc: prometheus.NewDesc(
			"curator_db_in_use_connections",
			"Number of database connections currently in use",
			nil, nil,
		),
		waitCountDesc: prometheus.NewDesc(
			"curator_db_wait_count_total",
			"Total number of connections waited for",
			nil, nil,
		),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openDesc
	ch <- c.inUseDesc
	ch <- c.waitCountDesc
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.db == nil || c.db.closed.Load() {
		return
	}
	stats := c.db.conn.Stats()
	ch <- prometheus.MustNewConstMetric(c.openDesc, prometheus.GaugeValue, float64(stats.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue, float64(stats.InUse))
	ch <- prometheus.MustNewConstMetric(c.waitCountDesc, prometheus.CounterValue, float64(stats.WaitCount))
}
