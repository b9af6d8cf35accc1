// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/events"
	"github.com/autobrr/curator/internal/metrics/collector"
)

// Manager owns the registry. It observes decisions for both pipelines and
// counts published events when subscribed to a bus.
type Manager struct {
	registry          *prometheus.Registry
	pipeline          *collector.PipelineCollector
	downloadCollector *collector.DownloadCollector
}

func NewManager(downloads collector.DownloadCounter) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	downloadCollector := collector.NewDownloadCollector(downloads)
	registry.MustRegister(downloadCollector)

	log.Info().Msg("Metrics manager initialized with download collector")

	return &Manager{
		registry:          registry,
		pipeline:          collector.NewPipelineCollector(registry),
		downloadCollector: downloadCollector,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) ObserveDecision(pipeline, outcome string) {
	m.pipeline.GetDecisionsTotal(pipeline, outcome).Inc()
}

// HandleEvent is an events.Handler.
func (m *Manager) HandleEvent(e events.Event) {
	m.pipeline.GetEventsTotal(string(e.Type)).Inc()
}

// Register adds an extra collector, such as the database pool statistics.
func (m *Manager) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}
