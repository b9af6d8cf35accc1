// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

type PipelineCollector struct {
	DecisionsTotal *prometheus.CounterVec
	EventsTotal    *prometheus.CounterVec
}

func NewPipelineCollector(r *prometheus.Registry) *PipelineCollector {
	m := &PipelineCollector{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "decision",
			Name:      "total",
			Help:      "Total number of decisions by pipeline and outcome",
		}, []string{"pipeline", "outcome"}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curator",
			Subsystem: "events",
			Name:      "total",
			Help:      "Total number of published events by type",
		}, []string{"type"}),
	}

	r.MustRegister(m.DecisionsTotal)
	r.MustRegister(m.EventsTotal)
	return m
}

func (m *PipelineCollector) GetDecisionsTotal(pipeline, outcome string) prometheus.Counter {
	return m.DecisionsTotal.With(prometheus.Labels{
		"pipeline": pipeline,
		"outcome":  outcome,
	})
}

func (m *PipelineCollector) GetEventsTotal(eventType string) prometheus.Counter {
	return m.EventsTotal.With(prometheus.Labels{"type": eventType})
}
