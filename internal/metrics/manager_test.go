// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"runtime"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/events"
	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/internal/services/stalled"
)

var _ decision.Observer = (*Manager)(nil)

func TestNewManager(t *testing.T) {
	manager := NewManager(nil)

	assert.NotNil(t, manager)
	assert.NotNil(t, manager.registry)
	assert.NotNil(t, manager.pipeline)
	assert.NotNil(t, manager.downloadCollector)
}

func TestManager_GetRegistry(t *testing.T) {
	manager := NewManager(nil)

	registry := manager.GetRegistry()
	assert.IsType(t, &prometheus.Registry{}, registry)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	foundGoMetrics := false
	foundProcessMetrics := false
	for _, mf := range metricFamilies {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") {
			foundGoMetrics = true
		}
		if strings.HasPrefix(name, "process_") {
			foundProcessMetrics = true
		}
	}

	assert.True(t, foundGoMetrics, "Go runtime metrics should be registered (go_* metrics)")
	if runtime.GOOS == "darwin" {
		assert.False(t, foundProcessMetrics, "Process metrics should NOT be available on macOS")
	} else {
		assert.True(t, foundProcessMetrics, "Process metrics should be registered on Linux/Windows")
	}
}

func TestManager_RegistryIsolation(t *testing.T) {
	manager1 := NewManager(nil)
	manager2 := NewManager(nil)

	assert.NotSame(t, manager1.registry, manager2.registry, "Each manager should have its own registry")
}

func TestManager_ObservesDecisionsAndEvents(t *testing.T) {
	manager := NewManager(nil)

	manager.ObserveDecision("release", "approved")
	manager.ObserveDecision("release", "rejected")
	manager.ObserveDecision("release", "approved")

	bus := events.NewBus()
	bus.Subscribe(manager.HandleEvent)
	bus.Publish(events.Event{Type: events.EventFileImported})
	bus.Publish(events.Event{Type: events.EventDownloadStalled})

	assert.InDelta(t, 2, testutil.ToFloat64(manager.pipeline.GetDecisionsTotal("release", "approved")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(manager.pipeline.GetDecisionsTotal("release", "rejected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(manager.pipeline.GetEventsTotal("download_stalled")), 0)
}

func TestManager_ScrapesTrackedDownloads(t *testing.T) {
	tracker := stalled.NewTracker()
	tracker.Update([]models.DownloadClientItem{
		{DownloadID: "a", Status: models.DownloadWarning},
		{DownloadID: "b", Status: models.DownloadDownloading},
	})
	manager := NewManager(tracker)

	expected := `
# HELP curator_downloads_tracked Total number of tracked downloads
# TYPE curator_downloads_tracked gauge
curator_downloads_tracked 2
`
	require.NoError(t, testutil.GatherAndCompare(manager.GetRegistry(), strings.NewReader(expected), "curator_downloads_tracked"))
}
