// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversByTypeAndToCatchAll(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var typed, all []EventType
	bus.Subscribe(func(e Event) { typed = append(typed, e.Type) }, EventFileImported)
	bus.Subscribe(func(e Event) { all = append(all, e.Type) })

	bus.Publish(Event{Type: EventFileImported})
	bus.Publish(Event{Type: EventDownloadStalled})

	assert.Equal(t, []EventType{EventFileImported}, typed)
	assert.Equal(t, []EventType{EventFileImported, EventDownloadStalled}, all)
}

func TestBus_HandlerPanicDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	called := false
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(e Event) {
		called = true
		assert.False(t, e.Time.IsZero(), "publish stamps the event")
	})

	assert.NotPanics(t, func() { bus.Publish(Event{Type: EventImportFailed}) })
	assert.True(t, called)
}

func TestBus_NilDropsEvents(t *testing.T) {
	t.Parallel()

	var bus *Bus
	assert.NotPanics(t, func() { bus.Publish(Event{Type: EventFileImported}) })
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.Publish(Event{Type: EventFileImported, ItemID: 1})
	r.Publish(Event{Type: EventImportFailed, ItemID: 2})

	assert.Len(t, r.Events(), 2)
	failed := r.OfType(EventImportFailed)
	assert.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].ItemID)
}

func TestEventDefinitionsCoverEveryType(t *testing.T) {
	t.Parallel()

	seen := make(map[EventType]bool)
	for _, def := range EventDefinitions() {
		assert.NotEmpty(t, def.Label)
		seen[def.Type] = true
	}
	for _, typ := range []EventType{EventFileImported, EventImportFailed, EventFilesReplaced, EventDownloadStalled, EventDownloadFailed, EventDownloadResumed} {
		assert.True(t, seen[typ], typ)
	}
}
