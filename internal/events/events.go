// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package events carries pipeline outcomes to subscribers synchronously.
package events

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/models"
)

type EventType string

const (
	EventFileImported    EventType = "file_imported"
	EventImportFailed    EventType = "import_failed"
	EventFilesReplaced   EventType = "files_replaced"
	EventDownloadStalled EventType = "download_stalled"
	EventDownloadFailed  EventType = "download_failed"
	EventDownloadResumed EventType = "download_resumed"
)

type EventDefinition struct {
	Type        EventType `json:"type"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

var eventDefinitions = []EventDefinition{
	{Type: EventFileImported, Label: "File imported", Description: "A file was added to the library."},
	{Type: EventImportFailed, Label: "Import failed", Description: "An approved file could not be placed or recorded."},
	{Type: EventFilesReplaced, Label: "Files replaced", Description: "An import superseded existing library files."},
	{Type: EventDownloadStalled, Label: "Download stalled", Description: "A download has no connections."},
	{Type: EventDownloadFailed, Label: "Download failed", Description: "A stalled download stayed inactive past the failure threshold."},
	{Type: EventDownloadResumed, Label: "Download resumed", Description: "A previously stalled download is no longer stalled."},
}

// EventDefinitions returns the catalog of published event types.
func EventDefinitions() []EventDefinition {
	return slices.Clone(eventDefinitions)
}

// Event is one published outcome. Only the fields relevant to Type are set.
type Event struct {
	Type        EventType
	Time        time.Time
	ItemID      int
	SourcePath  string
	File        *models.MediaFile
	OldFiles    []models.MediaFile
	NewDownload bool
	Download    *models.DownloadClientItem
	Message     string
}

// Sink receives events.
type Sink interface {
	Publish(event Event)
}

// Handler reacts to a published event.
type Handler func(Event)

// Bus fans events out to handlers in subscription order. Publish returns
// after every handler ran. A nil Bus drops events.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers h for the given types, or for every event when none are given.
func (b *Bus) Subscribe(h Handler, types ...EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(types) == 0 {
		b.all = append(b.all, h)
		return
	}
	for _, t := range types {
		b.handlers[t] = append(b.handlers[t], h)
	}
}

func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	b.mu.RLock()
	handlers := append(slices.Clone(b.handlers[event.Type]), b.all...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, event)
	}
}

func (b *Bus) dispatch(h Handler, event Event) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("event", string(event.Type)).Msg("events: handler panicked")
		}
	}()
	h(event)
}

// Recorder is a Sink that keeps every event. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t EventType) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
