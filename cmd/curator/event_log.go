// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/events"
)

// logEvent writes every published event to the log.
func logEvent(e events.Event) {
	var entry *zerolog.Event
	switch e.Type {
	case events.EventImportFailed, events.EventDownloadFailed:
		entry = log.Warn()
	case events.EventDownloadStalled:
		entry = log.Info()
	default:
		entry = log.Debug()
	}
	eventFields(entry, e).Msg(eventMessage(e))
}

func eventFields(entry *zerolog.Event, e events.Event) *zerolog.Event {
	entry = entry.Str("event", string(e.Type))
	if e.ItemID != 0 {
		entry = entry.Int("itemID", e.ItemID)
	}
	if e.SourcePath != "" {
		entry = entry.Str("source", e.SourcePath)
	}
	if e.File != nil {
		entry = entry.Str("path", e.File.Path)
	}
	if len(e.OldFiles) > 0 {
		entry = entry.Int("replaced", len(e.OldFiles))
	}
	if d := e.Download; d != nil {
		entry = entry.Str("downloadID", d.DownloadID).Str("client", d.Client).Str("status", string(d.Status))
	}
	if e.Message != "" {
		entry = entry.Str("reason", e.Message)
	}
	return entry
}

func eventMessage(e events.Event) string {
	for _, def := range events.EventDefinitions() {
		if def.Type == e.Type {
			return def.Label
		}
	}
	return string(e.Type)
}
