// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"github.com/autobrr/curator/internal/events"
	"github.com/autobrr/curator/internal/models"
)

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	logEvent(events.Event{
		Type:    events.EventDownloadFailed,
		Message: "Download has been stalled for too long",
		Download: &models.DownloadClientItem{
			DownloadID: "abc",
			Client:     "qbittorrent",
			Status:     models.DownloadFailed,
		},
	})

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"event":"download_failed"`)
	assert.Contains(t, out, `"downloadID":"abc"`)
	assert.Contains(t, out, `"message":"Download failed"`)

	buf.Reset()
	logEvent(events.Event{
		Type:     events.EventFilesReplaced,
		ItemID:   5,
		OldFiles: []models.MediaFile{{ID: 1}, {ID: 2}},
	})
	assert.Contains(t, buf.String(), `"replaced":2`)
	assert.Contains(t, buf.String(), `"level":"debug"`)
}

func TestEventMessageFallsBackToType(t *testing.T) {
	assert.Equal(t, "File imported", eventMessage(events.Event{Type: events.EventFileImported}))
	assert.Equal(t, "custom", eventMessage(events.Event{Type: "custom"}))
}
