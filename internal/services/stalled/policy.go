// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package stalled reclassifies downloads that stopped making progress.
package stalled

import (
	"strings"
	"time"

	"github.com/autobrr/curator/internal/models"
)

const (
	MessageNoConnections = "The download is stalled with no connections"
	MessageFailed        = "The download is stalled with no activity long enough to be considered failed"
)

// Config controls stalled-download handling.
type Config struct {
	Enabled bool `json:"enabled"`
	// StalledThresholdMinutes is how long a download must have been queued
	// before inactivity can fail it.
	StalledThresholdMinutes int `json:"stalledThresholdMinutes"`
	// InactivityThresholdMinutes is how long a queued download may go
	// without activity before it is failed.
	InactivityThresholdMinutes int `json:"inactivityThresholdMinutes"`
	// RawStates are the client states meaning "no connections".
	RawStates []string `json:"rawStates"`
}

// DefaultConfig returns the qBittorrent states with conservative thresholds.
func DefaultConfig() Config {
	return Config{
		Enabled:                    true,
		StalledThresholdMinutes:    30,
		InactivityThresholdMinutes: 15,
		RawStates:                  []string{"stalledDL", "metaDL"},
	}
}

func (c Config) stalledThreshold() time.Duration {
	return time.Duration(c.StalledThresholdMinutes) * time.Minute
}

func (c Config) inactivityThreshold() time.Duration {
	return time.Duration(c.InactivityThresholdMinutes) * time.Minute
}

// IsStalledState reports whether raw is one of the configured no-connection states.
func (c Config) IsStalledState(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	for _, s := range c.RawStates {
		if strings.EqualFold(s, raw) {
			return true
		}
	}
	return false
}

// Apply returns item with its status and message reclassified. A download in
// a no-connection state is a warning until it has been queued for the stalled
// threshold and inactive for the inactivity threshold, after which it fails.
// Apply keeps no state, so repeated calls with the same inputs agree.
func Apply(item models.DownloadClientItem, cfg Config, now time.Time) models.DownloadClientItem {
	if !cfg.Enabled || !cfg.IsStalledState(item.RawState) {
		return item
	}

	queuedFor := now.Sub(item.AddedAt)
	inactiveFor := now.Sub(item.LastActivityAt)

	if queuedFor >= cfg.stalledThreshold() && inactiveFor >= cfg.inactivityThreshold() {
		item.Status = models.DownloadFailed
		item.Message = MessageFailed
		return item
	}
	item.Status = models.DownloadWarning
	item.Message = MessageNoConnections
	return item
}
