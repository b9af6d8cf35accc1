// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/domain"
	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/internal/qbittorrent"
	"github.com/autobrr/curator/internal/services/importer"
	"github.com/autobrr/curator/internal/services/releases"
	"github.com/autobrr/curator/internal/services/stalled"
	"github.com/autobrr/curator/internal/services/watchfolder"
)

const megabyte = 1024 * 1024

// ReleaseSettings builds the release decision settings. Delay profiles live in
// the database and are passed in.
func ReleaseSettings(cfg *domain.Config, delays models.DelayProfiles) releases.Settings {
	s := releases.DefaultSettings()
	rc := cfg.Releases

	pref, err := releases.ParseSizePreference(rc.SizePreference)
	if err != nil {
		log.Warn().Err(err).Msg("config: ignoring size preference")
	}
	s.SizePreference = pref
	s.PreferredWords = slices.Clone(rc.PreferredWords)
	s.PreferIndexerFlags = rc.PreferIndexerFlags
	s.DelayProfiles = delays
	s.MaximumSize = rc.MaximumSizeMB * megabyte
	s.MinimumSeeders = rc.MinimumSeeders
	s.RetentionDays = rc.RetentionDays
	s.MinimumAge = rc.MinimumAge
	s.RequiredTerms = slices.Clone(rc.RequiredTerms)
	s.IgnoredTerms = slices.Clone(rc.IgnoredTerms)
	s.FilterExpression = rc.Filter
	if rc.RecentGrabWindow > 0 {
		s.RecentGrabWindow = rc.RecentGrabWindow
	}
	if rc.Workers > 0 {
		s.Workers = rc.Workers
	}
	return s
}

// ImportSettings builds the import settings.
func ImportSettings(cfg *domain.Config) importer.Settings {
	s := importer.DefaultSettings()
	ic := cfg.Import

	s.Mode = importer.ParseImportMode(ic.Mode)
	s.SkipFreeSpaceCheck = ic.SkipFreeSpaceCheck
	s.MinimumFreeSpace = ic.MinimumFreeSpaceMB * megabyte
	if ic.WorkingFolders != nil {
		s.WorkingFolders = slices.Clone(ic.WorkingFolders)
	}
	switch {
	case !ic.ImportExtras:
		s.ExtraExtensions = nil
	case ic.ExtraExtensions != nil:
		s.ExtraExtensions = slices.Clone(ic.ExtraExtensions)
	}
	return s
}

// StalledSettings builds the stalled-download policy.
func StalledSettings(cfg *domain.Config) stalled.Config {
	s := stalled.DefaultConfig()
	s.Enabled = cfg.Stalled.Enabled
	s.StalledThresholdMinutes = cfg.Stalled.StalledThresholdMinutes
	s.InactivityThresholdMinutes = cfg.Stalled.InactivityThresholdMinutes
	return s
}

// WatchSettings builds the watch folder configuration.
func WatchSettings(cfg *domain.Config) watchfolder.Config {
	debounce := cfg.Watch.Debounce
	if debounce <= 0 {
		debounce = watchfolder.DefaultDebounce
	}
	return watchfolder.Config{
		Paths:       slices.Clone(cfg.Watch.Paths),
		Debounce:    debounce,
		Mode:        importer.ParseImportMode(cfg.Import.Mode),
		ScanOnStart: cfg.Watch.ScanOnStart,
	}
}

// DownloadClients returns one qBittorrent configuration per configured client.
func DownloadClients(cfg *domain.Config) []qbittorrent.Config {
	out := make([]qbittorrent.Config, 0, len(cfg.DownloadClients))
	for _, dc := range cfg.DownloadClients {
		name := dc.Name
		if name == "" {
			name = dc.Host
		}
		out = append(out, qbittorrent.Config{
			Name:          name,
			Host:          dc.Host,
			Username:      dc.Username,
			Password:      dc.Password,
			BasicUsername: dc.BasicUsername,
			BasicPassword: dc.BasicPassword,
			Category:      dc.Category,
		})
	}
	return out
}
