// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Version       string
	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	DataDir       string `toml:"dataDir" mapstructure:"dataDir"`
	DatabasePath  string `toml:"databasePath" mapstructure:"databasePath"`

	MetricsEnabled        bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost           string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort           int    `toml:"metricsPort" mapstructure:"metricsPort"`
	MetricsBasicAuthUsers string `toml:"metricsBasicAuthUsers" mapstructure:"metricsBasicAuthUsers"`

	Releases        ReleasesConfig         `toml:"releases" mapstructure:"releases"`
	Import          ImportConfig           `toml:"import" mapstructure:"import"`
	Stalled         StalledConfig          `toml:"stalled" mapstructure:"stalled"`
	Watch           WatchConfig            `toml:"watch" mapstructure:"watch"`
	DownloadClients []DownloadClientConfig `toml:"downloadClients" mapstructure:"downloadClients"`
}

// ReleasesConfig tunes release decisions and ranking.
type ReleasesConfig struct {
	// SizePreference breaks ranking ties on size: "none", "smaller" or "larger".
	SizePreference     string        `toml:"sizePreference" mapstructure:"sizePreference"`
	PreferredWords     []string      `toml:"preferredWords" mapstructure:"preferredWords"`
	PreferIndexerFlags bool          `toml:"preferIndexerFlags" mapstructure:"preferIndexerFlags"`
	MaximumSizeMB      int64         `toml:"maximumSizeMb" mapstructure:"maximumSizeMb"`
	MinimumSeeders     int           `toml:"minimumSeeders" mapstructure:"minimumSeeders"`
	RetentionDays      int           `toml:"retentionDays" mapstructure:"retentionDays"`
	MinimumAge         time.Duration `toml:"minimumAge" mapstructure:"minimumAge"`
	RequiredTerms      []string      `toml:"requiredTerms" mapstructure:"requiredTerms"`
	IgnoredTerms       []string      `toml:"ignoredTerms" mapstructure:"ignoredTerms"`
	Filter             string        `toml:"filter" mapstructure:"filter"`
	RecentGrabWindow   time.Duration `toml:"recentGrabWindow" mapstructure:"recentGrabWindow"`
	Workers            int           `toml:"workers" mapstructure:"workers"`
}

// ImportConfig tunes import decisions and file placement.
type ImportConfig struct {
	Mode               string   `toml:"mode" mapstructure:"mode"`
	SkipFreeSpaceCheck bool     `toml:"skipFreeSpaceCheck" mapstructure:"skipFreeSpaceCheck"`
	MinimumFreeSpaceMB int64    `toml:"minimumFreeSpaceMb" mapstructure:"minimumFreeSpaceMb"`
	WorkingFolders     []string `toml:"workingFolders" mapstructure:"workingFolders"`
	ExtraExtensions    []string `toml:"extraExtensions" mapstructure:"extraExtensions"`
	ImportExtras       bool     `toml:"importExtras" mapstructure:"importExtras"`
}

// StalledConfig controls stalled-download handling.
type StalledConfig struct {
	Enabled                    bool          `toml:"enabled" mapstructure:"enabled"`
	StalledThresholdMinutes    int           `toml:"stalledThresholdMinutes" mapstructure:"stalledThresholdMinutes"`
	InactivityThresholdMinutes int           `toml:"inactivityThresholdMinutes" mapstructure:"inactivityThresholdMinutes"`
	PollInterval               time.Duration `toml:"pollInterval" mapstructure:"pollInterval"`
}

// WatchConfig lists the drop folders imported automatically.
type WatchConfig struct {
	Paths       []string      `toml:"paths" mapstructure:"paths"`
	Debounce    time.Duration `toml:"debounce" mapstructure:"debounce"`
	ScanOnStart bool          `toml:"scanOnStart" mapstructure:"scanOnStart"`
}

// DownloadClientConfig describes one qBittorrent instance.
type DownloadClientConfig struct {
	Name          string `toml:"name" mapstructure:"name"`
	Host          string `toml:"host" mapstructure:"host"`
	Username      string `toml:"username" mapstructure:"username"`
	Password      string `toml:"password" mapstructure:"password"`
	BasicUsername string `toml:"basicUsername" mapstructure:"basicUsername"`
	BasicPassword string `toml:"basicPassword" mapstructure:"basicPassword"`
	Category      string `toml:"category" mapstructure:"category"`
}

var sizePreferences = []string{"", "none", "smaller", "larger"}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error

	pref := strings.ToLower(strings.TrimSpace(c.Releases.SizePreference))
	valid := false
	for _, p := range sizePreferences {
		if p == pref {
			valid = true
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("releases.sizePreference %q must be none, smaller or larger", c.Releases.SizePreference))
	}

	switch strings.ToLower(strings.TrimSpace(c.Import.Mode)) {
	case "", "auto", "move", "copy":
	default:
		errs = append(errs, fmt.Errorf("import.mode %q must be auto, move or copy", c.Import.Mode))
	}

	if c.Stalled.StalledThresholdMinutes < 0 || c.Stalled.InactivityThresholdMinutes < 0 {
		errs = append(errs, errors.New("stalled thresholds must not be negative"))
	}

	if c.MetricsEnabled && (c.MetricsPort <= 0 || c.MetricsPort > 65535) {
		errs = append(errs, fmt.Errorf("metricsPort %d is out of range", c.MetricsPort))
	}

	seen := make(map[string]struct{})
	for i, dc := range c.DownloadClients {
		if strings.TrimSpace(dc.Host) == "" {
			errs = append(errs, fmt.Errorf("downloadClients[%d]: host is required", i))
		}
		name := dc.Name
		if name == "" {
			name = dc.Host
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("downloadClients[%d]: duplicate name %q", i, name))
		}
		seen[name] = struct{}{}
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe to print or log.
func (c Config) Redacted() Config {
	c.MetricsBasicAuthUsers = redactBasicAuthUsers(c.MetricsBasicAuthUsers)
	clients := make([]DownloadClientConfig, len(c.DownloadClients))
	for i, dc := range c.DownloadClients {
		dc.Password = RedactString(dc.Password)
		dc.BasicPassword = RedactString(dc.BasicPassword)
		clients[i] = dc
	}
	c.DownloadClients = clients
	return c
}

func redactBasicAuthUsers(raw string) string {
	if raw == "" {
		return ""
	}
	entries := strings.Split(raw, ",")
	for i, entry := range entries {
		user, pass, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			continue
		}
		entries[i] = user + ":" + RedactString(pass)
	}
	return strings.Join(entries, ",")
}
