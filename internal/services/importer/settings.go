// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"runtime"
	"strings"
	"time"

	"github.com/autobrr/curator/internal/models"
)

// ImportMode selects how new downloads reach the library.
type ImportMode string

const (
	// ModeAuto moves unless the download client says its files must stay.
	ModeAuto ImportMode = "auto"
	ModeMove ImportMode = "move"
	ModeCopy ImportMode = "copy"
)

// ParseImportMode maps free text to a mode, defaulting to ModeAuto.
func ParseImportMode(s string) ImportMode {
	switch ImportMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMove:
		return ModeMove
	case ModeCopy:
		return ModeCopy
	default:
		return ModeAuto
	}
}

// copyOnly reports whether files must be copied rather than moved.
func (m ImportMode) copyOnly(dci *models.DownloadClientItem) bool {
	switch m {
	case ModeCopy:
		return true
	case ModeMove:
		return false
	default:
		return dci != nil && !dci.CanMoveFiles
	}
}

// Settings is the import configuration snapshot of one batch.
type Settings struct {
	// SkipFreeSpaceCheck disables the free space rule.
	SkipFreeSpaceCheck bool
	// MinimumFreeSpace must remain available after the file is placed.
	MinimumFreeSpace int64
	// WorkingFolders are folder name prefixes download clients use while
	// extracting or repairing.
	WorkingFolders []string
	// UnpackingWindow is how recently a file in a working folder may have
	// been written and still be considered in progress.
	UnpackingWindow time.Duration
	// CheckLastWrite enables the UnpackingWindow test. Without it every file
	// inside a working folder is rejected.
	CheckLastWrite bool
	// ReleaseThreshold is the largest accepted whole-release distance.
	ReleaseThreshold float64
	// UnitThreshold is the largest accepted distance of any single file.
	UnitThreshold float64
	// ExtraExtensions lists sibling files imported with new downloads.
	ExtraExtensions []string
	Mode            ImportMode
}

// DefaultSettings returns the built-in import settings.
func DefaultSettings() Settings {
	return Settings{
		MinimumFreeSpace: 100 * 1024 * 1024,
		WorkingFolders:   []string{"_UNPACK_", "_FAILED_"},
		UnpackingWindow:  5 * time.Minute,
		// Outside Windows unpackers rename finished files out of the working
		// folder atomically, so anything left inside is still in progress.
		CheckLastWrite:   runtime.GOOS == "windows",
		ReleaseThreshold: 0.20,
		UnitThreshold:    0.40,
		ExtraExtensions:  []string{".srt", ".ass", ".sub", ".idx", ".nfo", ".cue", ".lrc", ".jpg", ".png"},
		Mode:             ModeAuto,
	}
}
