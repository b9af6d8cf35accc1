// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"fmt"
	"strings"
	"time"

	"github.com/autobrr/curator/internal/models"
)

// SizePreference decides which way the size tie-break leans.
type SizePreference string

const (
	// SizeNone disables the size tie-break.
	SizeNone    SizePreference = "none"
	SizeSmaller SizePreference = "smaller"
	SizeLarger  SizePreference = "larger"
)

// ParseSizePreference maps config text to a preference. Empty means none.
func ParseSizePreference(s string) (SizePreference, error) {
	switch SizePreference(strings.ToLower(strings.TrimSpace(s))) {
	case "", SizeNone:
		return SizeNone, nil
	case SizeSmaller:
		return SizeSmaller, nil
	case SizeLarger:
		return SizeLarger, nil
	default:
		return SizeNone, fmt.Errorf("unknown size preference %q", s)
	}
}

// Settings is the configuration snapshot one batch is decided with.
type Settings struct {
	// PreferredWords raise a release's rank once per word found in its title.
	PreferredWords     []string
	PreferIndexerFlags bool
	SizePreference     SizePreference
	DelayProfiles      models.DelayProfiles

	// MaximumSize in bytes, 0 disables the check.
	MaximumSize    int64
	MinimumSeeders int
	// RetentionDays limits usenet release age, 0 disables the check.
	RetentionDays int
	// MinimumAge holds back usenet releases until they propagated.
	MinimumAge time.Duration

	RequiredTerms []string
	IgnoredTerms  []string
	// FilterExpression is an optional boolean expression over a release.
	FilterExpression string

	// RecentGrabWindow is how long a grab in history blocks equal releases.
	RecentGrabWindow time.Duration

	// Workers bounds concurrent report evaluation. Values below 1 mean 1.
	Workers int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		SizePreference:   SizeNone,
		RecentGrabWindow: 12 * time.Hour,
		Workers:          4,
	}
}
