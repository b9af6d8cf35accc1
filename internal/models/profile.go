// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// QualityProfileItem is one rung of a quality ladder.
type QualityProfileItem struct {
	Quality Quality `json:"quality"`
	Allowed bool    `json:"allowed"`
}

// LanguageProfileItem is one rung of a language ladder.
type LanguageProfileItem struct {
	Language Language `json:"language"`
	Allowed  bool     `json:"allowed"`
}

// QualityProfile ranks qualities and languages for a media item.
// Items and Languages are ordered worst to best.
type QualityProfile struct {
	ID             int                   `json:"id"`
	Name           string                `json:"name"`
	UpgradeAllowed bool                  `json:"upgradeAllowed"`
	Cutoff         int                   `json:"cutoff"`
	Items          []QualityProfileItem  `json:"items"`
	Languages      []LanguageProfileItem `json:"languages"`
	CutoffLanguage int                   `json:"cutoffLanguage"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// Validate returns a non-nil error if the profile is missing required data.
func (p *QualityProfile) Validate() error {
	if p == nil {
		return errors.New("quality profile is nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("quality profile name is required")
	}
	if len(p.Items) == 0 {
		return errors.New("quality profile must have at least one quality")
	}
	seen := make(map[int]struct{}, len(p.Items))
	for i, item := range p.Items {
		if _, dup := seen[item.Quality.ID]; dup {
			return fmt.Errorf("quality %q listed twice (item %d)", item.Quality.Name, i)
		}
		seen[item.Quality.ID] = struct{}{}
	}
	if p.Cutoff != 0 && p.QualityRank(QualityByID(p.Cutoff)) < 0 {
		return fmt.Errorf("cutoff quality %d is not part of the profile", p.Cutoff)
	}
	return nil
}

// QualityRank returns the position of q on the ladder, or -1 when absent.
func (p *QualityProfile) QualityRank(q Quality) int {
	if p == nil {
		return -1
	}
	for i, item := range p.Items {
		if item.Quality.ID == q.ID {
			return i
		}
	}
	return -1
}

// IsQualityAllowed reports whether q is on the ladder and enabled.
func (p *QualityProfile) IsQualityAllowed(q Quality) bool {
	if i := p.QualityRank(q); i >= 0 {
		return p.Items[i].Allowed
	}
	return false
}

// LanguageRank returns the position of l on the language ladder, or -1 when absent.
func (p *QualityProfile) LanguageRank(l Language) int {
	if p == nil {
		return -1
	}
	for i, item := range p.Languages {
		if item.Language.ID == l.ID {
			return i
		}
	}
	return -1
}

// IsLanguageAllowed reports whether l is acceptable. A profile without a
// language ladder accepts every language.
func (p *QualityProfile) IsLanguageAllowed(l Language) bool {
	if p == nil || len(p.Languages) == 0 {
		return true
	}
	if i := p.LanguageRank(l); i >= 0 {
		return p.Languages[i].Allowed
	}
	return false
}

// CompareQuality orders two quality models by ladder rank, then revision.
func (p *QualityProfile) CompareQuality(a, b QualityModel) int {
	if c := compareInt(p.QualityRank(a.Quality), p.QualityRank(b.Quality)); c != 0 {
		return c
	}
	return a.Revision.Compare(b.Revision)
}

// CompareLanguage orders two languages by ladder rank.
func (p *QualityProfile) CompareLanguage(a, b Language) int {
	return compareInt(p.LanguageRank(a), p.LanguageRank(b))
}

// CutoffQuality returns the cutoff quality, or the best ladder entry when unset.
func (p *QualityProfile) CutoffQuality() Quality {
	if p.Cutoff != 0 {
		return QualityByID(p.Cutoff)
	}
	if n := len(p.Items); n > 0 {
		return p.Items[n-1].Quality
	}
	return QualityUnknown
}

// HighestAllowed returns the best enabled quality on the ladder.
func (p *QualityProfile) HighestAllowed() (Quality, bool) {
	for i := len(p.Items) - 1; i >= 0; i-- {
		if p.Items[i].Allowed {
			return p.Items[i].Quality, true
		}
	}
	return QualityUnknown, false
}

// DelayProfile gates grabs per protocol and tag set.
type DelayProfile struct {
	ID                     int              `json:"id"`
	Order                  int              `json:"order"`
	PreferredProtocol      DownloadProtocol `json:"preferredProtocol"`
	EnableUsenet           bool             `json:"enableUsenet"`
	EnableTorrent          bool             `json:"enableTorrent"`
	UsenetDelay            time.Duration    `json:"usenetDelay"`
	TorrentDelay           time.Duration    `json:"torrentDelay"`
	BypassIfHighestQuality bool             `json:"bypassIfHighestQuality"`
	Tags                   []string         `json:"tags"`
}

// Enabled reports whether protocol may be grabbed under this profile.
func (d *DelayProfile) Enabled(protocol DownloadProtocol) bool {
	switch protocol {
	case ProtocolUsenet:
		return d.EnableUsenet
	case ProtocolTorrent:
		return d.EnableTorrent
	default:
		return false
	}
}

// Delay returns the configured wait for protocol.
func (d *DelayProfile) Delay(protocol DownloadProtocol) time.Duration {
	switch protocol {
	case ProtocolUsenet:
		return d.UsenetDelay
	case ProtocolTorrent:
		return d.TorrentDelay
	default:
		return 0
	}
}

// DelayProfiles is an ordered set of delay profiles. The untagged profile is the fallback.
type DelayProfiles []DelayProfile

// ForTags returns the first profile (by Order) sharing a tag with tags, falling
// back to the first untagged profile. A permissive default is returned when none match.
func (ds DelayProfiles) ForTags(tags []string) DelayProfile {
	var fallback *DelayProfile
	best := -1
	for i := range ds {
		d := &ds[i]
		if len(d.Tags) == 0 {
			if fallback == nil || d.Order < fallback.Order {
				fallback = d
			}
			continue
		}
		if !sharesTag(d.Tags, tags) {
			continue
		}
		if best < 0 || d.Order < ds[best].Order {
			best = i
		}
	}
	if best >= 0 {
		return ds[best]
	}
	if fallback != nil {
		return *fallback
	}
	return DelayProfile{PreferredProtocol: ProtocolUsenet, EnableUsenet: true, EnableTorrent: true}
}

func sharesTag(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(y)) {
				return true
			}
		}
	}
	return false
}
