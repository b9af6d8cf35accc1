// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"math"
	"strings"
	"time"

	"github.com/autobrr/curator/internal/models"
)

const sizeBucket = 200 * 1024 * 1024

// Comparator ranks candidate releases of the same media item. It is built
// from one settings snapshot and one clock reading, so a ranking pass is
// deterministic.
type Comparator struct {
	settings Settings
	now      time.Time
}

// NewComparator returns a comparator for one ranking pass.
func NewComparator(settings Settings, now time.Time) *Comparator {
	return &Comparator{settings: settings, now: now}
}

// Compare returns 1 when a ranks above b, -1 when below and 0 on a tie.
func (c *Comparator) Compare(a, b *models.RemoteItem) int {
	keys := []func(a, b *models.RemoteItem) int{
		c.compareLanguage,
		c.compareQuality,
		c.comparePreferredWords,
		c.compareIndexerFlags,
		c.compareProtocol,
		c.comparePeers,
		c.compareAge,
		c.compareSize,
	}
	for _, key := range keys {
		if v := key(a, b); v != 0 {
			return v
		}
	}
	return 0
}

func profileOf(r *models.RemoteItem) *models.QualityProfile {
	if r.Profile != nil {
		return r.Profile
	}
	if r.Item != nil {
		return r.Item.Profile
	}
	return nil
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (c *Comparator) compareLanguage(a, b *models.RemoteItem) int {
	p := profileOf(a)
	if p == nil {
		return 0
	}
	return compareBool(p.IsLanguageAllowed(a.Language()), p.IsLanguageAllowed(b.Language()))
}

func (c *Comparator) compareQuality(a, b *models.RemoteItem) int {
	p := profileOf(a)
	if p == nil {
		return a.Quality().Revision.Compare(b.Quality().Revision)
	}
	return p.CompareQuality(a.Quality(), b.Quality())
}

func (c *Comparator) preferredWordScore(r *models.RemoteItem) int {
	title := strings.ToLower(r.Release.Title)
	score := 0
	for _, word := range c.settings.PreferredWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" && strings.Contains(title, word) {
			score++
		}
	}
	return score
}

func (c *Comparator) comparePreferredWords(a, b *models.RemoteItem) int {
	if len(c.settings.PreferredWords) == 0 {
		return 0
	}
	return compareInt(c.preferredWordScore(a), c.preferredWordScore(b))
}

func (c *Comparator) compareIndexerFlags(a, b *models.RemoteItem) int {
	if !c.settings.PreferIndexerFlags {
		return 0
	}
	return compareInt(a.Release.IndexerFlags.Score(), b.Release.IndexerFlags.Score())
}

func (c *Comparator) compareProtocol(a, b *models.RemoteItem) int {
	var tags []string
	if a.Item != nil {
		tags = a.Item.Tags
	}
	preferred := c.settings.DelayProfiles.ForTags(tags).PreferredProtocol
	return compareBool(a.Release.DownloadProtocol == preferred, b.Release.DownloadProtocol == preferred)
}

// logBucket compresses swarm sizes so small differences don't outrank quality.
func logBucket(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(math.Log10(float64(n))))
}

func (c *Comparator) comparePeers(a, b *models.RemoteItem) int {
	if a.Release.DownloadProtocol != models.ProtocolTorrent || b.Release.DownloadProtocol != models.ProtocolTorrent {
		return 0
	}
	if v := compareInt(logBucket(a.Release.Seeders), logBucket(b.Release.Seeders)); v != 0 {
		return v
	}
	return compareInt(logBucket(a.Release.Peers), logBucket(b.Release.Peers))
}

func (c *Comparator) ageScore(r *models.RemoteItem) int {
	age := r.Release.Age(c.now)
	switch {
	case age < time.Hour:
		return 1000
	case age <= 24*time.Hour:
		return 100
	case age <= 7*24*time.Hour:
		return 10
	default:
		return 1
	}
}

func (c *Comparator) compareAge(a, b *models.RemoteItem) int {
	if a.Release.DownloadProtocol != models.ProtocolUsenet || b.Release.DownloadProtocol != models.ProtocolUsenet {
		return 0
	}
	return compareInt(c.ageScore(a), c.ageScore(b))
}

func roundedSize(size int64) int64 {
	return int64(math.Round(float64(size)/sizeBucket)) * sizeBucket
}

func (c *Comparator) compareSize(a, b *models.RemoteItem) int {
	sa, sb := roundedSize(a.Release.Size), roundedSize(b.Release.Size)
	var v int
	switch {
	case sa < sb:
		v = -1
	case sa > sb:
		v = 1
	}
	switch c.settings.SizePreference {
	case SizeLarger:
		return v
	case SizeSmaller:
		return -v
	default:
		return 0
	}
}
