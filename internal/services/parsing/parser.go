// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package parsing turns release and file names into models.ParsedInfo using
// the cached rls parser.
package parsing

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/moistari/rls"

	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/pkg/releases"
	"github.com/autobrr/curator/pkg/stringutils"
)

var (
	reVersion = regexp.MustCompile(`(?i)^v(\d+)$`)
	// REAL is only meaningful upper-cased; "Real" is usually part of a title.
	reReal     = regexp.MustCompile(`\bREAL\b`)
	reRevision = regexp.MustCompile(`(?i)\b(proper|repack|rerip)\b`)
	reRepack   = regexp.MustCompile(`(?i)\b(repack|rerip)\b`)
	reTrack    = regexp.MustCompile(`^\s*(?:(?:cd|disc)\s*\d+\s*[-_. ]\s*)?(\d{1,3})\b`)
)

var languageAliases = map[string]models.Language{
	"en":         models.LanguageEnglish,
	"eng":        models.LanguageEnglish,
	"fr":         models.LanguageFrench,
	"vff":        models.LanguageFrench,
	"truefrench": models.LanguageFrench,
	"es":         models.LanguageSpanish,
	"de":         models.LanguageGerman,
	"ger":        models.LanguageGerman,
	"it":         models.LanguageItalian,
	"ita":        models.LanguageItalian,
	"nl":         models.LanguageDutch,
	"flemish":    models.LanguageDutch,
	"jp":         models.LanguageJapanese,
	"ja":         models.LanguageJapanese,
	"ru":         models.LanguageRussian,
	"rus":        models.LanguageRussian,
	"pl":         models.LanguagePolish,
	"pol":        models.LanguagePolish,
	"se":         models.LanguageSwedish,
	"swe":        models.LanguageSwedish,
	"kr":         models.LanguageKorean,
	"kor":        models.LanguageKorean,
	"cn":         models.LanguageChinese,
	"chs":        models.LanguageChinese,
	"cht":        models.LanguageChinese,
}

// Parser maps rls results onto library metadata.
type Parser struct {
	rlsParser *releases.Parser
	// DefaultLanguage is used when a name carries no language tag.
	DefaultLanguage models.Language
}

// NewParser creates a new name parser.
func NewParser(rlsParser *releases.Parser) *Parser {
	if rlsParser == nil {
		rlsParser = releases.NewDefaultParser()
	}
	return &Parser{rlsParser: rlsParser, DefaultLanguage: models.LanguageEnglish}
}

// ParseReleaseTitle parses a release or file name. It returns nil when no
// title could be recognized.
func (p *Parser) ParseReleaseTitle(title string) *models.ParsedInfo {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	r := p.rlsParser.Parse(title)
	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Artist) == "" {
		return nil
	}

	info := p.fromRelease(title, r)
	if info.ItemTitle == "" {
		return nil
	}
	return info
}

// ParseReleaseTitleWithHints parses title using an expected item. It is the
// fallback for names the plain parser cannot handle, such as track files
// named only by number and title. Returns nil unless the name refers to the
// item or to one of units.
func (p *Parser) ParseReleaseTitleWithHints(title string, item *models.MediaItem, units []models.MediaUnit) *models.ParsedInfo {
	title = strings.TrimSpace(title)
	if title == "" || item == nil {
		return nil
	}

	r := p.rlsParser.Parse(title)
	info := p.fromRelease(title, r)
	info.ItemTitle = item.Title
	info.ParentTitle = item.ParentTitle
	if info.Year == 0 {
		info.Year = item.Year
	}

	mentionsItem := stringutils.ContainsTitle(title, item.Title)

	var numbers []int
	for _, u := range units {
		if u.Title != "" && stringutils.ContainsTitle(title, u.Title) {
			numbers = append(numbers, u.Number)
		}
	}
	if len(numbers) == 0 {
		if m := reTrack.FindStringSubmatch(title); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && slices.ContainsFunc(units, func(u models.MediaUnit) bool { return u.Number == n }) {
				numbers = append(numbers, n)
			}
		}
	}

	switch {
	case len(numbers) > 0:
		info.UnitNumbers = numbers
	case mentionsItem:
		info.UnitNumbers = nil
	default:
		return nil
	}
	return info
}

func (p *Parser) fromRelease(title string, r *rls.Release) *models.ParsedInfo {
	info := &models.ParsedInfo{
		ReleaseTitle: title,
		ItemTitle:    strings.TrimSpace(r.Title),
		ParentTitle:  strings.TrimSpace(r.Artist),
		Year:         r.Year,
		ReleaseGroup: r.Group,
		Language:     p.language(r.Language),
		Discography:  stringutils.ContainsTitle(title, "discography"),
	}
	if info.ItemTitle == "" {
		// Artist-only music releases are discographies or collections.
		info.ItemTitle = info.ParentTitle
	}
	if r.Episode > 0 {
		info.UnitNumbers = []int{r.Episode}
	}

	content := releases.DetermineContentType(r)
	info.Quality = models.QualityModel{
		Quality:  qualityFor(r, content),
		Revision: revisionFor(title, r),
	}
	return info
}

func (p *Parser) language(tags []string) models.Language {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if l, ok := models.LanguageByName(tag); ok && l != models.LanguageUnknown {
			return l
		}
		if l, ok := languageAliases[strings.ToLower(tag)]; ok {
			return l
		}
	}
	return p.DefaultLanguage
}

func revisionFor(title string, r *rls.Release) models.Revision {
	rev := models.Revision{Version: 1}
	if m := reVersion.FindStringSubmatch(strings.TrimSpace(r.Version)); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 1 {
			rev.Version = v
		}
	}

	tokens := append([]string{title}, r.Other...)
	for _, t := range tokens {
		if reRevision.MatchString(t) && rev.Version < 2 {
			rev.Version = 2
		}
		if reRepack.MatchString(t) {
			rev.IsRepack = true
		}
	}
	rev.Real = len(reReal.FindAllString(title, -1))
	return rev
}

func qualityFor(r *rls.Release, content releases.ContentType) models.Quality {
	switch content {
	case releases.ContentBook, releases.ContentComic:
		return bookQuality(releases.BookFormat(r.Ext, r.Container, r.Other))
	case releases.ContentMusic, releases.ContentAudiobook:
		switch releases.AudioFormat(r.Ext, r.Container, r.Audio) {
		case "flac":
			return models.QualityFLAC
		case "mp3":
			return models.QualityMP3
		}
		return models.QualityUnknown
	}

	if format := releases.BookFormat(r.Ext, r.Container, nil); format != "" {
		return bookQuality(format)
	}
	return videoQuality(r)
}

func bookQuality(format string) models.Quality {
	switch format {
	case "epub":
		return models.QualityEPUB
	case "mobi":
		return models.QualityMOBI
	case "azw3":
		return models.QualityAZW3
	case "pdf":
		return models.QualityPDF
	}
	return models.QualityUnknown
}

func videoQuality(r *rls.Release) models.Quality {
	source := releases.NormalizeSource(r.Source)
	remux := releases.IsRemux(r.Source, r.Other)

	switch height := releases.ResolutionHeight(r.Resolution); {
	case height >= 2160:
		switch {
		case remux:
			return models.QualityRemux2160p
		case source == releases.SourceBluray:
			return models.QualityBluray2160p
		}
		return models.QualityWEBDL2160p
	case height >= 1080:
		switch {
		case remux:
			return models.QualityRemux1080p
		case source == releases.SourceBluray:
			return models.QualityBluray1080p
		case source == releases.SourceHDTV:
			return models.QualityHDTV1080p
		}
		return models.QualityWEBDL1080p
	case height >= 720:
		switch source {
		case releases.SourceBluray:
			return models.QualityBluray720p
		case releases.SourceHDTV:
			return models.QualityHDTV720p
		}
		return models.QualityWEBDL720p
	case height > 0:
		switch source {
		case releases.SourceDVD, releases.SourceBluray:
			return models.QualityDVD
		case releases.SourceWEBDL, releases.SourceWEBRip:
			return models.QualityWEBDL480p
		}
		return models.QualitySDTV
	}

	switch source {
	case releases.SourceDVD:
		return models.QualityDVD
	case releases.SourceHDTV, releases.SourceSDTV:
		return models.QualitySDTV
	case releases.SourceWEBDL, releases.SourceWEBRip:
		return models.QualityWEBDL480p
	}
	return models.QualityUnknown
}
