// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"fmt"
	"strings"
)

// Quality identifies one rung a release or file can occupy on a profile's ladder.
type Quality struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Known qualities. IDs are stable and persisted.
var (
	QualityUnknown     = Quality{ID: 0, Name: "Unknown"}
	QualitySDTV        = Quality{ID: 1, Name: "SDTV"}
	QualityDVD         = Quality{ID: 2, Name: "DVD"}
	QualityWEBDL480p   = Quality{ID: 3, Name: "WEBDL-480p"}
	QualityHDTV720p    = Quality{ID: 4, Name: "HDTV-720p"}
	QualityWEBDL720p   = Quality{ID: 5, Name: "WEBDL-720p"}
	QualityBluray720p  = Quality{ID: 6, Name: "Bluray-720p"}
	QualityHDTV1080p   = Quality{ID: 7, Name: "HDTV-1080p"}
	QualityWEBDL1080p  = Quality{ID: 8, Name: "WEBDL-1080p"}
	QualityBluray1080p = Quality{ID: 9, Name: "Bluray-1080p"}
	QualityRemux1080p  = Quality{ID: 10, Name: "Remux-1080p"}
	QualityWEBDL2160p  = Quality{ID: 11, Name: "WEBDL-2160p"}
	QualityBluray2160p = Quality{ID: 12, Name: "Bluray-2160p"}
	QualityRemux2160p  = Quality{ID: 13, Name: "Remux-2160p"}
	QualityMP3         = Quality{ID: 20, Name: "MP3"}
	QualityFLAC        = Quality{ID: 21, Name: "FLAC"}
	QualityPDF         = Quality{ID: 30, Name: "PDF"}
	QualityMOBI        = Quality{ID: 31, Name: "MOBI"}
	QualityEPUB        = Quality{ID: 32, Name: "EPUB"}
	QualityAZW3        = Quality{ID: 33, Name: "AZW3"}
)

// AllQualities lists every known quality.
var AllQualities = []Quality{
	QualityUnknown, QualitySDTV, QualityDVD, QualityWEBDL480p, QualityHDTV720p, QualityWEBDL720p,
	QualityBluray720p, QualityHDTV1080p, QualityWEBDL1080p, QualityBluray1080p, QualityRemux1080p,
	QualityWEBDL2160p, QualityBluray2160p, QualityRemux2160p, QualityMP3, QualityFLAC,
	QualityPDF, QualityMOBI, QualityEPUB, QualityAZW3,
}

// QualityByID returns the known quality with id, or QualityUnknown.
func QualityByID(id int) Quality {
	for _, q := range AllQualities {
		if q.ID == id {
			return q
		}
	}
	return QualityUnknown
}

// QualityByName looks a quality up case-insensitively.
func QualityByName(name string) (Quality, bool) {
	name = strings.TrimSpace(name)
	for _, q := range AllQualities {
		if strings.EqualFold(q.Name, name) {
			return q, true
		}
	}
	return QualityUnknown, false
}

func (q Quality) String() string {
	return q.Name
}

// Revision distinguishes repacks/propers and scene "REAL" re-releases of the same quality.
type Revision struct {
	Version  int  `json:"version"`
	Real     int  `json:"real"`
	IsRepack bool `json:"isRepack,omitempty"`
}

// Compare orders revisions by real count, then version.
func (r Revision) Compare(other Revision) int {
	if c := compareInt(r.Real, other.Real); c != 0 {
		return c
	}
	return compareInt(r.Version, other.Version)
}

// QualityModel is a quality plus its revision.
type QualityModel struct {
	Quality  Quality  `json:"quality"`
	Revision Revision `json:"revision"`
}

// NewQualityModel returns a model at revision version 1.
func NewQualityModel(q Quality) QualityModel {
	return QualityModel{Quality: q, Revision: Revision{Version: 1}}
}

func (m QualityModel) String() string {
	if m.Revision.Version > 1 || m.Revision.Real > 0 {
		return fmt.Sprintf("%s v%d", m.Quality.Name, m.Revision.Version)
	}
	return m.Quality.Name
}

// Language is a release or file language.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Known languages.
var (
	LanguageUnknown  = Language{ID: 0, Name: "Unknown"}
	LanguageEnglish  = Language{ID: 1, Name: "English"}
	LanguageFrench   = Language{ID: 2, Name: "French"}
	LanguageSpanish  = Language{ID: 3, Name: "Spanish"}
	LanguageGerman   = Language{ID: 4, Name: "German"}
	LanguageItalian  = Language{ID: 5, Name: "Italian"}
	LanguageDutch    = Language{ID: 7, Name: "Dutch"}
	LanguageJapanese = Language{ID: 8, Name: "Japanese"}
	LanguageRussian  = Language{ID: 11, Name: "Russian"}
	LanguagePolish   = Language{ID: 12, Name: "Polish"}
	LanguageSwedish  = Language{ID: 14, Name: "Swedish"}
	LanguageKorean   = Language{ID: 21, Name: "Korean"}
	LanguageChinese  = Language{ID: 10, Name: "Chinese"}
)

// AllLanguages lists every known language.
var AllLanguages = []Language{
	LanguageUnknown, LanguageEnglish, LanguageFrench, LanguageSpanish, LanguageGerman,
	LanguageItalian, LanguageDutch, LanguageJapanese, LanguageRussian, LanguagePolish,
	LanguageSwedish, LanguageKorean, LanguageChinese,
}

// LanguageByName looks a language up case-insensitively.
func LanguageByName(name string) (Language, bool) {
	name = strings.TrimSpace(name)
	for _, l := range AllLanguages {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return LanguageUnknown, false
}

func (l Language) String() string {
	return l.Name
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
