// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package releases

import (
	"time"

	"github.com/autobrr/curator/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const mb = 1024 * 1024

func testProfile() *models.QualityProfile {
	return &models.QualityProfile{
		ID:             7,
		Name:           "HD",
		UpgradeAllowed: true,
		Cutoff:         models.QualityWEBDL1080p.ID,
		Items: []models.QualityProfileItem{
			{Quality: models.QualitySDTV, Allowed: false},
			{Quality: models.QualityHDTV720p, Allowed: true},
			{Quality: models.QualityWEBDL720p, Allowed: true},
			{Quality: models.QualityWEBDL1080p, Allowed: true},
			{Quality: models.QualityBluray1080p, Allowed: true},
		},
		Languages: []models.LanguageProfileItem{
			{Language: models.LanguageFrench, Allowed: false},
			{Language: models.LanguageGerman, Allowed: true},
			{Language: models.LanguageEnglish, Allowed: true},
		},
		CutoffLanguage: models.LanguageEnglish.ID,
	}
}

func testItem() *models.MediaItem {
	p := testProfile()
	return &models.MediaItem{
		ID:        1,
		Title:     "Dune",
		Year:      2021,
		Monitored: true,
		ProfileID: p.ID,
		Profile:   p,
		Path:      "/library/Dune (2021)",
		Units:     []models.MediaUnit{{ID: 10, ItemID: 1, Number: 1, Title: "Dune", Monitored: true}},
	}
}

func qm(q models.Quality, version, real int) models.QualityModel {
	return models.QualityModel{Quality: q, Revision: models.Revision{Version: version, Real: real}}
}

func candidate(title string, q models.Quality, mutate ...func(*models.RemoteItem)) *models.RemoteItem {
	item := testItem()
	r := &models.RemoteItem{
		Release: models.ReleaseInfo{
			GUID:             title,
			Title:            title,
			DownloadProtocol: models.ProtocolTorrent,
			PublishDate:      testNow.Add(-48 * time.Hour),
			Size:             1000 * mb,
			Seeders:          50,
			Peers:            60,
		},
		Parsed: &models.ParsedInfo{
			ReleaseTitle: title,
			ItemTitle:    "Dune",
			Quality:      qm(q, 1, 0),
			Language:     models.LanguageEnglish,
			ReleaseGroup: "GRP",
		},
		Item:            item,
		Units:           item.Units,
		Profile:         item.Profile,
		DownloadAllowed: true,
	}
	for _, fn := range mutate {
		fn(r)
	}
	return r
}

func withProtocol(p models.DownloadProtocol) func(*models.RemoteItem) {
	return func(r *models.RemoteItem) { r.Release.DownloadProtocol = p }
}

func withSize(size int64) func(*models.RemoteItem) {
	return func(r *models.RemoteItem) { r.Release.Size = size }
}

func withAge(age time.Duration) func(*models.RemoteItem) {
	return func(r *models.RemoteItem) { r.Release.PublishDate = testNow.Add(-age) }
}

func withSwarm(seeders, peers int) func(*models.RemoteItem) {
	return func(r *models.RemoteItem) {
		r.Release.Seeders = seeders
		r.Release.Peers = peers
	}
}

func withLanguage(l models.Language) func(*models.RemoteItem) {
	return func(r *models.RemoteItem) { r.Parsed.Language = l }
}

func withRevision(version, real int) func(*models.RemoteItem) {
	return func(r *models.RemoteItem) {
		r.Parsed.Quality.Revision = models.Revision{Version: version, Real: real}
	}
}

func withFile(q models.QualityModel, lang models.Language) func(*models.RemoteItem) {
	return func(r *models.RemoteItem) {
		f := models.MediaFile{ID: 100, ItemID: r.Item.ID, UnitIDs: []int{10}, Quality: q, Language: lang, ReleaseGroup: "GRP"}
		r.Item.Files = append(r.Item.Files, f)
	}
}
