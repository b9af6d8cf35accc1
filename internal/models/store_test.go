// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/internal/testdb"
)

func seedItem(t *testing.T, ctx context.Context, store *models.MediaItemStore, profileID int) *models.MediaItem {
	t.Helper()
	item, err := store.Create(ctx, &models.MediaItem{
		Title:       "The Left Hand of Darkness",
		ParentTitle: "Ursula K. Le Guin",
		Year:        1969,
		Monitored:   true,
		ProfileID:   profileID,
		Tags:        []string{"scifi"},
		Path:        "/library/le-guin/left-hand",
		RootFolder:  "/library",
		Units: []models.MediaUnit{
			{Number: 1, Title: "Part One", Monitored: true},
			{Number: 2, Title: "Part Two", Monitored: false},
		},
	})
	require.NoError(t, err)
	return item
}

func TestQualityProfileStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := models.NewQualityProfileStore(testdb.Open(t))

	created, err := store.Create(ctx, &models.QualityProfile{
		Name:           "Books",
		UpgradeAllowed: true,
		Cutoff:         models.QualityEPUB.ID,
		Items: []models.QualityProfileItem{
			{Quality: models.QualityPDF, Allowed: true},
			{Quality: models.QualityEPUB, Allowed: true},
		},
		Languages: []models.LanguageProfileItem{{Language: models.LanguageEnglish, Allowed: true}},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Len(t, created.Items, 2)
	assert.Equal(t, models.QualityEPUB, created.CutoffQuality())

	created.Name = "Ebooks"
	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Ebooks", updated.Name)

	_, err = store.Create(ctx, &models.QualityProfile{Name: "Ebooks", Items: created.Items})
	assert.Error(t, err, "names are unique")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMediaItemStore_LoadsUnitsFilesAndProfile(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	profiles := models.NewQualityProfileStore(db)
	items := models.NewMediaItemStore(db)
	files := models.NewMediaFileStore(db)

	profile, err := profiles.Create(ctx, &models.QualityProfile{
		Name:  "Books",
		Items: []models.QualityProfileItem{{Quality: models.QualityEPUB, Allowed: true}},
	})
	require.NoError(t, err)

	item := seedItem(t, ctx, items, profile.ID)
	require.Len(t, item.Units, 2)
	require.NotNil(t, item.Profile)
	assert.Equal(t, "Books", item.Profile.Name)
	assert.Equal(t, []string{"scifi"}, item.Tags)

	unit := item.Units[0]
	_, err = files.Add(ctx, models.MediaFile{
		ItemID:       item.ID,
		UnitIDs:      []int{unit.ID},
		Path:         "/library/le-guin/left-hand/part-one.epub",
		RelativePath: "part-one.epub",
		Size:         1234,
		Quality:      models.NewQualityModel(models.QualityEPUB),
		Language:     models.LanguageEnglish,
		IndexerFlags: models.FlagFreeleech,
	})
	require.NoError(t, err)

	loaded, err := items.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Files, 1)
	assert.Equal(t, models.FlagFreeleech, loaded.Files[0].IndexerFlags)
	assert.Equal(t, models.QualityEPUB, loaded.Files[0].Quality.Quality)
	assert.Len(t, loaded.FilesForUnit(unit.ID), 1)
	assert.Equal(t, []int{loaded.Files[0].ID}, loaded.Units[0].FileIDs)
	assert.Empty(t, loaded.Units[1].FileIDs)

	_, err = items.Get(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMediaFileStore_DeleteByRelativePath(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	item := seedItem(t, ctx, models.NewMediaItemStore(db), 0)
	files := models.NewMediaFileStore(db)

	for _, rel := range []string{"a.epub", "a.epub", "b.epub"} {
		_, err := files.Add(ctx, models.MediaFile{ItemID: item.ID, Path: "/x/" + rel, RelativePath: rel})
		require.NoError(t, err)
	}

	removed, err := files.DeleteByRelativePath(ctx, item.ID, "a.epub")
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	none, err := files.DeleteByRelativePath(ctx, item.ID, "missing.epub")
	require.NoError(t, err)
	assert.Empty(t, none)

	left, err := files.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "b.epub", left[0].RelativePath)
}

func TestHistoryStore_FindGrabByDownloadID(t *testing.T) {
	ctx := context.Background()
	history := models.NewHistoryStore(testdb.Open(t))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err := history.Add(ctx, models.HistoryRecord{
		ItemID: 1, UnitID: 10, EventType: models.HistoryGrabbed, DownloadID: "abc",
		SourceTitle: "Old.Grab", Date: base,
	})
	require.NoError(t, err)
	_, err = history.Add(ctx, models.HistoryRecord{
		ItemID: 1, UnitID: 10, EventType: models.HistoryGrabbed, DownloadID: "abc",
		SourceTitle: "New.Grab", Date: base.Add(time.Hour),
		Data: map[string]string{models.HistoryDataIndexerFlags: "freeleech,internal"},
	})
	require.NoError(t, err)
	_, err = history.Add(ctx, models.HistoryRecord{
		ItemID: 1, UnitID: 10, EventType: models.HistoryImported, DownloadID: "abc", Date: base.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	grab, err := history.FindGrabByDownloadID(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, grab)
	assert.Equal(t, "New.Grab", grab.SourceTitle)
	assert.Equal(t, models.FlagFreeleech|models.FlagInternal, grab.IndexerFlags())

	missing, err := history.FindGrabByDownloadID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byUnit, err := history.ByUnit(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, byUnit, 3)
	assert.Equal(t, models.HistoryImported, byUnit[0].EventType)
}

func TestDelayProfileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := models.NewDelayProfileStore(testdb.Open(t))

	_, err := store.Create(ctx, models.DelayProfile{
		Order: 1, PreferredProtocol: models.ProtocolTorrent, EnableTorrent: true, EnableUsenet: true,
		UsenetDelay: 90 * time.Minute, Tags: []string{"anime"},
	})
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ProtocolTorrent, list[0].PreferredProtocol)
	assert.Equal(t, 90*time.Minute, list[0].UsenetDelay)
	assert.Equal(t, []string{"anime"}, list[0].Tags)
}
