// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/events"
	"github.com/autobrr/curator/internal/models"
)

func approvedFile(item *models.MediaItem, unit int, name string, size int64) Decision {
	return decision.New(&models.LocalFile{
		Path:     "/downloads/" + albumFolder + "/" + name,
		Size:     size,
		Item:     item,
		Units:    []models.MediaUnit{item.Units[unit]},
		Quality:  models.NewQualityModel(models.QualityFLAC),
		Language: models.LanguageEnglish,
	})
}

func TestApplyImports_BatchOrderAndRejectedTail(t *testing.T) {
	t.Parallel()

	h := newHarness()
	rec := &events.Recorder{}
	svc := h.service(WithSink(rec))
	item := testItem()

	small := approvedFile(item, 0, "01 - Hunter.flac", 100*mb)
	large := approvedFile(item, 1, "02 - Joga.flac", 300*mb)
	rejected := decision.New(&models.LocalFile{Path: "/downloads/x/03 - Unravel.flac", Item: item, Size: 500 * mb},
		decision.NewRejection("Has missing units: 3"))

	results, err := svc.ApplyImports(context.Background(), []Decision{small, rejected, large}, true, nil, ModeAuto)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Same(t, large.Subject, results[0].Decision.Subject)
	assert.Same(t, small.Subject, results[1].Decision.Subject)
	assert.Same(t, rejected.Subject, results[2].Decision.Subject)
	assert.True(t, results[0].Imported())
	assert.True(t, results[1].Imported())
	assert.Equal(t, ResultRejected, results[2].Result)
	assert.Equal(t, []string{"Has missing units: 3"}, results[2].Errors)

	stored := h.files.snapshot()
	require.Len(t, stored, 2)
	assert.Equal(t, "/library/Bjork/Homogenic/02 - Joga.flac", stored[0].Path)
	assert.Equal(t, []int{51}, stored[0].UnitIDs)
	assert.Equal(t, testNow, stored[0].DateAdded)

	require.Len(t, h.placer.calls, 2)
	assert.False(t, h.placer.calls[0].copyOnly)

	require.Len(t, h.history.added, 2)
	assert.Equal(t, models.HistoryImported, h.history.added[0].EventType)
	assert.Equal(t, 51, h.history.added[0].UnitID)
	assert.Len(t, rec.OfType(events.EventFileImported), 2)
}

func TestApplyImports_SameUnitImportedOnce(t *testing.T) {
	t.Parallel()

	h := newHarness()
	item := testItem()
	first := approvedFile(item, 0, "01 - Hunter.flac", 200*mb)
	second := approvedFile(item, 0, "01 - Hunter (alt).flac", 100*mb)

	results, err := h.service().ApplyImports(context.Background(), []Decision{second, first}, true, nil, ModeAuto)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Imported())
	assert.Same(t, first.Subject, results[0].Decision.Subject)
	assert.Equal(t, ResultRejected, results[1].Result)
	assert.Equal(t, []string{ReasonAlreadyImported}, results[1].Errors)
	assert.Len(t, h.files.snapshot(), 1)
}

func TestApplyImports_ItemsAreIndependent(t *testing.T) {
	t.Parallel()

	h := newHarness()
	var decisions []Decision
	for id := 1; id <= 8; id++ {
		item := testItem()
		item.ID = id
		item.Path = fmt.Sprintf("/library/item-%d", id)
		decisions = append(decisions,
			approvedFile(item, 0, "01 - Hunter.flac", int64(id)*mb),
			approvedFile(item, 1, "02 - Joga.flac", int64(id)*mb+1),
		)
	}

	results, err := h.service().ApplyImports(context.Background(), decisions, true, nil, ModeAuto)
	require.NoError(t, err)
	require.Len(t, results, len(decisions))
	for i, r := range results {
		assert.True(t, r.Imported(), "result %d: %v", i, r.Errors)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Decision.Subject.Size, r.Decision.Subject.Size)
		}
	}
	assert.Len(t, h.files.snapshot(), len(decisions))
}

func TestApplyImports_FailureMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "root folder missing", err: &RootFolderNotFoundError{RootFolder: "/mnt/books"}, want: "Failed to import file, root folder /mnt/books is missing"},
		{name: "bare root folder sentinel", err: ErrRootFolderNotFound, want: "Failed to import file, root folder /library is missing"},
		{name: "destination exists", err: fmt.Errorf("place: %w", ErrDestinationAlreadyExists), want: ReasonDestinationExists},
		{name: "anything else", err: errors.New("input/output error"), want: ReasonImportFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness()
			h.placer.err = tt.err
			rec := &events.Recorder{}
			item := testItem()

			results, err := h.service(WithSink(rec)).ApplyImports(context.Background(), []Decision{
				approvedFile(item, 0, "01 - Hunter.flac", 2*mb),
				approvedFile(item, 1, "02 - Joga.flac", mb),
			}, true, nil, ModeAuto)
			require.NoError(t, err)
			require.Len(t, results, 2)

			for _, r := range results {
				assert.Equal(t, ResultRejected, r.Result)
				assert.Equal(t, []string{tt.want}, r.Errors)
			}
			assert.Empty(t, h.files.snapshot())
			failed := rec.OfType(events.EventImportFailed)
			require.Len(t, failed, 2, "the batch continues after a failure")
			assert.Equal(t, tt.want, failed[0].Message)
		})
	}
}

func TestApplyImports_StoreFailure(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.files.addErr = errors.New("database is locked")
	item := testItem()

	results, err := h.service().ApplyImports(context.Background(), []Decision{approvedFile(item, 0, "01 - Hunter.flac", mb)}, true, nil, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{ReasonImportFailed}, results[0].Errors)
}

func TestApplyImports_CopyMode(t *testing.T) {
	t.Parallel()

	cannotMove := &models.DownloadClientItem{DownloadID: "abc", CanMoveFiles: false}
	canMove := &models.DownloadClientItem{DownloadID: "abc", CanMoveFiles: true}

	tests := []struct {
		name     string
		dci      *models.DownloadClientItem
		mode     ImportMode
		settings ImportMode
		wantCopy bool
	}{
		{name: "auto without client", mode: ModeAuto},
		{name: "auto with movable client", dci: canMove, mode: ModeAuto},
		{name: "auto with seeding client", dci: cannotMove, mode: ModeAuto, wantCopy: true},
		{name: "forced move", dci: cannotMove, mode: ModeMove},
		{name: "forced copy", dci: canMove, mode: ModeCopy, wantCopy: true},
		{name: "mode from settings", dci: canMove, settings: ModeCopy, wantCopy: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness()
			if tt.settings != "" {
				h.settings.Mode = tt.settings
			}
			item := testItem()
			_, err := h.service().ApplyImports(context.Background(), []Decision{approvedFile(item, 0, "01 - Hunter.flac", mb)}, true, tt.dci, tt.mode)
			require.NoError(t, err)
			require.Len(t, h.placer.calls, 1)
			assert.Equal(t, tt.wantCopy, h.placer.calls[0].copyOnly)
		})
	}
}

func TestApplyImports_IndexerFlagsFromGrab(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.history.grabs = map[string]*models.HistoryRecord{
		"abc": {EventType: models.HistoryGrabbed, Data: map[string]string{models.HistoryDataIndexerFlags: "freeleech, internal"}},
	}
	dci := &models.DownloadClientItem{DownloadID: "abc", Client: "qbittorrent", CanMoveFiles: true}
	item := testItem()

	results, err := h.service().ApplyImports(context.Background(), []Decision{approvedFile(item, 0, "01 - Hunter.flac", mb)}, true, dci, ModeAuto)
	require.NoError(t, err)
	require.True(t, results[0].Imported())

	stored := h.files.snapshot()
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IndexerFlags.Has(models.FlagFreeleech|models.FlagInternal))

	require.Len(t, h.history.added, 1)
	assert.Equal(t, "abc", h.history.added[0].DownloadID)
	assert.Equal(t, "qbittorrent", h.history.added[0].Data["downloadClient"])
}

func TestApplyImports_ReplacedFilesAreRemoved(t *testing.T) {
	t.Parallel()

	h := newHarness()
	rec := &events.Recorder{}
	item := testItem()
	item.Files = []models.MediaFile{existingFile(models.QualityMP3, 10*mb)}

	results, err := h.service(WithSink(rec)).ApplyImports(context.Background(), []Decision{approvedFile(item, 0, "01 - Hunter.flac", 30*mb)}, true, nil, ModeAuto)
	require.NoError(t, err)
	require.True(t, results[0].Imported())

	assert.Equal(t, []int{9}, h.files.deleted)
	imported := rec.OfType(events.EventFileImported)
	require.Len(t, imported, 1)
	require.Len(t, imported[0].OldFiles, 1)
	assert.Equal(t, 9, imported[0].OldFiles[0].ID)
	assert.Len(t, rec.OfType(events.EventFilesReplaced), 1)
}

func TestApplyImports_ExistingLibraryFile(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.files.files = []models.MediaFile{{ID: 7, ItemID: 5, RelativePath: "01 - Hunter.flac"}}
	rec := &events.Recorder{}
	item := testItem()

	d := decision.New(&models.LocalFile{
		Path:         "/library/Bjork/Homogenic/01 - Hunter.flac",
		Size:         mb,
		Item:         item,
		Units:        item.Units[:1],
		Quality:      models.NewQualityModel(models.QualityFLAC),
		ExistingFile: true,
	})
	results, err := h.service(WithSink(rec)).ApplyImports(context.Background(), []Decision{d}, false, nil, ModeAuto)
	require.NoError(t, err)
	require.True(t, results[0].Imported())

	assert.Empty(t, h.placer.calls, "library files are not moved")
	assert.Empty(t, h.history.added, "rescans are not recorded as imports")

	stored := h.files.snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, "01 - Hunter.flac", stored[0].RelativePath)
	assert.Equal(t, d.Subject.Path, stored[0].Path)

	imported := rec.OfType(events.EventFileImported)
	require.Len(t, imported, 1)
	assert.False(t, imported[0].NewDownload)
	require.Len(t, imported[0].OldFiles, 1)
	assert.Equal(t, 7, imported[0].OldFiles[0].ID)
}

func TestApplyImports_ContractViolations(t *testing.T) {
	t.Parallel()

	svc := newHarness().service()

	_, err := svc.ApplyImports(context.Background(), []Decision{{}}, true, nil, ModeAuto)
	assert.Error(t, err)

	_, err = svc.ApplyImports(context.Background(), []Decision{decision.New(&models.LocalFile{Path: "/x.flac"})}, true, nil, ModeAuto)
	assert.Error(t, err)

	results, err := svc.ApplyImports(context.Background(), []Decision{decision.New(&models.LocalFile{Path: "/x.flac"}, decision.NewRejection("Unable to parse file"))}, true, nil, ModeAuto)
	require.NoError(t, err, "rejected decisions need no item")
	assert.Equal(t, []string{"Unable to parse file"}, results[0].Errors)
}

func TestApplyImports_CancelledContextSkips(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	item := testItem()
	results, err := h.service().ApplyImports(ctx, []Decision{approvedFile(item, 0, "01 - Hunter.flac", mb)}, true, nil, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, ResultSkipped, results[0].Result)
	assert.Empty(t, h.placer.calls)
}

func TestImport_RepeatIsNotAnUpgrade(t *testing.T) {
	t.Parallel()

	h := newHarness()
	svc := h.service()
	item := testItem()
	files := []ScannedFile{scanned("01 - Hunter.flac", 30*mb)}
	opts := DecideOptions{FolderName: albumFolder}

	first, err := svc.DecideImports(context.Background(), files, item, nil, opts)
	require.NoError(t, err)
	require.True(t, first[0].Approved(), first[0].ReasonString())

	results, err := svc.ApplyImports(context.Background(), first, true, nil, ModeAuto)
	require.NoError(t, err)
	require.True(t, results[0].Imported())

	item.Files = h.files.snapshot()
	second, err := svc.DecideImports(context.Background(), files, item, nil, opts)
	require.NoError(t, err)
	require.False(t, second[0].Approved())

	found := false
	for _, reason := range second[0].Reasons() {
		if strings.Contains(strings.ToLower(reason), "not an upgrade") {
			found = true
		}
	}
	assert.True(t, found, second[0].ReasonString())
}
