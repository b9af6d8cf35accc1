// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/autobrr/curator/internal/events"
	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/pkg/pathcmp"
)

// Messages of failed imports.
const (
	ReasonAlreadyImported         = "Unit has already been imported"
	ReasonImportFailed            = "Failed to import file"
	ReasonDestinationExists       = "Failed to import file, destination already exists"
	ReasonCancelled               = "Import was cancelled"
	reasonRootFolderMissingFormat = "Failed to import file, root folder %s is missing"
)

// ApplyImports commits the approved decisions, largest file first, and returns
// one result per input decision: approved ones in processing order, then the
// rejected ones carrying their rejection reasons. newDownload selects between
// placing files from a download and re-indexing files already in the library.
func (s *Service) ApplyImports(ctx context.Context, decisions []Decision, newDownload bool, dci *models.DownloadClientItem, mode ImportMode) ([]ImportResult, error) {
	for i, d := range decisions {
		if d.Subject == nil {
			return nil, fmt.Errorf("apply imports: decision %d has no file", i)
		}
		if d.Approved() && d.Subject.Item == nil {
			return nil, fmt.Errorf("apply imports: approved decision %d has no item", i)
		}
	}

	settings := s.settings()
	if mode == "" {
		mode = settings.Mode
	}
	copyOnly := mode.copyOnly(dci)

	var approved, rejected []Decision
	for _, d := range decisions {
		if d.Approved() {
			approved = append(approved, d)
		} else {
			rejected = append(rejected, d)
		}
	}
	slices.SortStableFunc(approved, func(a, b Decision) int {
		return cmp.Compare(b.Subject.Size, a.Subject.Size)
	})

	// One goroutine per item keeps each item's decisions sequential, which
	// the already-imported check relies on.
	var (
		order  []int
		groups = make(map[int][]int)
	)
	for i, d := range approved {
		id := d.Subject.Item.ID
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	results := make([]ImportResult, len(approved), len(decisions))
	var g errgroup.Group
	for _, id := range order {
		indexes := groups[id]
		g.Go(func() error {
			imported := make(map[int]struct{})
			for _, i := range indexes {
				results[i] = s.applyOne(ctx, approved[i], newDownload, dci, copyOnly, settings, imported)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, d := range rejected {
		results = append(results, ImportResult{Decision: d, Result: ResultRejected, Errors: d.Reasons()})
	}

	succeeded := 0
	for _, r := range results {
		if r.Imported() {
			succeeded++
		}
	}
	s.logger.Info().
		Int("decisions", len(decisions)).
		Int("imported", succeeded).
		Bool("newDownload", newDownload).
		Bool("copy", copyOnly).
		Msg("[IMPORT] Import batch finished")
	return results, nil
}

func (s *Service) applyOne(ctx context.Context, d Decision, newDownload bool, dci *models.DownloadClientItem, copyOnly bool, settings Settings, imported map[int]struct{}) (res ImportResult) {
	file := d.Subject
	item := file.Item

	defer func() {
		if p := recover(); p != nil {
			res = s.failed(d, dci, fmt.Errorf("panic: %v", p))
		}
	}()

	if ctx.Err() != nil {
		return ImportResult{Decision: d, Result: ResultSkipped, Errors: []string{ReasonCancelled}}
	}

	if slices.ContainsFunc(file.Units, func(u models.MediaUnit) bool {
		_, ok := imported[u.ID]
		return ok
	}) {
		s.logger.Debug().Str("path", file.Path).Msg("[IMPORT] Unit already imported in this batch")
		return ImportResult{Decision: d, Result: ResultRejected, Errors: []string{ReasonAlreadyImported}}
	}

	record := models.MediaFile{
		ItemID:       item.ID,
		UnitIDs:      models.UnitIDs(file.Units),
		Size:         file.Size,
		Quality:      file.Quality,
		Language:     file.Language,
		ReleaseGroup: file.ReleaseGroup,
		SceneName:    file.SceneName,
		DateAdded:    s.now(),
	}
	if dci != nil && s.history != nil {
		grab, err := s.history.FindGrabByDownloadID(ctx, dci.DownloadID)
		if err != nil {
			s.logger.Warn().Err(err).Str("downloadID", dci.DownloadID).Msg("[IMPORT] Unable to read grab history")
		} else if grab != nil {
			record.IndexerFlags = grab.IndexerFlags()
		}
	}

	var (
		oldFiles []models.MediaFile
		err      error
	)
	if newDownload {
		oldFiles, err = s.placer.Place(ctx, file, &record, copyOnly)
		if err != nil {
			return s.failed(d, dci, err)
		}
		for _, old := range oldFiles {
			if old.ID == 0 {
				continue
			}
			if err := s.files.Delete(ctx, old.ID); err != nil {
				s.logger.Warn().Err(err).Int("fileID", old.ID).Msg("[IMPORT] Unable to remove replaced file record")
			}
		}
	} else {
		record.Path = file.Path
		rel, ok := pathcmp.Rel(item.Path, file.Path)
		if !ok {
			rel = filepath.Base(file.Path)
		}
		record.RelativePath = rel
		oldFiles, err = s.files.DeleteByRelativePath(ctx, item.ID, rel)
		if err != nil {
			return s.failed(d, dci, err)
		}
	}

	saved, err := s.files.Add(ctx, record)
	if err != nil {
		return s.failed(d, dci, err)
	}
	for _, u := range file.Units {
		imported[u.ID] = struct{}{}
	}

	if newDownload {
		s.recordHistory(ctx, file, saved, dci)
	}
	s.sink.Publish(events.Event{
		Type:        events.EventFileImported,
		Time:        s.now(),
		ItemID:      item.ID,
		SourcePath:  file.Path,
		File:        &saved,
		OldFiles:    oldFiles,
		NewDownload: newDownload,
		Download:    dci,
	})
	if len(oldFiles) > 0 {
		s.sink.Publish(events.Event{
			Type:     events.EventFilesReplaced,
			Time:     s.now(),
			ItemID:   item.ID,
			File:     &saved,
			OldFiles: oldFiles,
		})
	}

	if newDownload && s.extras != nil {
		extras, err := s.extras.ImportExtras(ctx, file, saved, settings.ExtraExtensions)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", file.Path).Msg("[IMPORT] Unable to import extra files")
		} else if len(extras) > 0 {
			s.logger.Debug().Strs("extras", extras).Msg("[IMPORT] Imported extra files")
		}
	}

	s.logger.Info().Int("itemID", item.ID).Str("path", saved.Path).Str("quality", saved.Quality.String()).Msg("[IMPORT] Imported file")
	return ImportResult{Decision: d, Result: ResultImported}
}

func (s *Service) recordHistory(ctx context.Context, file *models.LocalFile, saved models.MediaFile, dci *models.DownloadClientItem) {
	if s.history == nil {
		return
	}
	source := file.SceneName
	if source == "" {
		source = filepath.Base(file.Path)
	}
	h := models.HistoryRecord{
		ItemID:      saved.ItemID,
		EventType:   models.HistoryImported,
		SourceTitle: source,
		Quality:     saved.Quality,
		Language:    saved.Language,
		Date:        saved.DateAdded,
		Data: map[string]string{
			"importedPath": saved.Path,
			"droppedPath":  file.Path,
			"fileId":       strconv.Itoa(saved.ID),
		},
	}
	if dci != nil {
		h.DownloadID = dci.DownloadID
		h.Data["downloadClient"] = dci.Client
	}
	for _, unitID := range saved.UnitIDs {
		h.UnitID = unitID
		if _, err := s.history.Add(ctx, h); err != nil {
			s.logger.Warn().Err(err).Int("unitID", unitID).Msg("[IMPORT] Unable to record import history")
		}
	}
}

func (s *Service) failed(d Decision, dci *models.DownloadClientItem, err error) ImportResult {
	file := d.Subject

	var message string
	switch {
	case errors.Is(err, ErrRootFolderNotFound):
		root := file.Item.RootFolder
		var rootErr *RootFolderNotFoundError
		if errors.As(err, &rootErr) {
			root = rootErr.RootFolder
		}
		message = fmt.Sprintf(reasonRootFolderMissingFormat, root)
		s.logger.Warn().Str("path", file.Path).Str("rootFolder", root).Msg("[IMPORT] Root folder is missing")
	case errors.Is(err, ErrDestinationAlreadyExists):
		message = ReasonDestinationExists
		s.logger.Warn().Str("path", file.Path).Msg("[IMPORT] Destination already exists")
	default:
		message = ReasonImportFailed
		s.logger.Error().Err(err).Str("path", file.Path).Msg("[IMPORT] Couldn't import file")
	}

	s.sink.Publish(events.Event{
		Type:       events.EventImportFailed,
		Time:       s.now(),
		ItemID:     file.ItemID(),
		SourcePath: file.Path,
		Download:   dci,
		Message:    message,
	})
	return ImportResult{Decision: d, Result: ResultRejected, Errors: []string{message}}
}
