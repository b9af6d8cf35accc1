// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"context"
	"errors"
	"path/filepath"
	"slices"

	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/pkg/pathcmp"
	"github.com/autobrr/curator/pkg/stringutils"
)

// ReasonUnableToParse rejects files whose name and folder both failed to parse.
const ReasonUnableToParse = "Unable to parse file"

// DecideOptions carries batch-level hints.
type DecideOptions struct {
	// FolderName is the release or download folder name, parsed as a fallback
	// for file names that carry no usable metadata.
	FolderName string
}

// DecideImports evaluates every file against item and returns one decision
// per file in input order. dci links the files to a download when known.
func (s *Service) DecideImports(ctx context.Context, files []ScannedFile, item *models.MediaItem, dci *models.DownloadClientItem, opts DecideOptions) ([]Decision, error) {
	if item == nil {
		return nil, errors.New("decide imports: media item is required")
	}

	ev := &Evaluation{
		Item:     item,
		Download: dci,
		Settings: s.settings(),
		Now:      s.now(),
		Disk:     s.disk,
	}

	folderName := opts.FolderName
	if folderName == "" && dci != nil {
		folderName = dci.Title
	}
	folder := s.parseFolder(folderName, item)

	locals := make([]*models.LocalFile, len(files))
	for i, f := range files {
		locals[i] = s.localFile(ctx, f, item, dci, folder)
	}
	release := buildRelease(folderName, item, locals)

	out := make([]Decision, len(locals))
	approved := 0
	for i, lf := range locals {
		lf.Release = release
		if lf.Parsed == nil {
			out[i] = decision.New(lf, decision.NewRejection(ReasonUnableToParse))
		} else {
			out[i] = s.engine.Decide(lf, ev)
		}
		if out[i].Approved() {
			approved++
		}
		s.observer.ObserveDecision("import", out[i].Outcome())
	}

	s.logger.Debug().
		Int("itemID", item.ID).
		Int("files", len(files)).
		Int("approved", approved).
		Float64("distance", release.Distance).
		Msg("[IMPORT] Processed files")
	return out, nil
}

func (s *Service) parseFolder(name string, item *models.MediaItem) *models.ParsedInfo {
	if name == "" {
		return nil
	}
	if parsed := s.parser.ParseReleaseTitle(name); parsed != nil {
		return parsed
	}
	return s.parser.ParseReleaseTitleWithHints(name, item, item.Units)
}

func (s *Service) localFile(ctx context.Context, f ScannedFile, item *models.MediaItem, dci *models.DownloadClientItem, folder *models.ParsedInfo) *models.LocalFile {
	name := filepath.Base(f.Path)
	lf := &models.LocalFile{
		Path:               f.Path,
		Size:               f.Size,
		ModTime:            f.ModTime,
		Item:               item,
		ExistingFile:       item.Path != "" && pathcmp.IsWithin(item.Path, f.Path),
		DownloadClientItem: dci,
	}

	parsed := s.parser.ParseReleaseTitle(name)
	if parsed == nil || (len(parsed.UnitNumbers) == 0 && len(item.Units) > 1) {
		if hinted := s.parser.ParseReleaseTitleWithHints(name, item, item.Units); hinted != nil {
			parsed = hinted
		}
	}
	if parsed == nil && folder != nil {
		clone := *folder
		clone.UnitNumbers = nil
		parsed = &clone
	}
	if parsed == nil {
		return lf
	}
	lf.Parsed = parsed

	lf.Quality = parsed.Quality
	lf.Language = parsed.Language
	lf.ReleaseGroup = parsed.ReleaseGroup
	if folder != nil {
		if lf.Quality.Quality == models.QualityUnknown {
			lf.Quality = folder.Quality
		}
		if lf.Language == models.LanguageUnknown {
			lf.Language = folder.Language
		}
		if lf.ReleaseGroup == "" {
			lf.ReleaseGroup = folder.ReleaseGroup
		}
		lf.SceneName = folder.ReleaseTitle
	}

	lf.Units = matchUnits(item, parsed, name)
	if lf.Quality.Quality == models.QualityUnknown {
		s.qualityFromGrab(ctx, lf, dci)
	}
	lf.Distance = fileDistance(item, lf.Units, parsed, folder, name)
	return lf
}

// qualityFromGrab falls back to the quality recorded when the unit's release
// was grabbed.
func (s *Service) qualityFromGrab(ctx context.Context, lf *models.LocalFile, dci *models.DownloadClientItem) {
	if s.history == nil {
		return
	}
	for _, u := range lf.Units {
		records, err := s.history.ByUnit(ctx, u.ID)
		if err != nil {
			s.logger.Warn().Err(err).Int("unitID", u.ID).Msg("[IMPORT] Unable to read unit history")
			return
		}
		for _, h := range records {
			if h.EventType != models.HistoryGrabbed {
				continue
			}
			if dci != nil && h.DownloadID != dci.DownloadID {
				continue
			}
			lf.Quality = h.Quality
			if lf.Language == models.LanguageUnknown {
				lf.Language = h.Language
			}
			return
		}
	}
}

func matchUnits(item *models.MediaItem, parsed *models.ParsedInfo, name string) []models.MediaUnit {
	var units []models.MediaUnit
	for _, n := range parsed.UnitNumbers {
		if u, ok := item.UnitByNumber(n); ok {
			units = append(units, u)
		}
	}
	if len(units) > 0 || len(parsed.UnitNumbers) > 0 {
		return units
	}
	for _, u := range item.Units {
		if u.Title != "" && stringutils.ContainsTitle(name, u.Title) {
			units = append(units, u)
		}
	}
	if len(units) == 0 && len(item.Units) == 1 {
		units = slices.Clone(item.Units)
	}
	return units
}

func bestTitleDistance(expected string, candidates ...string) float64 {
	best := 1.0
	for _, c := range candidates {
		if c == "" {
			continue
		}
		best = min(best, stringutils.TitleDistance(expected, c))
	}
	return best
}

func fileDistance(item *models.MediaItem, units []models.MediaUnit, parsed, folder *models.ParsedInfo, name string) models.Distance {
	var d models.Distance

	titles := []string{parsed.ItemTitle}
	parents := []string{parsed.ParentTitle}
	year := parsed.Year
	if folder != nil {
		titles = append(titles, folder.ItemTitle)
		parents = append(parents, folder.ParentTitle)
		if year == 0 {
			year = folder.Year
		}
	}

	d.Add(models.DistanceItemTitle, bestTitleDistance(item.Title, titles...))
	if item.ParentTitle != "" && slices.ContainsFunc(parents, func(p string) bool { return p != "" }) {
		d.Add(models.DistanceParentTitle, bestTitleDistance(item.ParentTitle, parents...))
	}
	if item.Year != 0 && year != 0 {
		d.AddBool(models.DistanceYear, item.Year != year)
	}

	// a name that only carries the item title says nothing about the unit
	namesItem := stringutils.TitleDistance(item.Title, parsed.ItemTitle) == 0
	for _, u := range units {
		if u.Title == "" || len(item.Units) == 1 {
			continue
		}
		switch {
		case stringutils.ContainsTitle(name, u.Title):
			d.Add(models.DistanceUnitTitle, 0)
		case !namesItem:
			d.Add(models.DistanceUnitTitle, bestTitleDistance(u.Title, parsed.ItemTitle))
		}
	}
	if n := len(parsed.UnitNumbers); n > 0 {
		d.AddRatio(models.DistanceUnitNumber, n-len(units), n)
	}
	return d
}

// buildRelease aggregates the files of one batch. Missing units and unmatched
// files only apply to releases of more than one file.
func buildRelease(name string, item *models.MediaItem, locals []*models.LocalFile) *models.LocalRelease {
	rel := &models.LocalRelease{Name: name, FileCount: len(locals)}

	covered := make(map[int]struct{})
	var (
		sum     float64
		matched int
		reasons []string
	)
	for _, lf := range locals {
		if lf.Parsed == nil || len(lf.Units) == 0 {
			rel.UnmatchedFiles = append(rel.UnmatchedFiles, filepath.Base(lf.Path))
			continue
		}
		for _, u := range lf.Units {
			covered[u.ID] = struct{}{}
		}
		sum += lf.Distance.Normalized()
		matched++
		for _, r := range lf.Distance.Reasons() {
			if !slices.Contains(reasons, r) {
				reasons = append(reasons, r)
			}
		}
	}
	if matched > 0 {
		rel.Distance = sum / float64(matched)
	}
	rel.Reasons = reasons

	if len(locals) <= 1 {
		rel.UnmatchedFiles = nil
		return rel
	}
	for _, u := range item.MonitoredUnits() {
		if _, ok := covered[u.ID]; !ok {
			rel.MissingUnits = append(rel.MissingUnits, u)
		}
	}
	return rel
}
