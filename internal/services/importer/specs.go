// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/pkg/pathcmp"
)

// Evaluation is the context file rules read.
type Evaluation struct {
	Item     *models.MediaItem
	Download *models.DownloadClientItem
	Settings Settings
	Now      time.Time
	Disk     DiskProvider
}

// Spec is a file rule.
type Spec = decision.Spec[*models.LocalFile, *Evaluation]

// DefaultSpecs returns the file rule set.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "release wanted", Priority: decision.PriorityDefault, Evaluate: releaseWanted},
		{Name: "close match", Priority: decision.PriorityDefault, Evaluate: closeMatch},
		{Name: "missing units", Priority: decision.PriorityDefault, Evaluate: missingUnits},
		{Name: "unmatched files", Priority: decision.PriorityDefault, Evaluate: unmatchedFiles},
		{Name: "same file", Priority: decision.PriorityDatabase, Evaluate: sameFile},
		{Name: "upgrade", Priority: decision.PriorityDatabase, Evaluate: upgrade},
		{Name: "free space", Priority: decision.PriorityDisk, Evaluate: freeSpace},
		{Name: "not unpacking", Priority: decision.PriorityDisk, Evaluate: notUnpacking},
	}
}

// NewRegistry returns a registry holding the default file rules.
func NewRegistry() *decision.Registry[*models.LocalFile, *Evaluation] {
	return decision.NewRegistry[*models.LocalFile, *Evaluation]().MustRegister(DefaultSpecs()...)
}

func releaseWanted(f *models.LocalFile, ev *Evaluation) (decision.Result, error) {
	if f.ExistingFile {
		return decision.Result{}, decision.ErrNotApplicable
	}
	item := ev.Item
	if item.AnyReleaseOk {
		return decision.Accept(), nil
	}
	if !item.Monitored {
		return decision.Reject("Item is not monitored"), nil
	}
	for _, u := range f.Units {
		if !u.Monitored {
			return decision.Rejectf("Unit %d is not monitored", u.Number), nil
		}
	}
	return decision.Accept(), nil
}

func percent(distance float64) string {
	return strconv.FormatFloat((1-distance)*100, 'f', 1, 64) + "%"
}

func closeMatch(f *models.LocalFile, ev *Evaluation) (decision.Result, error) {
	if len(f.Units) == 0 {
		return decision.Reject("Unable to match file to a unit"), nil
	}
	if f.ExistingFile {
		return decision.Accept(), nil
	}

	if rel := f.Release; rel != nil && rel.Distance > ev.Settings.ReleaseThreshold {
		return decision.Rejectf("Release match is not close enough: %s vs %s [%s]",
			percent(rel.Distance), percent(ev.Settings.ReleaseThreshold), strings.Join(rel.Reasons, ", ")), nil
	}
	if d := f.Distance.Normalized(); d > ev.Settings.UnitThreshold {
		return decision.Rejectf("File match is not close enough: %s vs %s [%s]",
			percent(d), percent(ev.Settings.UnitThreshold), strings.Join(f.Distance.Reasons(), ", ")), nil
	}
	return decision.Accept(), nil
}

func missingUnits(f *models.LocalFile, _ *Evaluation) (decision.Result, error) {
	if f.ExistingFile || f.Release == nil || len(f.Release.MissingUnits) == 0 {
		return decision.Accept(), nil
	}
	numbers := make([]string, 0, len(f.Release.MissingUnits))
	for _, u := range f.Release.MissingUnits {
		numbers = append(numbers, strconv.Itoa(u.Number))
	}
	return decision.Rejectf("Has missing units: %s", strings.Join(numbers, ", ")), nil
}

func unmatchedFiles(f *models.LocalFile, _ *Evaluation) (decision.Result, error) {
	if f.ExistingFile || f.Release == nil || len(f.Release.UnmatchedFiles) == 0 {
		return decision.Accept(), nil
	}
	return decision.Rejectf("Has unmatched files: %s", strings.Join(f.Release.UnmatchedFiles, ", ")), nil
}

func sameFile(f *models.LocalFile, ev *Evaluation) (decision.Result, error) {
	if f.ExistingFile {
		return decision.Result{}, decision.ErrNotApplicable
	}
	existing := ev.Item.FilesForUnits(f.Units)
	if len(existing) != 1 {
		return decision.Accept(), nil
	}
	if existing[0].Size == f.Size {
		return decision.Reject("Has the same filesize as existing file"), nil
	}
	return decision.Accept(), nil
}

func upgrade(f *models.LocalFile, ev *Evaluation) (decision.Result, error) {
	profile := ev.Item.Profile
	if profile == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	up := models.UpgradableSpecification{Profile: profile, CompareLanguage: true}
	for _, existing := range ev.Item.FilesForUnits(f.Units) {
		if f.ExistingFile && pathcmp.NormalizePath(existing.Path) == pathcmp.NormalizePath(f.Path) {
			continue
		}
		if !up.IsUpgradable(existing.Quality, existing.Language, f.Quality, f.Language) {
			return decision.Rejectf("Not an upgrade for existing file: %s", existing.Quality).ForProfile(profile.ID), nil
		}
	}
	return decision.Accept(), nil
}

func freeSpace(f *models.LocalFile, ev *Evaluation) (decision.Result, error) {
	if ev.Settings.SkipFreeSpaceCheck {
		log.Debug().Msg("[IMPORT] Skipping free space check")
		return decision.Accept(), nil
	}
	if f.ExistingFile || ev.Disk == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}

	root := ev.Item.RootFolder
	if root == "" {
		root = filepath.Dir(ev.Item.Path)
	}
	available, known, err := ev.Disk.AvailableSpace(root)
	if err != nil {
		log.Warn().Err(err).Str("path", root).Msg("[IMPORT] Unable to check free space, skipping")
		return decision.Accept(), nil
	}
	if !known {
		log.Debug().Str("path", root).Msg("[IMPORT] Free space unknown, skipping")
		return decision.Accept(), nil
	}

	required := f.Size + ev.Settings.MinimumFreeSpace
	if available < required {
		return decision.Rejectf("Not enough free space: %s available, %s required",
			humanize.IBytes(uint64(max(available, 0))), humanize.IBytes(uint64(max(required, 0)))), nil
	}
	return decision.Accept(), nil
}

func notUnpacking(f *models.LocalFile, ev *Evaluation) (decision.Result, error) {
	if f.ExistingFile {
		return decision.Result{}, decision.ErrNotApplicable
	}
	if !pathcmp.DirHasPrefix(f.Path, ev.Settings.WorkingFolders) {
		return decision.Accept(), nil
	}
	if !ev.Settings.CheckLastWrite {
		return decision.Reject("File is still being unpacked"), nil
	}
	if ev.Disk == nil {
		return decision.Result{}, decision.ErrNotApplicable
	}
	written, err := ev.Disk.LastWriteTime(f.Path)
	if err != nil {
		return decision.Result{}, fmt.Errorf("last write time: %w", err)
	}
	if ev.Now.Sub(written) < ev.Settings.UnpackingWindow {
		return decision.Reject("File is still being unpacked"), nil
	}
	return decision.Accept(), nil
}
