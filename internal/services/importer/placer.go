// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/pkg/fsutil"
	"github.com/autobrr/curator/pkg/hardlink"
	"github.com/autobrr/curator/pkg/pathcmp"
)

// LibraryPlacer places files directly below their item's folder.
type LibraryPlacer struct{}

// Place moves or copies file into its item folder. Library files sharing a
// unit with the new file are replaced and returned.
func (LibraryPlacer) Place(ctx context.Context, file *models.LocalFile, record *models.MediaFile, copyOnly bool) ([]models.MediaFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item := file.Item

	if item.RootFolder != "" {
		if _, err := os.Stat(item.RootFolder); errors.Is(err, os.ErrNotExist) {
			return nil, &RootFolderNotFoundError{RootFolder: item.RootFolder}
		}
	}
	if err := os.MkdirAll(item.Path, 0o755); err != nil {
		return nil, errors.Wrap(err, "create item folder")
	}

	name := filepath.Base(file.Path)
	dest := filepath.Join(item.Path, name)
	replaced := item.FilesForUnits(file.Units)
	replacesDest := slices.ContainsFunc(replaced, func(f models.MediaFile) bool {
		return samePath(f.Path, dest)
	})

	inPlace := false
	if _, err := os.Lstat(dest); err == nil {
		// A hard link of the source already sits at the destination.
		if inPlace, _ = hardlink.SameFile(file.Path, dest); !inPlace && !replacesDest {
			return nil, ErrDestinationAlreadyExists
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "stat destination")
	}

	if inPlace {
		if !copyOnly && !samePath(file.Path, dest) {
			if err := os.Remove(file.Path); err != nil {
				log.Warn().Err(err).Str("path", file.Path).Msg("[IMPORT] Unable to remove source link")
			}
		}
	} else if err := transfer(file.Path, dest, copyOnly); err != nil {
		return nil, err
	}

	for _, old := range replaced {
		if samePath(old.Path, dest) {
			continue
		}
		if err := os.Remove(old.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", old.Path).Msg("[IMPORT] Unable to delete replaced file")
		}
	}

	record.Path = dest
	record.RelativePath = name
	return replaced, nil
}

func samePath(a, b string) bool {
	return pathcmp.NormalizePath(a) == pathcmp.NormalizePath(b)
}

// transfer renames src to dest when both share a filesystem and moving is
// allowed. Otherwise it copies atomically and removes src unless copyOnly.
func transfer(src, dest string, copyOnly bool) error {
	if !copyOnly {
		same, err := fsutil.SameFilesystem(src, filepath.Dir(dest))
		if err == nil && same {
			err = os.Rename(src, dest)
			if err == nil {
				return nil
			}
			log.Debug().Err(err).Str("path", src).Msg("[IMPORT] Rename failed, falling back to copy")
		}
	}

	if err := copyFile(src, dest); err != nil {
		return err
	}
	if !copyOnly {
		if err := os.Remove(src); err != nil {
			log.Warn().Err(err).Str("path", src).Msg("[IMPORT] Unable to remove source after copy")
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "open source")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "stat source")
	}

	pending, err := renameio.NewPendingFile(dest, renameio.WithPermissions(info.Mode().Perm()))
	if err != nil {
		return errors.Wrap(err, "create pending file")
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			log.Debug().Err(err).Str("path", dest).Msg("[IMPORT] Cleanup pending file")
		}
	}()

	if _, err := io.Copy(pending, in); err != nil {
		return errors.Wrap(err, "copy data")
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return errors.Wrap(err, "replace destination")
	}
	return nil
}
