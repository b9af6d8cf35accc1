// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/autobrr/curator/internal/models"
)

// ErrNothingToImport is returned when a path holds no media files.
var ErrNothingToImport = errors.New("no media files found")

// ImportPath imports a downloaded file or folder into item: it scans path,
// decides every media file and applies the decisions.
func (s *Service) ImportPath(ctx context.Context, path string, item *models.MediaItem, dci *models.DownloadClientItem, mode ImportMode) ([]ImportResult, error) {
	files, err := Scan(path)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", path)
	}
	if len(files) == 0 {
		return nil, errors.Wrap(ErrNothingToImport, path)
	}

	decisions, err := s.DecideImports(ctx, files, item, dci, DecideOptions{FolderName: FolderName(path)})
	if err != nil {
		return nil, err
	}
	return s.ApplyImports(ctx, decisions, true, dci, mode)
}

// FolderName returns the release name a path carries: the folder itself, or
// the file name without its extension for a single file.
func FolderName(path string) string {
	path = filepath.Clean(path)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Base(path)
}
