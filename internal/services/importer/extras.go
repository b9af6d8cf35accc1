// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/autobrr/curator/internal/models"
)

// SiblingExtras copies files named after the imported file, such as
// "Movie.en.srt" next to "Movie.mkv", into the library folder.
type SiblingExtras struct{}

func (SiblingExtras) ImportExtras(ctx context.Context, file *models.LocalFile, imported models.MediaFile, extensions []string) ([]string, error) {
	if len(extensions) == 0 || imported.Path == "" {
		return nil, nil
	}

	dir := filepath.Dir(file.Path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read source folder")
	}

	stem := strings.TrimSuffix(filepath.Base(file.Path), filepath.Ext(file.Path))
	newStem := strings.TrimSuffix(filepath.Base(imported.Path), filepath.Ext(imported.Path))
	destDir := filepath.Dir(imported.Path)

	var copied []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(extensions, ext) || len(name) < len(stem) || !strings.EqualFold(name[:len(stem)], stem) {
			continue
		}
		suffix := name[len(stem):]
		dest := filepath.Join(destDir, newStem+suffix)
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		if err := copyFile(filepath.Join(dir, name), dest); err != nil {
			return copied, errors.Wrapf(err, "copy extra %s", name)
		}
		copied = append(copied, dest)
	}
	return copied, nil
}
