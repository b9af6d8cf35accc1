// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

var mediaExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".m4v": {}, ".avi": {}, ".ts": {}, ".wmv": {},
	".flac": {}, ".mp3": {}, ".m4a": {}, ".m4b": {}, ".ogg": {}, ".opus": {}, ".wav": {},
	".epub": {}, ".mobi": {}, ".azw3": {}, ".pdf": {}, ".cbz": {}, ".cbr": {},
}

// ScannedFile is a media file found on disk.
type ScannedFile struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// IsMediaFile reports whether path has a recognized media extension.
func IsMediaFile(path string) bool {
	_, ok := mediaExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Scan returns the media files at root, which may be a single file or a
// folder. Hidden folders and sample files are skipped. Results are sorted by path.
func Scan(root string) ([]ScannedFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !IsMediaFile(root) {
			return nil, nil
		}
		return []ScannedFile{{Path: root, Size: info.Size(), ModTime: info.ModTime()}}, nil
	}

	var files []ScannedFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMediaFile(name) || isSample(name) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, ScannedFile{Path: path, Size: fi.Size(), ModTime: fi.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(files, func(a, b ScannedFile) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

func isSample(name string) bool {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	return stem == "sample" || strings.HasSuffix(stem, "-sample") || strings.HasSuffix(stem, ".sample")
}
