// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package watchfolder imports whatever lands in a set of drop folders.
package watchfolder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/internal/services/importer"
	"github.com/autobrr/curator/pkg/debounce"
	"github.com/autobrr/curator/pkg/pathcmp"
)

// ErrNoMatchingItem is returned when a dropped entry matches no library item.
var ErrNoMatchingItem = errors.New("no library item matches")

// ErrDownloadInProgress is returned for entries whose download has not finished.
var ErrDownloadInProgress = errors.New("download is still in progress")

// Importer imports one path into a known item.
type Importer interface {
	ImportPath(ctx context.Context, path string, item *models.MediaItem, dci *models.DownloadClientItem, mode importer.ImportMode) ([]importer.ImportResult, error)
}

type TitleParser interface {
	ParseReleaseTitle(title string) *models.ParsedInfo
}

// ItemResolver maps a parsed release name to a library item.
type ItemResolver interface {
	Resolve(ctx context.Context, parsed *models.ParsedInfo, criteria *models.SearchCriteria) (*models.MediaItem, []models.MediaUnit, error)
}

// Downloads lists the downloads known to the download clients.
type Downloads interface {
	Snapshot() []models.DownloadClientItem
}

type Config struct {
	Paths []string `json:"paths"`
	// Debounce is how long an entry must stay quiet before it is imported.
	Debounce    time.Duration       `json:"debounce"`
	Mode        importer.ImportMode `json:"mode"`
	ScanOnStart bool                `json:"scanOnStart"`
}

const DefaultDebounce = 30 * time.Second

type Service struct {
	cfg       Config
	importer  Importer
	parser    TitleParser
	resolver  ItemResolver
	downloads Downloads
	debouncer *debounce.Keyed[string]
	logger    zerolog.Logger
}

// New builds a watch folder service. downloads may be nil.
func New(cfg Config, imp Importer, parser TitleParser, resolver ItemResolver, downloads Downloads) *Service {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Mode == "" {
		cfg.Mode = importer.ModeAuto
	}
	return &Service{
		cfg:       cfg,
		importer:  imp,
		parser:    parser,
		resolver:  resolver,
		downloads: downloads,
		debouncer: debounce.NewKeyed[string](cfg.Debounce),
		logger:    log.With().Str("component", "watchfolder").Logger(),
	}
}

// Run watches the configured folders until ctx is done. Each top-level entry
// is imported once it has been quiet for the debounce delay.
func (s *Service) Run(ctx context.Context) error {
	if len(s.cfg.Paths) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	defer s.debouncer.Stop()

	for _, root := range s.cfg.Paths {
		if err := addRecursive(watcher, root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		s.logger.Info().Str("path", root).Msg("[WATCH] Watching folder")
		if s.cfg.ScanOnStart {
			s.scanExisting(ctx, root)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			s.handleEvent(ctx, watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			s.logger.Warn().Err(err).Msg("[WATCH] fsnotify watcher error")
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	entry, ok := s.topLevelEntry(event.Name)
	if !ok {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(watcher, event.Name); err != nil {
				s.logger.Warn().Err(err).Str("path", event.Name).Msg("[WATCH] Unable to watch new folder")
			}
		}
	}
	s.schedule(ctx, entry)
}

func (s *Service) schedule(ctx context.Context, entry string) {
	s.debouncer.Do(entry, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(entry); err != nil {
			return
		}
		if _, err := s.Process(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Str("path", entry).Msg("[WATCH] Import skipped")
		}
	})
}

func (s *Service) scanExisting(ctx context.Context, root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", root).Msg("[WATCH] Unable to list folder")
		return
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		s.schedule(ctx, filepath.Join(root, e.Name()))
	}
}

// topLevelEntry returns the direct child of a watched root containing path.
func (s *Service) topLevelEntry(path string) (string, bool) {
	for _, root := range s.cfg.Paths {
		rel, ok := pathcmp.Rel(root, path)
		if !ok || rel == "." {
			continue
		}
		first, _, _ := strings.Cut(rel, "/")
		if first == "" || strings.HasPrefix(first, ".") {
			return "", false
		}
		return filepath.Join(root, first), true
	}
	return "", false
}

// Process imports one dropped file or folder.
func (s *Service) Process(ctx context.Context, path string) ([]importer.ImportResult, error) {
	name := importer.FolderName(path)
	parsed := s.parser.ParseReleaseTitle(name)
	if parsed == nil {
		return nil, errors.Wrap(ErrNoMatchingItem, name)
	}

	item, _, err := s.resolver.Resolve(ctx, parsed, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", name)
	}
	if item == nil {
		return nil, errors.Wrap(ErrNoMatchingItem, name)
	}

	dci := s.downloadFor(path)
	if dci != nil && dci.Status != models.DownloadCompleted {
		return nil, errors.Wrap(ErrDownloadInProgress, name)
	}

	results, err := s.importer.ImportPath(ctx, path, item, dci, s.cfg.Mode)
	if err != nil {
		return nil, err
	}

	imported := 0
	for _, r := range results {
		if r.Imported() {
			imported++
		}
	}
	s.logger.Info().
		Str("path", path).
		Int("itemID", item.ID).
		Int("imported", imported).
		Int("files", len(results)).
		Msg("[WATCH] Processed dropped entry")
	return results, nil
}

func (s *Service) downloadFor(path string) *models.DownloadClientItem {
	if s.downloads == nil {
		return nil
	}
	for _, d := range s.downloads.Snapshot() {
		if d.OutputPath != "" && pathcmp.NormalizePath(d.OutputPath) == pathcmp.NormalizePath(path) {
			return &d
		}
	}
	return nil
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
