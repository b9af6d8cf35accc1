// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package importer decides which scanned files may enter the library and
// commits the approved ones.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/events"
	"github.com/autobrr/curator/internal/models"
)

// Decision is a file import decision.
type Decision = decision.Decision[*models.LocalFile]

// ImportResultType is the outcome of one import.
type ImportResultType string

const (
	ResultImported ImportResultType = "imported"
	ResultRejected ImportResultType = "rejected"
	ResultSkipped  ImportResultType = "skipped"
)

// ImportResult is the outcome of one decision passed to ApplyImports.
type ImportResult struct {
	Decision Decision         `json:"decision"`
	Result   ImportResultType `json:"result"`
	Errors   []string         `json:"errors,omitempty"`
}

// Imported reports whether the file was committed.
func (r ImportResult) Imported() bool {
	return r.Result == ResultImported
}

var (
	// ErrRootFolderNotFound is returned by placers when the item's root folder is gone.
	ErrRootFolderNotFound = errors.New("root folder not found")
	// ErrDestinationAlreadyExists is returned by placers instead of overwriting
	// a file the library does not know about.
	ErrDestinationAlreadyExists = errors.New("destination already exists")
)

// RootFolderNotFoundError names the missing root folder.
type RootFolderNotFoundError struct {
	RootFolder string
}

func (e *RootFolderNotFoundError) Error() string {
	return fmt.Sprintf("root folder %s not found", e.RootFolder)
}

func (e *RootFolderNotFoundError) Is(target error) bool {
	return target == ErrRootFolderNotFound
}

// TitleParser turns a file or folder name into structured metadata.
type TitleParser interface {
	ParseReleaseTitle(title string) *models.ParsedInfo
	ParseReleaseTitleWithHints(title string, item *models.MediaItem, units []models.MediaUnit) *models.ParsedInfo
}

// DiskProvider answers filesystem questions for the file rules.
// AvailableSpace reports false when the space cannot be determined.
type DiskProvider interface {
	AvailableSpace(path string) (int64, bool, error)
	LastWriteTime(path string) (time.Time, error)
}

// FilePlacer moves or copies a file into the library. It fills in the
// record's path fields and returns the library files the placement replaced.
type FilePlacer interface {
	Place(ctx context.Context, file *models.LocalFile, record *models.MediaFile, copyOnly bool) ([]models.MediaFile, error)
}

// HistoryStore reads grabs and records imports.
type HistoryStore interface {
	FindGrabByDownloadID(ctx context.Context, downloadID string) (*models.HistoryRecord, error)
	ByUnit(ctx context.Context, unitID int) ([]models.HistoryRecord, error)
	Add(ctx context.Context, h models.HistoryRecord) (models.HistoryRecord, error)
}

// MediaFileStore persists library file records.
type MediaFileStore interface {
	Add(ctx context.Context, f models.MediaFile) (models.MediaFile, error)
	DeleteByRelativePath(ctx context.Context, itemID int, relativePath string) ([]models.MediaFile, error)
	Delete(ctx context.Context, id int) error
}

// ExtraImporter brings sibling files along with an imported file.
type ExtraImporter interface {
	ImportExtras(ctx context.Context, file *models.LocalFile, imported models.MediaFile, extensions []string) ([]string, error)
}

// Service decides and applies imports.
type Service struct {
	parser   TitleParser
	disk     DiskProvider
	placer   FilePlacer
	history  HistoryStore
	files    MediaFileStore
	extras   ExtraImporter
	sink     events.Sink
	engine   *decision.Engine[*models.LocalFile, *Evaluation]
	settings func() Settings
	now      func() time.Time
	observer decision.Observer
	logger   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSettings sets the function returning each batch's settings snapshot.
func WithSettings(fn func() Settings) Option {
	return func(s *Service) { s.settings = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithObserver(o decision.Observer) Option {
	return func(s *Service) { s.observer = o }
}

func WithSink(sink events.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithExtras(extras ExtraImporter) Option {
	return func(s *Service) { s.extras = extras }
}

// WithEngine replaces the default file rule set.
func WithEngine(e *decision.Engine[*models.LocalFile, *Evaluation]) Option {
	return func(s *Service) { s.engine = e }
}

// NewService wires an import service.
func NewService(parser TitleParser, disk DiskProvider, placer FilePlacer, history HistoryStore, files MediaFileStore, opts ...Option) *Service {
	s := &Service{
		parser:   parser,
		disk:     disk,
		placer:   placer,
		history:  history,
		files:    files,
		sink:     events.Discard{},
		settings: DefaultSettings,
		now:      time.Now,
		observer: decision.NopObserver{},
		logger:   log.With().Str("component", "importer").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = NewRegistry().Engine().WithLogger(s.logger)
	}
	return s
}

// Settings returns the current settings snapshot.
func (s *Service) Settings() Settings {
	return s.settings()
}
