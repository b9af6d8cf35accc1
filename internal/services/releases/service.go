// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package releases decides which release reports may be grabbed and ranks the
// approved ones per media item.
package releases

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/models"
)

// Rejection reasons emitted before the rule pipeline runs.
const (
	ReasonUnableToParse      = "Unable to parse release"
	ReasonUnknownMedia       = "Unknown media"
	ReasonUnableToParseUnits = "Unable to parse items"
	ReasonUnexpectedError    = "Unexpected error processing release"
)

// Decision is a release decision.
type Decision = decision.Decision[*models.RemoteItem]

// TitleParser turns a release title into structured metadata.
type TitleParser interface {
	ParseReleaseTitle(title string) *models.ParsedInfo
	ParseReleaseTitleWithHints(title string, item *models.MediaItem, units []models.MediaUnit) *models.ParsedInfo
}

// Resolver links parsed metadata to a library item and its units.
// A nil item means the release is for unknown media.
type Resolver interface {
	Resolve(ctx context.Context, parsed *models.ParsedInfo, criteria *models.SearchCriteria) (*models.MediaItem, []models.MediaUnit, error)
}

// Augmenter loads the history and queue state release rules read.
type Augmenter interface {
	History(ctx context.Context, itemID int) ([]models.HistoryRecord, error)
	Queue(ctx context.Context, itemID int) ([]models.QueuedItem, error)
}

// Service turns release reports into decisions.
type Service struct {
	parser    TitleParser
	resolver  Resolver
	augmenter Augmenter
	engine    *decision.Engine[*models.RemoteItem, *Evaluation]
	settings  func() Settings
	now       func() time.Time
	observer  decision.Observer
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSettings sets the function that returns the settings snapshot taken at
// the start of every batch.
func WithSettings(fn func() Settings) Option {
	return func(s *Service) { s.settings = fn }
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver reports every decision to o.
func WithObserver(o decision.Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithEngine replaces the default rule set.
func WithEngine(e *decision.Engine[*models.RemoteItem, *Evaluation]) Option {
	return func(s *Service) { s.engine = e }
}

// NewService wires a release decision service.
func NewService(parser TitleParser, resolver Resolver, augmenter Augmenter, opts ...Option) *Service {
	s := &Service{
		parser:    parser,
		resolver:  resolver,
		augmenter: augmenter,
		settings:  DefaultSettings,
		now:       time.Now,
		observer:  decision.NopObserver{},
		logger:    log.With().Str("component", "releases").Logger(),
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

// DecideReleases evaluates every report and returns one decision per report in
// input order. Reports are evaluated concurrently; no report can fail the batch.
func (s *Service) DecideReleases(ctx context.Context, reports []models.ReleaseInfo, criteria *models.SearchCriteria) []Decision {
	settings := s.settings()
	ev := NewEvaluation(criteria, settings, s.now())
	if ev.filterErr != nil {
		s.logger.Warn().Err(ev.filterErr).Msg("[RELEASES] Release filter expression is invalid")
	}

	out := make([]Decision, len(reports))
	var g errgroup.Group
	g.SetLimit(max(settings.Workers, 1))
	for i := range reports {
		g.Go(func() error {
			out[i] = s.decideOne(ctx, reports[i], ev)
			s.observer.ObserveDecision("release", out[i].Outcome())
			return nil
		})
	}
	_ = g.Wait()

	approved := 0
	for _, d := range out {
		if d.Approved() {
			approved++
		}
	}
	s.logger.Debug().Int("reports", len(reports)).Int("approved", approved).Msg("[RELEASES] Processed release reports")
	return out
}

func (s *Service) decideOne(ctx context.Context, report models.ReleaseInfo, ev *Evaluation) (d Decision) {
	remote := &models.RemoteItem{Release: report}

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error().Interface("panic", p).Str("title", report.Title).Msg("[RELEASES] Couldn't process release")
			d = decision.New(remote, decision.NewRejection(ReasonUnexpectedError))
		}
	}()

	d, err := s.evaluate(ctx, remote, ev)
	if err != nil {
		s.logger.Error().Err(err).Str("title", report.Title).Msg("[RELEASES] Couldn't process release")
		return decision.New(remote, decision.NewRejection(ReasonUnexpectedError))
	}
	return d
}

func (s *Service) evaluate(ctx context.Context, remote *models.RemoteItem, ev *Evaluation) (Decision, error) {
	criteria := ev.Criteria
	title := remote.Release.Title

	parsed := s.parser.ParseReleaseTitle(title)
	if parsed == nil && criteria != nil && criteria.Item != nil {
		parsed = s.parser.ParseReleaseTitleWithHints(title, criteria.Item, criteria.Units)
	}
	if parsed == nil {
		s.logger.Debug().Str("title", title).Msg("[RELEASES] Unable to parse release")
		return decision.New(remote, decision.NewRejection(ReasonUnableToParse)), nil
	}
	remote.Parsed = parsed

	item, units, err := s.resolver.Resolve(ctx, parsed, criteria)
	if err != nil {
		return Decision{}, fmt.Errorf("resolve %q: %w", title, err)
	}
	if item == nil {
		return decision.New(remote, decision.NewRejection(ReasonUnknownMedia)), nil
	}
	remote.Item = item
	remote.Profile = item.Profile
	if len(units) == 0 {
		return decision.New(remote, decision.NewRejection(ReasonUnableToParseUnits)), nil
	}
	remote.Units = units
	remote.DownloadAllowed = true

	if s.augmenter != nil {
		if remote.History, err = s.augmenter.History(ctx, item.ID); err != nil {
			return Decision{}, fmt.Errorf("load history for item %d: %w", item.ID, err)
		}
		if remote.Queued, err = s.augmenter.Queue(ctx, item.ID); err != nil {
			return Decision{}, fmt.Errorf("load queue for item %d: %w", item.ID, err)
		}
	}

	return s.engine.Decide(remote, ev), nil
}
