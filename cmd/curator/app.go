// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/config"
	"github.com/autobrr/curator/internal/database"
	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/events"
	"github.com/autobrr/curator/internal/models"
	"github.com/autobrr/curator/internal/services/importer"
	"github.com/autobrr/curator/internal/services/library"
	"github.com/autobrr/curator/internal/services/parsing"
	"github.com/autobrr/curator/internal/services/releases"
	"github.com/autobrr/curator/internal/services/stalled"
	pkgreleases "github.com/autobrr/curator/pkg/releases"
)

const delayProfileLoadTimeout = 5 * time.Second

// app holds the stores and services shared by every command.
type app struct {
	cfg *config.AppConfig
	db  *database.DB

	items    *models.MediaItemStore
	history  *models.HistoryStore
	files    *models.MediaFileStore
	delays   *models.DelayProfileStore
	profiles *models.QualityProfileStore

	bus      *events.Bus
	tracker  *stalled.Tracker
	parser   *parsing.Parser
	library  *library.Library
	releases *releases.Service
	importer *importer.Service
}

// newApp opens the database and wires the decision services around tracker,
// the download snapshot the library reads. observer may be nil.
func newApp(cfg *config.AppConfig, tracker *stalled.Tracker, observer decision.Observer) (*app, error) {
	db, err := database.New(cfg.GetDatabasePath())
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if observer == nil {
		observer = decision.NopObserver{}
	}

	a := &app{
		cfg:      cfg,
		db:       db,
		items:    models.NewMediaItemStore(db),
		history:  models.NewHistoryStore(db),
		files:    models.NewMediaFileStore(db),
		delays:   models.NewDelayProfileStore(db),
		profiles: models.NewQualityProfileStore(db),
		bus:      events.NewBus(),
		tracker:  tracker,
		parser:   parsing.NewParser(pkgreleases.NewDefaultParser()),
	}
	a.library = library.New(a.items, a.history, a.tracker)

	a.releases = releases.NewService(a.parser, a.library, a.library,
		releases.WithSettings(a.releaseSettings),
		releases.WithObserver(observer),
	)
	a.importer = importer.NewService(a.parser, importer.OSDisk{}, importer.LibraryPlacer{}, a.history, a.files,
		importer.WithSettings(func() importer.Settings { return config.ImportSettings(cfg.Current()) }),
		importer.WithExtras(importer.SiblingExtras{}),
		importer.WithSink(a.bus),
		importer.WithObserver(observer),
	)

	a.bus.Subscribe(logEvent)
	return a, nil
}

// releaseSettings is read once per batch so config reloads and delay profile
// edits apply to the next batch.
func (a *app) releaseSettings() releases.Settings {
	ctx, cancel := context.WithTimeout(context.Background(), delayProfileLoadTimeout)
	defer cancel()

	delays, err := a.delays.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load delay profiles, deciding without them")
	}
	return config.ReleaseSettings(a.cfg.Current(), delays)
}

func (a *app) Close() error {
	err := a.db.Close()
	if cerr := a.cfg.Close(); err == nil {
		err = cerr
	}
	return err
}
