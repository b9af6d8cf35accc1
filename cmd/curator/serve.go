// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/curator/internal/buildinfo"
	"github.com/autobrr/curator/internal/config"
	"github.com/autobrr/curator/internal/database"
	"github.com/autobrr/curator/internal/decision"
	"github.com/autobrr/curator/internal/domain"
	"github.com/autobrr/curator/internal/metrics"
	"github.com/autobrr/curator/internal/qbittorrent"
	"github.com/autobrr/curator/internal/services/stalled"
	"github.com/autobrr/curator/internal/services/watchfolder"
)

const shutdownTimeout = 10 * time.Second

func RunServeCommand() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Track downloads, import watch folders and serve metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configDir)
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory or file holding config.toml")
	return cmd
}

func serve(ctx context.Context, configDir string) error {
	cfg, err := config.New(configDir)
	if err != nil {
		return err
	}
	if err := cfg.SetupLogger(); err != nil {
		return err
	}
	defer cfg.Close()

	current := cfg.Current()
	log.Info().Str("version", buildinfo.Version).Str("config", cfg.Path()).Msg("Starting curator")

	tracker := stalled.NewTracker()
	var manager *metrics.Manager
	if current.MetricsEnabled {
		manager = metrics.NewManager(tracker)
	}

	var observer decision.Observer
	if manager != nil {
		observer = manager
	}
	a, err := newApp(cfg, tracker, observer)
	if err != nil {
		return err
	}
	defer a.Close()

	if manager != nil {
		a.bus.Subscribe(manager.HandleEvent)
		if err := manager.Register(database.NewMetricsCollector(a.db)); err != nil {
			log.Warn().Err(err).Msg("could not register database metrics")
		}
	}

	cfg.OnChange(func(c *domain.Config) {
		log.Debug().Interface("config", c.Redacted()).Msg("settings reloaded")
	})
	cfg.Watch()

	g, ctx := errgroup.WithContext(ctx)

	if pool := connectClients(ctx, current); pool.Len() > 0 {
		poller := stalled.NewPoller(pool, tracker,
			func() stalled.Config { return config.StalledSettings(cfg.Current()) },
			stalled.WithInterval(current.Stalled.PollInterval),
			stalled.WithSink(a.bus),
		)
		poller.Start(ctx)
	} else {
		log.Warn().Msg("No download clients available, stalled download handling is off")
	}

	if len(current.Watch.Paths) > 0 {
		watcher := watchfolder.New(config.WatchSettings(current), a.importer, a.parser, a.library, tracker)
		g.Go(func() error { return watcher.Run(ctx) })
	}

	if manager != nil {
		server := metrics.NewMetricsServer(manager, current.MetricsHost, current.MetricsPort, current.MetricsBasicAuthUsers)
		g.Go(server.ListenAndServe)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return g.Wait()
}

// connectClients logs in to every configured client. Unreachable clients are
// skipped so one bad host does not stop the others.
func connectClients(ctx context.Context, cfg *domain.Config) *qbittorrent.Pool {
	var clients []*qbittorrent.Client
	for _, c := range config.DownloadClients(cfg) {
		client, err := qbittorrent.NewClient(ctx, c)
		if err != nil {
			log.Error().Err(err).Str("client", c.Name).Msg("Could not connect to download client")
			continue
		}
		clients = append(clients, client)
	}
	return qbittorrent.NewPool(clients...)
}
