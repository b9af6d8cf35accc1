// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package stalled

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/curator/internal/events"
	"github.com/autobrr/curator/internal/models"
)

// DownloadClient lists the downloads currently known to a client.
type DownloadClient interface {
	Items(ctx context.Context) ([]models.DownloadClientItem, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

const DefaultPollInterval = time.Minute

// Poller periodically evaluates every download against the stalled policy.
type Poller struct {
	client   DownloadClient
	tracker  *Tracker
	sink     events.Sink
	clock    Clock
	settings func() Config
	interval time.Duration
	logger   zerolog.Logger
}

type Option func(*Poller)

func WithClock(c Clock) Option { return func(p *Poller) { p.clock = c } }

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithSink(s events.Sink) Option { return func(p *Poller) { p.sink = s } }

// NewPoller builds a Poller. settings is read on every tick so config
// reloads apply without a restart.
func NewPoller(client DownloadClient, tracker *Tracker, settings func() Config, opts ...Option) *Poller {
	if settings == nil {
		settings = DefaultConfig
	}
	p := &Poller{
		client:   client,
		tracker:  tracker,
		sink:     events.Discard{},
		clock:    ClockFunc(time.Now),
		settings: settings,
		interval: DefaultPollInterval,
		logger:   log.With().Str("component", "stalled").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start polls once and then on every interval until ctx is done.
func (p *Poller) Start(ctx context.Context) {
	if p == nil {
		return
	}
	go func() {
		p.tick(ctx)
		p.loop(ctx)
	}()
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
		p.logger.Warn().Err(err).Msg("[STALLED] Poll failed")
	}
}

// Poll runs a single evaluation pass and publishes an event for every
// download that became stalled or failed, or stopped being stalled.
func (p *Poller) Poll(ctx context.Context) error {
	items, err := p.client.Items(ctx)
	if err != nil {
		return fmt.Errorf("list downloads: %w", err)
	}

	cfg := p.settings()
	now := p.clock.Now()
	for i := range items {
		items[i] = Apply(items[i], cfg, now)
	}

	for _, t := range p.tracker.Update(items) {
		p.publish(t, now)
	}
	return nil
}

func (p *Poller) publish(t Transition, now time.Time) {
	item := t.Current
	var typ events.EventType
	switch {
	case isStalled(item) && item.Status == models.DownloadFailed:
		typ = events.EventDownloadFailed
	case isStalled(item):
		typ = events.EventDownloadStalled
	case isStalled(t.Previous):
		typ = events.EventDownloadResumed
	default:
		return
	}

	p.logger.Info().
		Str("downloadID", item.DownloadID).
		Str("title", item.Title).
		Str("from", string(t.Previous.Status)).
		Str("to", string(item.Status)).
		Msg("[STALLED] Download status changed")

	p.sink.Publish(events.Event{
		Type:     typ,
		Time:     now,
		Download: &item,
		Message:  item.Message,
	})
}
