// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/curator/internal/models"
)

// ErrNoHealthyClients is returned when every client failed to list its downloads.
var ErrNoHealthyClients = errors.New("no qBittorrent client could be reached")

type itemLister interface {
	Name() string
	Items(ctx context.Context) ([]models.DownloadClientItem, error)
}

// Pool merges the downloads of several instances. An unreachable instance
// is logged and skipped unless all of them fail.
type Pool struct {
	clients []itemLister
}

func NewPool(clients ...*Client) *Pool {
	p := &Pool{}
	for _, c := range clients {
		if c != nil {
			p.clients = append(p.clients, c)
		}
	}
	return p
}

func (p *Pool) Len() int {
	return len(p.clients)
}

func (p *Pool) Items(ctx context.Context) ([]models.DownloadClientItem, error) {
	if len(p.clients) == 0 {
		return nil, nil
	}

	results := make([][]models.DownloadClientItem, len(p.clients))
	errs := make([]error, len(p.clients))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range p.clients {
		g.Go(func() error {
			results[i], errs[i] = c.Items(gctx)
			return nil
		})
	}
	_ = g.Wait()

	var (
		items  []models.DownloadClientItem
		failed int
	)
	for i, err := range errs {
		if err != nil {
			failed++
			log.Warn().Err(err).Str("client", p.clients[i].Name()).Msg("Failed to fetch downloads")
			continue
		}
		items = append(items, results[i]...)
	}
	if failed == len(p.clients) {
		return nil, errors.Join(ErrNoHealthyClients, errors.Join(errs...))
	}
	return items, nil
}
