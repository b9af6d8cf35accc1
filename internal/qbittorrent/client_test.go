// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/curator/internal/models"
)

type fakeAPI struct {
	mu          sync.Mutex
	loginErrs   []error
	logins      int
	version     string
	versionErr  error
	torrents    []qbt.Torrent
	torrentsErr error
	lastFilter  qbt.TorrentFilterOptions
}

func (f *fakeAPI) LoginCtx(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if len(f.loginErrs) == 0 {
		return nil
	}
	err := f.loginErrs[0]
	f.loginErrs = f.loginErrs[1:]
	return err
}

func (f *fakeAPI) GetWebAPIVersionCtx(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, f.versionErr
}

func (f *fakeAPI) GetTorrentsCtx(_ context.Context, o qbt.TorrentFilterOptions) ([]qbt.Torrent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = o
	return f.torrents, f.torrentsErr
}

func TestNewClient_RetriesLogin(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{loginErrs: []error{errors.New("connection refused")}, version: "2.11.4"}
	c, err := newClient(context.Background(), api, Config{Name: "seedbox"})
	require.NoError(t, err)

	assert.Equal(t, 2, api.logins)
	assert.Equal(t, "seedbox", c.Name())
	assert.True(t, c.IsHealthy())
	assert.True(t, c.SupportsContentPath())
}

func TestNewClient_GivesUp(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bad := errors.New("forbidden")
	api := &fakeAPI{loginErrs: []error{bad, bad, bad}}
	_, err := newClient(ctx, api, Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, bad)
	assert.Contains(t, err.Error(), "qbittorrent")
}

func TestNewClient_RequiresHost(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    bool
	}{
		{"2.11.4", true},
		{"2.6.1", true},
		{"2.6.0", false},
		{"", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		c := &Client{}
		c.applyCapabilities(tt.version)
		assert.Equal(t, tt.want, c.SupportsContentPath(), tt.version)
	}
}

func TestHealthCheck_RelogsIn(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{version: "2.8.0"}
	c, err := newClient(context.Background(), api, Config{})
	require.NoError(t, err)

	api.versionErr = errors.New("403")
	api.loginErrs = []error{errors.New("banned")}
	require.Error(t, c.HealthCheck(context.Background()))
	assert.False(t, c.IsHealthy())

	api.versionErr = nil
	api.version = "2.11.4"
	require.NoError(t, c.HealthCheck(context.Background()))
	assert.True(t, c.IsHealthy())
	assert.Equal(t, "2.11.4", c.GetWebAPIVersion())
}

func TestItems(t *testing.T) {
	t.Parallel()

	added := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		version: "2.11.4",
		torrents: []qbt.Torrent{
			{Hash: "a", Name: "Stalled.Release", State: qbt.TorrentStateStalledDl, AddedOn: added.Unix(), Size: 100, AmountLeft: 60, SavePath: "/downloads", ContentPath: "/downloads/Stalled.Release"},
			{Hash: "b", Name: "Done.Release", State: qbt.TorrentStatePausedUp, AddedOn: added.Unix(), LastActivity: added.Add(time.Hour).Unix(), SavePath: "/downloads"},
			{Hash: "c", Name: "Seeding.Release", State: qbt.TorrentStateUploading, SavePath: "/downloads"},
			{Hash: "d", Name: "Broken.Release", State: qbt.TorrentStateMissingFiles, SavePath: "/downloads"},
			{Hash: "e", Name: "Waiting.Release", State: qbt.TorrentStateQueuedDl, SavePath: "/downloads"},
			{Hash: "f", Name: "Stopped.Release", State: qbt.TorrentStateStoppedDl, SavePath: "/downloads"},
		},
	}
	c, err := newClient(context.Background(), api, Config{Name: "qbt", Category: "curator"})
	require.NoError(t, err)

	items, err := c.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 6)
	assert.Equal(t, "curator", api.lastFilter.Category)

	stalled := items[0]
	assert.Equal(t, models.DownloadDownloading, stalled.Status)
	assert.Equal(t, "stalledDL", stalled.RawState)
	assert.Equal(t, added, stalled.AddedAt)
	assert.True(t, stalled.LastActivityAt.IsZero())
	assert.Equal(t, "/downloads/Stalled.Release", stalled.OutputPath)
	assert.InDelta(t, 0.4, stalled.Progress(), 1e-9)
	assert.Equal(t, models.ProtocolTorrent, stalled.Protocol)
	assert.Equal(t, "qbt", stalled.Client)

	done := items[1]
	assert.Equal(t, models.DownloadCompleted, done.Status)
	assert.True(t, done.CanMoveFiles)
	assert.Equal(t, "/downloads/Done.Release", done.OutputPath, "falls back to save path and name")

	assert.Equal(t, models.DownloadCompleted, items[2].Status)
	assert.False(t, items[2].CanMoveFiles, "still seeding")
	assert.Equal(t, models.DownloadWarning, items[3].Status)
	assert.NotEmpty(t, items[3].Message)
	assert.Equal(t, models.DownloadQueued, items[4].Status)
	assert.Equal(t, models.DownloadPaused, items[5].Status)
}

func TestItems_ErrorMarksUnhealthy(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	c, err := newClient(context.Background(), api, Config{})
	require.NoError(t, err)

	api.torrentsErr = errors.New("timeout")
	_, err = c.Items(context.Background())
	require.Error(t, err)
	assert.False(t, c.IsHealthy())
}

type staticLister struct {
	name  string
	items []models.DownloadClientItem
	err   error
}

func (s staticLister) Name() string { return s.name }

func (s staticLister) Items(context.Context) ([]models.DownloadClientItem, error) {
	return s.items, s.err
}

func TestPool(t *testing.T) {
	t.Parallel()

	up := staticLister{name: "up", items: []models.DownloadClientItem{{DownloadID: "a"}, {DownloadID: "b"}}}
	down := staticLister{name: "down", err: errors.New("refused")}

	p := &Pool{clients: []itemLister{up, down}}
	items, err := p.Items(context.Background())
	require.NoError(t, err, "one reachable client is enough")
	assert.Len(t, items, 2)

	p = &Pool{clients: []itemLister{down}}
	_, err = p.Items(context.Background())
	assert.ErrorIs(t, err, ErrNoHealthyClients)

	items, err = NewPool().Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}
