// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package qbittorrent turns qBittorrent torrents into download snapshots.
package qbittorrent

import (
	"context"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// content_path was added to the torrent list in WebAPI 2.6.1.
var contentPathVersion = semver.MustParse("2.6.1")

// torrentAPI is the part of the go-qbittorrent client used here.
type torrentAPI interface {
	LoginCtx(ctx context.Context) error
	GetWebAPIVersionCtx(ctx context.Context) (string, error)
	GetTorrentsCtx(ctx context.Context, o qbt.TorrentFilterOptions) ([]qbt.Torrent, error)
}

// Config describes one qBittorrent instance.
type Config struct {
	Name          string `json:"name"`
	Host          string `json:"host"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	BasicUsername string `json:"basicUsername,omitempty"`
	BasicPassword string `json:"basicPassword,omitempty"`
	// Category limits the snapshot to torrents added by curator.
	Category string `json:"category,omitempty"`
	// TimeoutSeconds bounds every API request.
	TimeoutSeconds int `json:"timeoutSeconds"`
}

type Client struct {
	api      torrentAPI
	name     string
	category string

	mu                  sync.RWMutex
	webAPIVersion       string
	supportsContentPath bool
	lastHealthCheck     time.Time
	isHealthy           bool
}

// filteredWriter drops the "Unsolicited response received on idle HTTP
// channel" lines the HTTP client logs when qBittorrent sends trailing data.
type filteredWriter struct {
	writer io.Writer
}

func (fw *filteredWriter) Write(p []byte) (n int, err error) {
	if strings.Contains(string(p), "Unsolicited response received on idle HTTP channel") {
		return len(p), nil
	}
	return fw.writer.Write(p)
}

func init() {
	stdlog.SetOutput(&filteredWriter{writer: os.Stderr})
}

// NewClient logs in to the instance, retrying transient failures.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("qbittorrent host is required")
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	api := qbt.NewClient(qbt.Config{
		Host:      cfg.Host,
		Username:  cfg.Username,
		Password:  cfg.Password,
		BasicUser: cfg.BasicUsername,
		BasicPass: cfg.BasicPassword,
		Timeout:   timeout,
	})
	return newClient(ctx, api, cfg)
}

func newClient(ctx context.Context, api torrentAPI, cfg Config) (*Client, error) {
	name := cfg.Name
	if name == "" {
		name = "qbittorrent"
	}

	err := retry.Do(
		func() error { return api.LoginCtx(ctx) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Str("client", name).Uint("attempt", n+1).Msg("qBittorrent login failed, retrying")
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to qBittorrent instance %s", name)
	}

	c := &Client{
		api:             api,
		name:            name,
		category:        cfg.Category,
		lastHealthCheck: time.Now(),
		isHealthy:       true,
	}

	webAPIVersion, err := api.GetWebAPIVersionCtx(ctx)
	if err != nil {
		log.Debug().Err(err).Str("client", name).Msg("Unable to read qBittorrent WebAPI version")
		webAPIVersion = ""
	}
	c.applyCapabilities(webAPIVersion)

	log.Debug().
		Str("client", name).
		Str("host", cfg.Host).
		Str("webAPIVersion", webAPIVersion).
		Bool("supportsContentPath", c.SupportsContentPath()).
		Msg("qBittorrent client created successfully")

	return c, nil
}

func (c *Client) applyCapabilities(webAPIVersion string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.webAPIVersion = webAPIVersion
	c.supportsContentPath = false
	if v, err := semver.NewVersion(strings.TrimSpace(webAPIVersion)); err == nil {
		c.supportsContentPath = !v.LessThan(contentPathVersion)
	}
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isHealthy
}

func (c *Client) GetLastHealthCheck() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastHealthCheck
}

func (c *Client) SupportsContentPath() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.supportsContentPath
}

func (c *Client) GetWebAPIVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.webAPIVersion
}

// HealthCheck verifies the session, logging in again once when it expired.
func (c *Client) HealthCheck(ctx context.Context) error {
	version, err := c.api.GetWebAPIVersionCtx(ctx)
	if err != nil {
		if loginErr := c.api.LoginCtx(ctx); loginErr != nil {
			c.setHealth(false)
			return errors.Wrap(loginErr, "health check failed: login error")
		}
		if version, err = c.api.GetWebAPIVersionCtx(ctx); err != nil {
			c.setHealth(false)
			return errors.Wrap(err, "health check failed: api error")
		}
	}
	if version != c.GetWebAPIVersion() {
		c.applyCapabilities(version)
	}
	c.setHealth(true)
	return nil
}

func (c *Client) setHealth(healthy bool) {
	c.mu.Lock()
	c.isHealthy = healthy
	c.lastHealthCheck = time.Now()
	c.mu.Unlock()
}
