// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger points the global logger at stderr and, when logPath is set, a
// rotated log file.
func (c *AppConfig) SetupLogger() error {
	cfg := c.Current()

	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rotator != nil {
		_ = c.rotator.Close()
		c.rotator = nil
	}

	if cfg.LogPath != "" {
		path := c.resolvePath(cfg.LogPath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrap(err, "create log directory")
		}
		c.rotator = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
		}
		writers = append(writers, c.rotator)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return nil
}

// Close releases the log file.
func (c *AppConfig) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rotator == nil {
		return nil
	}
	err := c.rotator.Close()
	c.rotator = nil
	return err
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
