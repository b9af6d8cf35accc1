// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the TOML configuration file, applies CURATOR__
// environment overrides and keeps the running settings current when the
// file changes.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/curator/internal/buildinfo"
	"github.com/autobrr/curator/internal/domain"
	"github.com/autobrr/curator/internal/services/importer"
	"github.com/autobrr/curator/internal/services/releases"
	"github.com/autobrr/curator/internal/services/stalled"
	"github.com/autobrr/curator/internal/services/watchfolder"
)

const (
	envPrefix           = "CURATOR"
	defaultConfigName   = "config.toml"
	defaultDatabaseName = "curator.db"
)

// AppConfig owns the loaded configuration.
type AppConfig struct {
	// Config is the configuration loaded at startup. Use Current to observe
	// reloads.
	Config *domain.Config

	viper      *viper.Viper
	configPath string
	current    atomic.Pointer[domain.Config]

	mu        sync.Mutex
	listeners []func(*domain.Config)
	rotator   *lumberjack.Logger
}

// New loads the configuration at configDirOrPath, which may name the file or
// the directory holding config.toml. An empty value uses the default config
// directory. A commented default file is written when none exists.
func New(configDirOrPath string) (*AppConfig, error) {
	path, err := resolveConfigPath(configDirOrPath)
	if err != nil {
		return nil, err
	}

	if err := ensureConfigFile(path); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, errors.Wrap(err, "bind environment")
	}

	c := &AppConfig{viper: v, configPath: path}
	cfg, err := c.load()
	if err != nil {
		return nil, err
	}
	c.Config = cfg
	c.current.Store(cfg)
	return c, nil
}

// Current returns the latest valid configuration.
func (c *AppConfig) Current() *domain.Config {
	return c.current.Load()
}

// Path returns the configuration file in use.
func (c *AppConfig) Path() string {
	return c.configPath
}

// GetDatabasePath returns the configured database file, or curator.db in the
// data directory. Relative paths are resolved against the config directory.
func (c *AppConfig) GetDatabasePath() string {
	cfg := c.Current()
	if cfg.DatabasePath != "" {
		return c.resolvePath(cfg.DatabasePath)
	}
	return filepath.Join(c.dataDir(), defaultDatabaseName)
}

func (c *AppConfig) dataDir() string {
	if dir := c.Current().DataDir; dir != "" {
		return c.resolvePath(dir)
	}
	return filepath.Dir(c.configPath)
}

func (c *AppConfig) resolvePath(p string) string {
	p = os.ExpandEnv(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(c.configPath), p)
}

func (c *AppConfig) load() (*domain.Config, error) {
	if err := c.viper.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", c.configPath)
	}

	var cfg domain.Config
	if err := c.viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Version = buildinfo.Version

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", c.configPath)
	}
	return &cfg, nil
}

// OnChange registers fn to receive every configuration accepted by a reload.
func (c *AppConfig) OnChange(fn func(*domain.Config)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Watch reloads the configuration whenever the file changes. Invalid edits
// are logged and the previous settings stay in effect.
func (c *AppConfig) Watch() {
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Debug().Str("file", e.Name).Str("op", e.Op.String()).Msg("config: file changed")
		_ = c.reload()
	})
	c.viper.WatchConfig()
}

func (c *AppConfig) reload() error {
	cfg, err := c.load()
	if err != nil {
		log.Error().Err(err).Msg("config: reload rejected, keeping previous settings")
		return err
	}

	prev := c.current.Swap(cfg)

	if logSettingsChanged(prev, cfg) {
		if err := c.SetupLogger(); err != nil {
			log.Error().Err(err).Msg("config: could not apply log settings")
		}
	}

	c.mu.Lock()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}

	log.Info().Str("file", c.configPath).Msg("config: reloaded")
	return nil
}

func logSettingsChanged(a, b *domain.Config) bool {
	return a == nil ||
		a.LogLevel != b.LogLevel ||
		a.LogPath != b.LogPath ||
		a.LogMaxSize != b.LogMaxSize ||
		a.LogMaxBackups != b.LogMaxBackups
}

func resolveConfigPath(configDirOrPath string) (string, error) {
	p := configDirOrPath
	if p == "" {
		p = getDefaultConfigDir()
	}
	if strings.EqualFold(filepath.Ext(p), ".toml") {
		return filepath.Abs(p)
	}
	return filepath.Abs(filepath.Join(p, defaultConfigName))
}

// getDefaultConfigDir follows XDG_CONFIG_HOME. The container image mounts its
// config volume at /config, which is used as is.
func getDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if filepath.Clean(xdg) == "/config" {
			return "/config"
		}
		return filepath.Join(xdg, "curator")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "curator")
	}
	return "."
}

func ensureConfigFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat config %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	if err := renameio.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return errors.Wrap(err, "write default config")
	}
	log.Info().Str("file", path).Msg("config: wrote default configuration")
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "INFO")
	v.SetDefault("logMaxSize", 50)
	v.SetDefault("logMaxBackups", 3)
	v.SetDefault("metricsHost", "127.0.0.1")
	v.SetDefault("metricsPort", 9074)

	rd := releases.DefaultSettings()
	v.SetDefault("releases.sizePreference", string(rd.SizePreference))
	v.SetDefault("releases.recentGrabWindow", rd.RecentGrabWindow)
	v.SetDefault("releases.workers", rd.Workers)

	id := importer.DefaultSettings()
	v.SetDefault("import.mode", string(id.Mode))
	v.SetDefault("import.minimumFreeSpaceMb", id.MinimumFreeSpace/(1024*1024))
	v.SetDefault("import.workingFolders", id.WorkingFolders)
	v.SetDefault("import.extraExtensions", id.ExtraExtensions)
	v.SetDefault("import.importExtras", true)

	sd := stalled.DefaultConfig()
	v.SetDefault("stalled.enabled", sd.Enabled)
	v.SetDefault("stalled.stalledThresholdMinutes", sd.StalledThresholdMinutes)
	v.SetDefault("stalled.inactivityThresholdMinutes", sd.InactivityThresholdMinutes)
	v.SetDefault("stalled.pollInterval", stalled.DefaultPollInterval)

	v.SetDefault("watch.debounce", watchfolder.DefaultDebounce)
	v.SetDefault("watch.scanOnStart", true)
}

// bindEnv binds every scalar config key to CURATOR__<KEY>, with nested keys
// joined by a double underscore: import.mode is CURATOR__IMPORT__MODE.
func bindEnv(v *viper.Viper) error {
	for _, key := range configKeys(reflect.TypeFor[domain.Config](), "") {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return err
		}
	}
	return nil
}

func configKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + tag
		switch {
		case f.Type.Kind() == reflect.Struct:
			keys = append(keys, configKeys(f.Type, key+".")...)
		case f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() == reflect.Struct:
			// tables of clients are file-only
		default:
			keys = append(keys, key)
		}
	}
	return keys
}

func envName(key string) string {
	parts := strings.Split(key, ".")
	for i, part := range parts {
		parts[i] = screamingSnake(part)
	}
	return envPrefix + "__" + strings.Join(parts, "__")
}

func screamingSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
