// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

var firstTable = regexp.MustCompile(`(?m)^[ \t]*\[`)

// UpdateLogSettings persists the log settings to the config file. The file
// watcher picks the change up like any other edit.
func (c *AppConfig) UpdateLogSettings(level, logPath string, maxSize, maxBackups int) error {
	content, err := os.ReadFile(c.configPath)
	if err != nil {
		return errors.Wrap(err, "read config")
	}

	updated := updateLogSettingsInTOML(string(content), level, logPath, maxSize, maxBackups)
	if err := renameio.WriteFile(c.configPath, []byte(updated), 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// updateLogSettingsInTOML rewrites the top-level log keys, uncommenting them in
// place. Keys absent from the file are added before the first table.
func updateLogSettingsInTOML(content, level, logPath string, maxSize, maxBackups int) string {
	head, tail := content, ""
	if loc := firstTable.FindStringIndex(content); loc != nil {
		head, tail = content[:loc[0]], content[loc[0]:]
	}

	settings := []struct{ key, value string }{
		{"logLevel", strconv.Quote(level)},
		{"logPath", strconv.Quote(logPath)},
		{"logMaxSize", strconv.Itoa(maxSize)},
		{"logMaxBackups", strconv.Itoa(maxBackups)},
	}

	var missing []string
	for _, s := range settings {
		line := s.key + " = " + s.value
		re := regexp.MustCompile(`(?m)^[ \t]*#?[ \t]*` + regexp.QuoteMeta(s.key) + `[ \t]*=.*$`)
		loc := re.FindStringIndex(head)
		if loc == nil {
			missing = append(missing, line)
			continue
		}
		head = head[:loc[0]] + line + head[loc[1]:]
	}

	if len(missing) > 0 {
		block := "# Log settings\n" + strings.Join(missing, "\n") + "\n"
		head = strings.TrimRight(head, "\n")
		if head != "" {
			head += "\n\n"
		}
		head += block
		if tail != "" {
			head += "\n"
		}
	}
	return head + tail
}
