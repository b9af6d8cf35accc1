// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLogSettingsInTOMLUpdatesCommentedKeysInPlace(t *testing.T) {
	content := `# config.toml - Auto-generated on first run

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/curator.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"

[releases]
#workers = 4
`
	updated := updateLogSettingsInTOML(content, "DEBUG", "/config/curator.log", 50, 3)

	if strings.Contains(updated, "# Log settings") {
		t.Fatalf("unexpected appended log settings section:\n%s", updated)
	}

	releasesIndex := strings.Index(updated, "[releases]")
	if releasesIndex == -1 {
		t.Fatalf("missing releases section:\n%s", updated)
	}

	lastLogPath := strings.LastIndex(updated, "logPath")
	if lastLogPath == -1 {
		t.Fatalf("missing logPath setting:\n%s", updated)
	}
	if lastLogPath > releasesIndex {
		t.Fatalf("logPath appended after releases section:\n%s", updated)
	}

	if !strings.Contains(updated, `logPath = "/config/curator.log"`) {
		t.Fatalf("logPath not updated in place:\n%s", updated)
	}
	if !strings.Contains(updated, "logMaxSize = 50") {
		t.Fatalf("logMaxSize not updated in place:\n%s", updated)
	}
	if !strings.Contains(updated, "logMaxBackups = 3") {
		t.Fatalf("logMaxBackups not updated in place:\n%s", updated)
	}
	if !strings.Contains(updated, `logLevel = "DEBUG"`) {
		t.Fatalf("logLevel not updated in place:\n%s", updated)
	}
}

func TestUpdateLogSettingsInTOMLAddsMissingKeysBeforeTables(t *testing.T) {
	content := `logLevel = "INFO"

[import]
mode = "copy"
`
	updated := updateLogSettingsInTOML(content, "WARN", "", 10, 1)

	block := strings.Index(updated, "# Log settings")
	table := strings.Index(updated, "[import]")
	require.NotEqual(t, -1, block)
	assert.Less(t, block, table)
	assert.Contains(t, updated, `logLevel = "WARN"`)
	assert.Contains(t, updated, `logPath = ""`)
	assert.Contains(t, updated, "logMaxSize = 10")
	assert.Contains(t, updated, "logMaxBackups = 1")
	assert.Equal(t, 1, strings.Count(updated, "logLevel"))
}

func TestUpdateLogSettingsPersists(t *testing.T) {
	dir := t.TempDir()

	cfg, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.UpdateLogSettings("DEBUG", "log/curator.log", 20, 5))
	require.NoError(t, cfg.reload())

	c := cfg.Current()
	assert.Equal(t, "DEBUG", c.LogLevel)
	assert.Equal(t, "log/curator.log", c.LogPath)
	assert.Equal(t, 20, c.LogMaxSize)
	assert.Equal(t, 5, c.LogMaxBackups)
	assert.DirExists(t, filepath.Join(dir, "log"), "reloading applies the new log file")
	require.NoError(t, cfg.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[releases]", "the rest of the file is kept")
}
