// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package testdb hands tests isolated, already-migrated databases.
package testdb

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/autobrr/curator/internal/database"
)

var (
	templateOnce sync.Once
	templatePath string
	templateErr  error
)

// Open returns a fresh database cloned from a migrated template. It is closed
// when the test ends.
func Open(t testing.TB) *database.DB {
	t.Helper()

	templateOnce.Do(func() {
		templatePath, templateErr = createTemplate()
	})
	if templateErr != nil {
		t.Fatalf("prepare test DB template: %v", templateErr)
	}

	dbPath := filepath.Join(t.TempDir(), "curator.db")
	if err := copyFile(templatePath, dbPath); err != nil {
		t.Fatalf("clone test DB template to %s: %v", dbPath, err)
	}

	db, err := database.New(dbPath)
	if err != nil {
		t.Fatalf("open test DB %s: %v", dbPath, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTemplate() (string, error) {
	dir, err := os.MkdirTemp("", "curator-testdb-")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "template.db")
	db, err := database.New(path)
	if err != nil {
		return "", err
	}
	// Close checkpoints the WAL so the main file is self-contained.
	if err := db.Close(); err != nil {
		return "", fmt.Errorf("close template: %w", err)
	}
	return path, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
