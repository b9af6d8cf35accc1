// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package fsutil

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrUnsupported is returned when free space cannot be measured on this platform.
var ErrUnsupported = errors.New("free space not supported on this platform")

// AvailableSpace returns the bytes available to unprivileged users on the
// filesystem holding path. Paths that don't exist yet are resolved to their
// nearest existing ancestor, so a library folder that will be created on
// import still reports the space of its root.
func AvailableSpace(path string) (int64, error) {
	if path == "" {
		return 0, errors.New("path must not be empty")
	}
	existing, err := nearestExisting(path)
	if err != nil {
		return 0, err
	}
	return availableSpace(existing)
}

func nearestExisting(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		_, err := os.Stat(current)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		current = parent
	}
}
