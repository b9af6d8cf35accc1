// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hardlink identifies physical files so that two paths pointing at the
// same data can be told apart from two copies.
package hardlink

// Identify returns the physical identity of path and its hard link count.
// Symlinks are not followed.
func Identify(path string) (FileID, uint64, error) {
	return identify(path)
}

// SameFile reports whether a and b are hard links of one another.
func SameFile(a, b string) (bool, error) {
	ida, _, err := identify(a)
	if err != nil {
		return false, err
	}
	idb, _, err := identify(b)
	if err != nil {
		return false, err
	}
	return !ida.IsZero() && ida == idb, nil
}
