// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pathcmp compares filesystem paths reported by download clients and
// the library. Download clients report forward-slashed paths even on Windows,
// so comparisons use path semantics rather than filepath.
package pathcmp

import (
	"path"
	"strings"
)

func isDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// NormalizePath converts backslashes, cleans the path and drops trailing
// slashes. Windows drive roots keep their slash ("C:/").
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")

	if len(p) >= 2 && isDriveLetter(p[0]) && p[1] == ':' {
		drive, rest := p[:2], p[2:]
		if rest == "" {
			return drive
		}
		rest = path.Clean(rest)
		if rest == "/" || rest == "." {
			return drive + "/"
		}
		return drive + rest
	}

	return path.Clean(p)
}

// NormalizePathFold is NormalizePath for case-insensitive filesystems.
func NormalizePathFold(p string) string {
	return strings.ToLower(NormalizePath(p))
}

// IsWithin reports whether child equals parent or lies below it.
func IsWithin(parent, child string) bool {
	parent, child = NormalizePath(parent), NormalizePath(child)
	if parent == "" || child == "" {
		return false
	}
	if parent == child {
		return true
	}
	if !strings.HasSuffix(parent, "/") {
		parent += "/"
	}
	return strings.HasPrefix(child, parent)
}

// Rel returns child relative to parent, or false when child is not inside parent.
func Rel(parent, child string) (string, bool) {
	if !IsWithin(parent, child) {
		return "", false
	}
	parent, child = NormalizePath(parent), NormalizePath(child)
	if parent == child {
		return ".", true
	}
	return strings.TrimPrefix(strings.TrimPrefix(child, parent), "/"), true
}

// DirHasPrefix reports whether any directory component of p starts with one
// of prefixes, case-insensitively. The final component (the file) is ignored.
func DirHasPrefix(p string, prefixes []string) bool {
	dir := path.Dir(NormalizePath(p))
	for segment := range strings.SplitSeq(dir, "/") {
		lower := strings.ToLower(segment)
		if lower == "" {
			continue
		}
		for _, prefix := range prefixes {
			prefix = strings.ToLower(strings.TrimSpace(prefix))
			if prefix != "" && strings.HasPrefix(lower, prefix) {
				return true
			}
		}
	}
	return false
}
