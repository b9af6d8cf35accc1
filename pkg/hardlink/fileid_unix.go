// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !windows

package hardlink

import (
	"golang.org/x/sys/unix"
)

// FileID is the (device, inode) pair of a file. It is comparable.
type FileID struct {
	Dev uint64
	Ino uint64
}

func (f FileID) IsZero() bool {
	return f.Dev == 0 && f.Ino == 0
}

func identify(path string) (FileID, uint64, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return FileID{}, 0, err
	}
	return FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, uint64(st.Nlink), nil //nolint:gosec,unconvert // field widths differ per platform
}
