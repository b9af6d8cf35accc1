// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package importer

import (
	"errors"
	"time"

	"github.com/autobrr/curator/pkg/fsutil"
)

// OSDisk is the DiskProvider backed by the local filesystem.
type OSDisk struct{}

func (OSDisk) AvailableSpace(path string) (int64, bool, error) {
	n, err := fsutil.AvailableSpace(path)
	if errors.Is(err, fsutil.ErrUnsupported) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (OSDisk) LastWriteTime(path string) (time.Time, error) {
	return fsutil.LastWriteTime(path)
}
