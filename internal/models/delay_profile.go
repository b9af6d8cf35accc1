// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"time"

	"github.com/autobrr/curator/internal/dbinterface"
)

// DelayProfileStore handles persistence for delay profiles.
type DelayProfileStore struct {
	db dbinterface.Querier
}

func NewDelayProfileStore(db dbinterface.Querier) *DelayProfileStore {
	return &DelayProfileStore{db: db}
}

// List returns every delay profile in evaluation order.
func (s *DelayProfileStore) List(ctx context.Context) (DelayProfiles, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sort_order, preferred_protocol, enable_usenet, enable_torrent,
		       usenet_delay_minutes, torrent_delay_minutes, bypass_if_highest_quality, tags
		FROM delay_profiles
		ORDER BY sort_order ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out DelayProfiles
	for rows.Next() {
		var d DelayProfile
		var protocol, tagsJSON string
		var usenetMinutes, torrentMinutes int
		if err := rows.Scan(&d.ID, &d.Order, &protocol, &d.EnableUsenet, &d.EnableTorrent,
			&usenetMinutes, &torrentMinutes, &d.BypassIfHighestQuality, &tagsJSON); err != nil {
			return nil, err
		}
		d.PreferredProtocol = ParseDownloadProtocol(protocol)
		d.UsenetDelay = time.Duration(usenetMinutes) * time.Minute
		d.TorrentDelay = time.Duration(torrentMinutes) * time.Minute
		if err := unmarshalColumn("tags", tagsJSON, &d.Tags); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create inserts a delay profile and returns its id.
func (s *DelayProfileStore) Create(ctx context.Context, d DelayProfile) (int, error) {
	tagsJSON, err := marshalColumn("tags", d.Tags)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO delay_profiles (sort_order, preferred_protocol, enable_usenet, enable_torrent,
		                            usenet_delay_minutes, torrent_delay_minutes, bypass_if_highest_quality, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.Order, string(d.PreferredProtocol), d.EnableUsenet, d.EnableTorrent,
		int(d.UsenetDelay/time.Minute), int(d.TorrentDelay/time.Minute), d.BypassIfHighestQuality, tagsJSON)
	if err != nil {
		return 0, wrapWriteError("delay profile", err)
	}
	id, err := res.LastInsertId()
	return int(id), err
}

// Delete removes a delay profile.
func (s *DelayProfileStore) Delete(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM delay_profiles WHERE id = ?`, id)
	return err
}
