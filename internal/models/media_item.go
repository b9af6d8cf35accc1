// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/autobrr/curator/internal/dbinterface"
)

// MediaItemStore persists items and their units. Get returns fully loaded
// items (profile, units and files) so pipelines never query lazily.
type MediaItemStore struct {
	db       dbinterface.Querier
	files    *MediaFileStore
	profiles *QualityProfileStore
}

func NewMediaItemStore(db dbinterface.Querier) *MediaItemStore {
	return &MediaItemStore{
		db:       db,
		files:    NewMediaFileStore(db),
		profiles: NewQualityProfileStore(db),
	}
}

// Validate checks required item fields.
func (m *MediaItem) Validate() error {
	if m == nil {
		return errors.New("media item is nil")
	}
	if strings.TrimSpace(m.Title) == "" {
		return errors.New("media item title is required")
	}
	if strings.TrimSpace(m.Path) == "" {
		return errors.New("media item path is required")
	}
	return nil
}

// Create inserts an item with its units and returns the stored item.
func (s *MediaItemStore) Create(ctx context.Context, m *MediaItem) (*MediaItem, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	tagsJSON, err := marshalColumn("tags", m.Tags)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO media_items (title, parent_title, year, monitored, any_release_ok, profile_id, tags, path, root_folder)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(m.Title), m.ParentTitle, m.Year, m.Monitored, m.AnyReleaseOk, nullInt(m.ProfileID), tagsJSON, m.Path, m.RootFolder)
	if err != nil {
		return nil, wrapWriteError("media item", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, u := range m.Units {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO media_units (item_id, number, title, monitored) VALUES (?, ?, ?, ?)
		`, id, u.Number, u.Title, u.Monitored); err != nil {
			return nil, wrapWriteError("media unit", err)
		}
	}
	return s.Get(ctx, int(id))
}

// Get returns a fully loaded item.
func (s *MediaItemStore) Get(ctx context.Context, id int) (*MediaItem, error) {
	var m MediaItem
	var tagsJSON string
	var parentTitle sql.NullString
	var profileID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, parent_title, year, monitored, any_release_ok, profile_id, tags, path, root_folder, created_at
		FROM media_items WHERE id = ?
	`, id).Scan(&m.ID, &m.Title, &parentTitle, &m.Year, &m.Monitored, &m.AnyReleaseOk, &profileID, &tagsJSON, &m.Path, &m.RootFolder, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("media item %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	m.ParentTitle = parentTitle.String
	m.ProfileID = int(profileID.Int64)
	if err := unmarshalColumn("tags", tagsJSON, &m.Tags); err != nil {
		return nil, err
	}
	if err := s.load(ctx, &m); err != nil {
		return nil, fmt.Errorf("media item %d: %w", id, err)
	}
	return &m, nil
}

func (s *MediaItemStore) load(ctx context.Context, m *MediaItem) error {
	if m.ProfileID != 0 {
		profile, err := s.profiles.Get(ctx, m.ProfileID)
		if err != nil {
			return err
		}
		m.Profile = profile
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_id, number, title, monitored FROM media_units WHERE item_id = ? ORDER BY number ASC, id ASC
	`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var u MediaUnit
		if err := rows.Scan(&u.ID, &u.ItemID, &u.Number, &u.Title, &u.Monitored); err != nil {
			return err
		}
		m.Units = append(m.Units, u)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	files, err := s.files.ListByItem(ctx, m.ID)
	if err != nil {
		return err
	}
	m.Files = files
	for i := range m.Units {
		for _, f := range files {
			if slices.Contains(f.UnitIDs, m.Units[i].ID) {
				m.Units[i].FileIDs = append(m.Units[i].FileIDs, f.ID)
			}
		}
	}
	return nil
}

// List returns every item, fully loaded.
func (s *MediaItemStore) List(ctx context.Context) ([]*MediaItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM media_items ORDER BY title ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items := make([]*MediaItem, 0, len(ids))
	for _, id := range ids {
		m, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

// SetMonitored toggles monitoring of an item.
func (s *MediaItemStore) SetMonitored(ctx context.Context, id int, monitored bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE media_items SET monitored = ? WHERE id = ?`, monitored, id)
	return err
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
