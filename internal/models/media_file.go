// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/autobrr/curator/internal/dbinterface"
)

// MediaFileStore persists library file records.
type MediaFileStore struct {
	db dbinterface.Querier
}

func NewMediaFileStore(db dbinterface.Querier) *MediaFileStore {
	return &MediaFileStore{db: db}
}

const mediaFileColumns = `id, item_id, unit_ids, path, relative_path, size, quality, language, release_group, scene_name, indexer_flags, date_added`

func scanMediaFile(row interface{ Scan(...any) error }) (MediaFile, error) {
	var f MediaFile
	var unitIDsJSON, qualityJSON, languageJSON string
	var releaseGroup, sceneName sql.NullString
	if err := row.Scan(&f.ID, &f.ItemID, &unitIDsJSON, &f.Path, &f.RelativePath, &f.Size,
		&qualityJSON, &languageJSON, &releaseGroup, &sceneName, &f.IndexerFlags, &f.DateAdded); err != nil {
		return MediaFile{}, err
	}
	f.ReleaseGroup = releaseGroup.String
	f.SceneName = sceneName.String
	if err := unmarshalColumn("unit_ids", unitIDsJSON, &f.UnitIDs); err != nil {
		return MediaFile{}, err
	}
	if err := unmarshalColumn("quality", qualityJSON, &f.Quality); err != nil {
		return MediaFile{}, err
	}
	if err := unmarshalColumn("language", languageJSON, &f.Language); err != nil {
		return MediaFile{}, err
	}
	return f, nil
}

func (s *MediaFileStore) query(ctx context.Context, where string, args ...any) ([]MediaFile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mediaFileColumns+` FROM media_files `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MediaFile
	for rows.Next() {
		f, err := scanMediaFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Add inserts a file record and returns it with its id.
func (s *MediaFileStore) Add(ctx context.Context, f MediaFile) (MediaFile, error) {
	unitIDsJSON, err := marshalColumn("unit_ids", f.UnitIDs)
	if err != nil {
		return MediaFile{}, err
	}
	qualityJSON, err := marshalColumn("quality", f.Quality)
	if err != nil {
		return MediaFile{}, err
	}
	languageJSON, err := marshalColumn("language", f.Language)
	if err != nil {
		return MediaFile{}, err
	}
	if f.DateAdded.IsZero() {
		f.DateAdded = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO media_files (item_id, unit_ids, path, relative_path, size, quality, language, release_group, scene_name, indexer_flags, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ItemID, unitIDsJSON, f.Path, f.RelativePath, f.Size, qualityJSON, languageJSON,
		nullString(f.ReleaseGroup), nullString(f.SceneName), f.IndexerFlags, f.DateAdded)
	if err != nil {
		return MediaFile{}, wrapWriteError("media file", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return MediaFile{}, err
	}
	f.ID = int(id)
	return f, nil
}

// Get returns one file record.
func (s *MediaFileStore) Get(ctx context.Context, id int) (MediaFile, error) {
	f, err := scanMediaFile(s.db.QueryRowContext(ctx, `SELECT `+mediaFileColumns+` FROM media_files WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return MediaFile{}, fmt.Errorf("media file %d: %w", id, ErrNotFound)
	}
	return f, err
}

// ListByItem returns the files recorded for an item.
func (s *MediaFileStore) ListByItem(ctx context.Context, itemID int) ([]MediaFile, error) {
	return s.query(ctx, `WHERE item_id = ? ORDER BY id ASC`, itemID)
}

// DeleteByRelativePath removes the records of an item stored at relativePath and returns them.
func (s *MediaFileStore) DeleteByRelativePath(ctx context.Context, itemID int, relativePath string) ([]MediaFile, error) {
	existing, err := s.query(ctx, `WHERE item_id = ? AND relative_path = ?`, itemID, relativePath)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media_files WHERE item_id = ? AND relative_path = ?`, itemID, relativePath); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes one file record.
func (s *MediaFileStore) Delete(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = ?`, id)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
