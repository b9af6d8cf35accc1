// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/autobrr/curator/internal/dbinterface"
)

// HistoryStore persists item activity history.
type HistoryStore struct {
	db dbinterface.Querier
}

func NewHistoryStore(db dbinterface.Querier) *HistoryStore {
	return &HistoryStore{db: db}
}

const historyColumns = `id, item_id, unit_id, event_type, download_id, source_title, quality, language, data, date`

func scanHistory(row interface{ Scan(...any) error }) (HistoryRecord, error) {
	var h HistoryRecord
	var downloadID sql.NullString
	var qualityJSON, languageJSON, dataJSON string
	var eventType string
	if err := row.Scan(&h.ID, &h.ItemID, &h.UnitID, &eventType, &downloadID, &h.SourceTitle,
		&qualityJSON, &languageJSON, &dataJSON, &h.Date); err != nil {
		return HistoryRecord{}, err
	}
	h.EventType = HistoryEventType(eventType)
	h.DownloadID = downloadID.String
	if err := unmarshalColumn("quality", qualityJSON, &h.Quality); err != nil {
		return HistoryRecord{}, err
	}
	if err := unmarshalColumn("language", languageJSON, &h.Language); err != nil {
		return HistoryRecord{}, err
	}
	if err := unmarshalColumn("data", dataJSON, &h.Data); err != nil {
		return HistoryRecord{}, err
	}
	return h, nil
}

func (s *HistoryStore) query(ctx context.Context, where string, args ...any) ([]HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+historyColumns+` FROM history `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Add appends a history record.
func (s *HistoryStore) Add(ctx context.Context, h HistoryRecord) (HistoryRecord, error) {
	qualityJSON, err := marshalColumn("quality", h.Quality)
	if err != nil {
		return HistoryRecord{}, err
	}
	languageJSON, err := marshalColumn("language", h.Language)
	if err != nil {
		return HistoryRecord{}, err
	}
	dataJSON, err := marshalColumn("data", h.Data)
	if err != nil {
		return HistoryRecord{}, err
	}
	if h.Date.IsZero() {
		h.Date = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO history (item_id, unit_id, event_type, download_id, source_title, quality, language, data, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ItemID, h.UnitID, string(h.EventType), nullString(h.DownloadID), h.SourceTitle, qualityJSON, languageJSON, dataJSON, h.Date)
	if err != nil {
		return HistoryRecord{}, wrapWriteError("history record", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return HistoryRecord{}, err
	}
	h.ID = int(id)
	return h, nil
}

// FindGrabByDownloadID returns the most recent grab for a download, or nil.
func (s *HistoryStore) FindGrabByDownloadID(ctx context.Context, downloadID string) (*HistoryRecord, error) {
	if downloadID == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM history
		WHERE download_id = ? AND event_type = ?
		ORDER BY date DESC, id DESC LIMIT 1`, downloadID, string(HistoryGrabbed))
	h, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

// ByUnit returns the history of one unit, newest first.
func (s *HistoryStore) ByUnit(ctx context.Context, unitID int) ([]HistoryRecord, error) {
	return s.query(ctx, `WHERE unit_id = ? ORDER BY date DESC, id DESC`, unitID)
}

// ByItem returns the history of an item, newest first.
func (s *HistoryStore) ByItem(ctx context.Context, itemID int) ([]HistoryRecord, error) {
	return s.query(ctx, `WHERE item_id = ? ORDER BY date DESC, id DESC`, itemID)
}
