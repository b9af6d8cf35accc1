// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/autobrr/curator/internal/dbinterface"
)

// QualityProfileStore handles persistence for quality profiles.
type QualityProfileStore struct {
	db dbinterface.Querier
}

// NewQualityProfileStore returns a new QualityProfileStore backed by db.
func NewQualityProfileStore(db dbinterface.Querier) *QualityProfileStore {
	return &QualityProfileStore{db: db}
}

const qualityProfileColumns = `id, name, upgrade_allowed, cutoff, items, languages, cutoff_language, created_at, updated_at`

func scanQualityProfile(row interface{ Scan(...any) error }) (*QualityProfile, error) {
	var p QualityProfile
	var itemsJSON, languagesJSON string
	if err := row.Scan(&p.ID, &p.Name, &p.UpgradeAllowed, &p.Cutoff, &itemsJSON, &languagesJSON, &p.CutoffLanguage, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("items", itemsJSON, &p.Items); err != nil {
		return nil, fmt.Errorf("quality profile %d: %w", p.ID, err)
	}
	if err := unmarshalColumn("languages", languagesJSON, &p.Languages); err != nil {
		return nil, fmt.Errorf("quality profile %d: %w", p.ID, err)
	}
	return &p, nil
}

// List returns all quality profiles ordered by name.
func (s *QualityProfileStore) List(ctx context.Context) ([]*QualityProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+qualityProfileColumns+` FROM quality_profiles ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*QualityProfile
	for rows.Next() {
		p, err := scanQualityProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Get returns the quality profile with the given id, or ErrNotFound.
func (s *QualityProfileStore) Get(ctx context.Context, id int) (*QualityProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+qualityProfileColumns+` FROM quality_profiles WHERE id = ?`, id)
	p, err := scanQualityProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quality profile %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// Create inserts a new quality profile and returns it with the generated ID.
func (s *QualityProfileStore) Create(ctx context.Context, p *QualityProfile) (*QualityProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	itemsJSON, err := marshalColumn("items", p.Items)
	if err != nil {
		return nil, err
	}
	languagesJSON, err := marshalColumn("languages", p.Languages)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quality_profiles (name, upgrade_allowed, cutoff, items, languages, cutoff_language)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(p.Name), p.UpgradeAllowed, p.Cutoff, itemsJSON, languagesJSON, p.CutoffLanguage)
	if err != nil {
		return nil, wrapWriteError("quality profile", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, int(id))
}

// Update replaces the mutable fields of an existing quality profile.
func (s *QualityProfileStore) Update(ctx context.Context, p *QualityProfile) (*QualityProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	itemsJSON, err := marshalColumn("items", p.Items)
	if err != nil {
		return nil, err
	}
	languagesJSON, err := marshalColumn("languages", p.Languages)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE quality_profiles
		SET name = ?, upgrade_allowed = ?, cutoff = ?, items = ?, languages = ?, cutoff_language = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, strings.TrimSpace(p.Name), p.UpgradeAllowed, p.Cutoff, itemsJSON, languagesJSON, p.CutoffLanguage, p.ID)
	if err != nil {
		return nil, wrapWriteError("quality profile", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("quality profile %d: %w", p.ID, ErrNotFound)
	}
	return s.Get(ctx, p.ID)
}

// Delete removes the quality profile with the given id.
func (s *QualityProfileStore) Delete(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM quality_profiles WHERE id = ?`, id)
	return wrapWriteError("quality profile", err)
}
