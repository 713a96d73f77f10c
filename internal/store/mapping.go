// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"lightwork/internal/models"
)

// MappingStore manages the per-type field to selector mappings.
type MappingStore struct {
	db *sql.DB
}

// NewMappingStore creates a new MappingStore.
func NewMappingStore(db *sql.DB) *MappingStore {
	return &MappingStore{db: db}
}

// Get returns the mapping of a content type. A type without a stored
// mapping yields an empty, non-nil map.
func (s *MappingStore) Get(slug string) (models.FieldMapping, error) {
	m := models.FieldMapping{}
	if _, err := getOption(s.db, MappingKey(slug), &m); err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	if m == nil {
		m = models.FieldMapping{}
	}
	return m, nil
}

// Set stores a single field's selector, leaving the other entries intact.
func (s *MappingStore) Set(slug, field, selector string) error {
	_, err := s.db.Exec(`
		INSERT INTO options (key, value, updated_at)
		VALUES ($1, jsonb_build_object($2::text, $3::text), NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = options.value || EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		MappingKey(slug), field, selector,
	)
	if err != nil {
		return fmt.Errorf("set mapping %s.%s: %w", slug, field, err)
	}
	return nil
}

// Replace overwrites the whole mapping of ct. Every field of the type must
// have a non-empty selector, otherwise ErrIncompleteMapping is returned
// and nothing is written. Entries for unknown fields are dropped.
func (s *MappingStore) Replace(ct *models.ContentType, m models.FieldMapping) error {
	if len(m.Missing(ct)) > 0 {
		return ErrIncompleteMapping
	}
	clean := make(models.FieldMapping, len(ct.Fields))
	for _, f := range ct.Fields {
		clean[f.Name] = m[f.Name]
	}
	if err := setOption(s.db, MappingKey(ct.Slug), clean); err != nil {
		return fmt.Errorf("replace mapping: %w", err)
	}
	return nil
}

// Delete removes the mapping of a content type.
func (s *MappingStore) Delete(slug string) error {
	if _, err := s.db.Exec(`DELETE FROM options WHERE key = $1`, MappingKey(slug)); err != nil {
		return fmt.Errorf("delete mapping %s: %w", slug, err)
	}
	return nil
}
