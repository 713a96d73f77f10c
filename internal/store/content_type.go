// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"lightwork/internal/models"
)

// ContentTypeStore manages the content type definitions kept as a single
// list under the lightwork_cpts option.
type ContentTypeStore struct {
	db *sql.DB
}

// NewContentTypeStore creates a new ContentTypeStore.
func NewContentTypeStore(db *sql.DB) *ContentTypeStore {
	return &ContentTypeStore{db: db}
}

// List returns every defined content type in declaration order.
func (s *ContentTypeStore) List() ([]models.ContentType, error) {
	return listTypes(s.db)
}

// Find returns the content type with the given slug. Returns nil if not found.
func (s *ContentTypeStore) Find(slug string) (*models.ContentType, error) {
	types, err := s.List()
	if err != nil {
		return nil, err
	}
	if i := indexOf(types, slug); i >= 0 {
		return &types[i], nil
	}
	return nil, nil
}

// FindByRoute returns the public content type served under the given URL
// segment (its rewrite slug, or its slug when none is set).
func (s *ContentTypeStore) FindByRoute(route string) (*models.ContentType, error) {
	types, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].Public && types[i].Route() == route {
			return &types[i], nil
		}
	}
	return nil, nil
}

// Create appends a new content type. Returns ErrSlugTaken when the slug
// is already defined and ErrRouteTaken when its route is served by
// another type.
func (s *ContentTypeStore) Create(ct *models.ContentType) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin create content type: %w", err)
	}
	defer tx.Rollback()

	types, err := lockTypes(tx)
	if err != nil {
		return err
	}
	if indexOf(types, ct.Slug) >= 0 || ct.Slug == models.PageType {
		return ErrSlugTaken
	}
	if routeTaken(types, ct, -1) {
		return ErrRouteTaken
	}
	types = append(types, *ct)
	if err := setOption(tx, OptionContentTypes, types); err != nil {
		return err
	}
	return tx.Commit()
}

// Update replaces the definition stored under oldSlug in place. When the
// slug changes every record of the old type is moved to the new slug and
// the field mapping follows it, all in one transaction.
func (s *ContentTypeStore) Update(oldSlug string, ct *models.ContentType) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update content type: %w", err)
	}
	defer tx.Rollback()

	types, err := lockTypes(tx)
	if err != nil {
		return err
	}
	i := indexOf(types, oldSlug)
	if i < 0 {
		return ErrNotFound
	}

	if ct.Slug != oldSlug && (indexOf(types, ct.Slug) >= 0 || ct.Slug == models.PageType) {
		return ErrSlugTaken
	}
	if routeTaken(types, ct, i) {
		return ErrRouteTaken
	}

	if ct.Slug != oldSlug {
		if err := renameType(tx, oldSlug, ct.Slug); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM options WHERE key = $1`, MappingKey(ct.Slug)); err != nil {
			return fmt.Errorf("clear mapping %s: %w", ct.Slug, err)
		}
		if _, err := tx.Exec(`UPDATE options SET key = $1, updated_at = NOW() WHERE key = $2`,
			MappingKey(ct.Slug), MappingKey(oldSlug)); err != nil {
			return fmt.Errorf("move mapping %s: %w", oldSlug, err)
		}
	}

	types[i] = *ct
	if err := setOption(tx, OptionContentTypes, types); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the content type and its field mapping. Records of the
// type are left untouched.
func (s *ContentTypeStore) Delete(slug string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete content type: %w", err)
	}
	defer tx.Rollback()

	types, err := lockTypes(tx)
	if err != nil {
		return err
	}
	i := indexOf(types, slug)
	if i < 0 {
		return ErrNotFound
	}
	types = append(types[:i], types[i+1:]...)

	if err := setOption(tx, OptionContentTypes, types); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM options WHERE key = $1`, MappingKey(slug)); err != nil {
		return fmt.Errorf("delete mapping %s: %w", slug, err)
	}
	return tx.Commit()
}

func listTypes(q execer) ([]models.ContentType, error) {
	var types []models.ContentType
	if _, err := getOption(q, OptionContentTypes, &types); err != nil {
		return nil, fmt.Errorf("list content types: %w", err)
	}
	return types, nil
}

// lockTypes reads the type list with a row lock so concurrent writers
// inside transactions serialize on it.
func lockTypes(tx *sql.Tx) ([]models.ContentType, error) {
	if _, err := tx.Exec(`
		INSERT INTO options (key, value) VALUES ($1, '[]'::jsonb)
		ON CONFLICT (key) DO NOTHING`, OptionContentTypes); err != nil {
		return nil, fmt.Errorf("ensure content types: %w", err)
	}
	var raw []byte
	if err := tx.QueryRow(`SELECT value FROM options WHERE key = $1 FOR UPDATE`,
		OptionContentTypes).Scan(&raw); err != nil {
		return nil, fmt.Errorf("lock content types: %w", err)
	}
	var types []models.ContentType
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("decode content types: %w", err)
	}
	return types, nil
}

// routeTaken reports whether a type other than types[skip] is served
// under the route of ct.
func routeTaken(types []models.ContentType, ct *models.ContentType, skip int) bool {
	route := ct.Route()
	for i := range types {
		if i != skip && types[i].Route() == route {
			return true
		}
	}
	return false
}

func indexOf(types []models.ContentType, slug string) int {
	for i := range types {
		if types[i].Slug == slug {
			return i
		}
	}
	return -1
}
