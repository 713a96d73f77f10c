// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// OptionStore manages the key/value options table. Values are stored as
// JSON and concurrent writers race last-write-wins.
type OptionStore struct {
	db *sql.DB
}

// NewOptionStore returns a new OptionStore backed by the given database.
func NewOptionStore(db *sql.DB) *OptionStore {
	return &OptionStore{db: db}
}

// Get decodes the option stored under key into dst. It reports false
// without touching dst when the key does not exist.
func (s *OptionStore) Get(key string, dst any) (bool, error) {
	return getOption(s.db, key, dst)
}

// Set upserts the JSON encoding of value under key.
func (s *OptionStore) Set(key string, value any) error {
	return setOption(s.db, key, value)
}

// Delete removes the option. Deleting a missing key is not an error.
func (s *OptionStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM options WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete option %s: %w", key, err)
	}
	return nil
}

func getOption(q execer, key string, dst any) (bool, error) {
	var raw []byte
	err := q.QueryRow(`SELECT value FROM options WHERE key = $1`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get option %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode option %s: %w", key, err)
	}
	return true, nil
}

func setOption(q execer, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode option %s: %w", key, err)
	}
	_, err = q.Exec(`
		INSERT INTO options (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("set option %s: %w", key, err)
	}
	return nil
}
