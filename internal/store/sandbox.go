// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lightwork/internal/models"
)

// Sandbox page identity and the document served before anything is saved.
const (
	SandboxPageSlug  = "lw-sandbox-template"
	SandboxPageTitle = "Sandbox Template"
	DefaultSandbox   = "<p>Hello World</p>"
)

// SandboxStore persists the sandbox document and mirrors it into a draft
// page so it can be previewed and mapped like any template page.
type SandboxStore struct {
	db *sql.DB
}

// NewSandboxStore creates a new SandboxStore.
func NewSandboxStore(db *sql.DB) *SandboxStore {
	return &SandboxStore{db: db}
}

// Load returns the stored sandbox document, or DefaultSandbox.
func (s *SandboxStore) Load() (*models.Sandbox, error) {
	sb := &models.Sandbox{HTML: DefaultSandbox}
	var html string
	found, err := getOption(s.db, OptionSandboxHTML, &html)
	if err != nil {
		return nil, fmt.Errorf("load sandbox: %w", err)
	}
	if found {
		sb.HTML = html
	}

	var id uuid.UUID
	found, err = getOption(s.db, OptionSandboxPage, &id)
	if err != nil {
		return nil, fmt.Errorf("load sandbox page id: %w", err)
	}
	if found {
		sb.PageID = &id
	}
	return sb, nil
}

// Save stores the document and writes it into the sandbox draft page,
// creating the page when it does not exist or was removed. Returns the
// page id.
func (s *SandboxStore) Save(doc string) (uuid.UUID, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin save sandbox: %w", err)
	}
	defer tx.Rollback()

	if err := setOption(tx, OptionSandboxHTML, doc); err != nil {
		return uuid.Nil, err
	}

	var pageID uuid.UUID
	found, err := getOption(tx, OptionSandboxPage, &pageID)
	if err != nil {
		return uuid.Nil, err
	}

	updated := false
	if found {
		res, err := tx.Exec(`UPDATE records SET body = $1, version = version + 1, updated_at = NOW()
			WHERE id = $2 AND type = $3`, doc, pageID, models.PageType)
		if err != nil {
			return uuid.Nil, fmt.Errorf("update sandbox page: %w", err)
		}
		n, _ := res.RowsAffected()
		updated = n > 0
	}

	if !updated {
		err := tx.QueryRow(`
			INSERT INTO records (type, title, slug, body, status)
			VALUES ($1, $2, $3, $4, 'draft')
			ON CONFLICT (type, slug)
			DO UPDATE SET body = EXCLUDED.body, version = records.version + 1, updated_at = NOW()
			RETURNING id`,
			models.PageType, SandboxPageTitle, SandboxPageSlug, doc).Scan(&pageID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("create sandbox page: %w", err)
		}
		if err := setOption(tx, OptionSandboxPage, pageID); err != nil {
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit sandbox: %w", err)
	}
	return pageID, nil
}
