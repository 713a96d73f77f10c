// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PageType is the built-in record type used for template and sandbox pages.
const PageType = "page"

// RecordStatus represents the publishing state of a record.
type RecordStatus string

const (
	RecordDraft     RecordStatus = "draft"
	RecordPublished RecordStatus = "published"
)

// Record is a content item of some content type, with its custom field
// values keyed by field name.
type Record struct {
	ID        uuid.UUID         `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Slug      string            `json:"slug"`
	Body      string            `json:"body"`
	Status    RecordStatus      `json:"status"`
	Version   int               `json:"version"`
	Fields    map[string]string `json:"fields,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// IsPublished returns true if the record is in published status.
func (r *Record) IsPublished() bool {
	return r.Status == RecordPublished
}

// Sandbox is the shared HTML/CSS/JS template edited in the sandbox editor.
// PageID is the draft page mirroring the document.
type Sandbox struct {
	HTML   string
	PageID *uuid.UUID
}
