// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all LightWork
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"errors"
)

// Well-known option keys.
const (
	OptionContentTypes  = "lightwork_cpts"
	OptionMappingPrefix = "lw_template_map_"
	OptionSandboxHTML   = "lw_sandbox_html"
	OptionSandboxPage   = "lw_sandbox_page_id"
	OptionBatchUpdate   = "lightwork_batch_update"
)

var (
	// ErrSlugTaken is returned when a content type slug is already in use.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrRouteTaken is returned when another content type already serves
	// the same public URL segment.
	ErrRouteTaken = errors.New("route already in use")
	// ErrNotFound is returned by mutating operations whose target is gone.
	ErrNotFound = errors.New("not found")
	// ErrIncompleteMapping is returned when a mapping leaves fields unmapped.
	ErrIncompleteMapping = errors.New("incomplete field mapping")
)

// execer is satisfied by both *sql.DB and *sql.Tx so helpers can run
// inside or outside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

// MappingKey returns the option key holding the field mapping of a type.
func MappingKey(slug string) string {
	return OptionMappingPrefix + slug
}
