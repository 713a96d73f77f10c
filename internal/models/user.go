// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and options, and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an operator's permission level.
type Role string

const (
	// RoleAdmin may define content types, map templates, edit the sandbox
	// and run the batch update.
	RoleAdmin Role = "admin"
	// RoleEditor may only manage records.
	RoleEditor Role = "editor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// ManagesSite reports whether r holds the site management capability
// required by the content type, mapping, sandbox and settings screens.
func (r Role) ManagesSite() bool {
	return r == RoleAdmin
}

// User is an operator account with its password hash and TOTP state.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user manages the site.
func (u *User) IsAdmin() bool {
	return u.Role.ManagesSite()
}

// Needs2FASetup returns true until the first TOTP code was confirmed.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}
