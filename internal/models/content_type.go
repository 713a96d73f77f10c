// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// FieldType enumerates the kinds of custom fields a content type can carry.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldImage    FieldType = "image"
)

// FieldTypes lists the selectable field types in display order.
var FieldTypes = []FieldType{FieldText, FieldTextarea, FieldNumber, FieldImage}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// Field is a custom field attached to a content type. Name is unique
// within its type.
type Field struct {
	Name  string    `json:"name"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`
}

// Supports lists the editor features a content type may enable.
var Supports = []string{"title", "editor", "thumbnail", "excerpt", "custom-fields"}

// DefaultSupports is applied to new content types before the form is submitted.
var DefaultSupports = []string{"title", "editor", "thumbnail"}

// ContentType is a user-declared content type with its display settings
// and custom fields. The JSON shape is what the options store persists.
type ContentType struct {
	Slug         string     `json:"slug"`
	Singular     string     `json:"single"`
	Plural       string     `json:"plural"`
	Public       bool       `json:"public"`
	HasArchive   bool       `json:"has_archive"`
	Supports     []string   `json:"supports"`
	Fields       []Field    `json:"acf_fields"`
	MenuIcon     string     `json:"menu_icon,omitempty"`
	RewriteSlug  string     `json:"rewrite_slug,omitempty"`
	Hierarchical bool       `json:"hierarchical"`
	TemplatePage *uuid.UUID `json:"template_page,omitempty"`
}

// Field returns the field with the given name, or nil.
func (ct *ContentType) Field(name string) *Field {
	for i := range ct.Fields {
		if ct.Fields[i].Name == name {
			return &ct.Fields[i]
		}
	}
	return nil
}

// FieldNames returns the names of all fields in declaration order.
func (ct *ContentType) FieldNames() []string {
	names := make([]string, 0, len(ct.Fields))
	for _, f := range ct.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Route returns the URL segment the type's records are served under.
func (ct *ContentType) Route() string {
	if ct.RewriteSlug != "" {
		return ct.RewriteSlug
	}
	return ct.Slug
}

// HasSupport reports whether the given editor feature is enabled.
func (ct *ContentType) HasSupport(feature string) bool {
	for _, s := range ct.Supports {
		if s == feature {
			return true
		}
	}
	return false
}

// FieldMapping maps a field name to the selector of the template element
// that receives its value.
type FieldMapping map[string]string

// Missing returns the names of ct's fields that have no selector.
func (m FieldMapping) Missing(ct *ContentType) []string {
	var missing []string
	for _, f := range ct.Fields {
		if m[f.Name] == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
