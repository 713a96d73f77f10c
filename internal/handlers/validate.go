package handlers

import (
	"strconv"
	"unicode/utf8"

	"lightwork/internal/models"
)

// Validation limits for content type and record fields.
const (
	maxLabelLen = 100
	maxTitleLen = 300
	maxSlugLen  = 200
	maxBodyLen  = 100_000
	maxValueLen = 10_000
)

// reservedRoutes are URL segments owned by the application itself.
var reservedRoutes = map[string]bool{
	models.PageType: true,
	"admin":         true,
	"api":           true,
	"static":        true,
}

// validateType checks a sanitized content type and returns the first
// error found.
func validateType(ct *models.ContentType) string {
	if ct.Slug == "" || ct.Singular == "" || ct.Plural == "" {
		return "All fields are required."
	}
	if reservedRoutes[ct.Slug] || reservedRoutes[ct.Route()] {
		return "That slug is reserved."
	}
	if utf8.RuneCountInString(ct.Singular) > maxLabelLen || utf8.RuneCountInString(ct.Plural) > maxLabelLen {
		return "Labels are too long (max 100 characters)."
	}
	for _, f := range ct.Fields {
		if utf8.RuneCountInString(f.Label) > maxLabelLen {
			return "Field labels are too long (max 100 characters)."
		}
	}
	return ""
}

// validateRecord checks record form inputs and returns the first error found.
func validateRecord(title, slug, body string) string {
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if slug == "" {
		return "Slug is required."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	return ""
}

// validateValue checks one field value against its field definition.
func validateValue(f models.Field, v string) string {
	if utf8.RuneCountInString(v) > maxValueLen {
		return f.Label + " is too long (max 10,000 characters)."
	}
	if f.Type == models.FieldNumber && v != "" {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return f.Label + " must be a number."
		}
	}
	return ""
}
