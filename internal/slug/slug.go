// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and the key
// sanitization used for content type and field names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxKeyLength is the longest content type slug accepted.
const MaxKeyLength = 20

var (
	// nonSlug matches anything that isn't a letter, digit, space, or hyphen.
	nonSlug = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators collapses whitespace and hyphen runs into one hyphen.
	separators = regexp.MustCompile(`[\s-]+`)
	// nonKey matches anything outside the key alphabet.
	nonKey = regexp.MustCompile(`[^a-z0-9_-]`)
)

// Generate creates a URL-friendly slug from the given string. Accents are
// folded to their base letters, other symbols are dropped.
// Example: "Café, Crème & Co 2026" → "cafe-creme-co-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(Fold(s)))
	result = nonSlug.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Key sanitizes an identifier: lowercase, only a-z, 0-9, underscore and
// hyphen, at most MaxKeyLength runes.
func Key(s string) string {
	k := nonKey.ReplaceAllString(strings.ToLower(s), "")
	if len(k) > MaxKeyLength {
		k = k[:MaxKeyLength]
	}
	return k
}

// FieldName sanitizes a field name like Key but without the length cap.
func FieldName(s string) string {
	return nonKey.ReplaceAllString(strings.ToLower(s), "")
}

// Fold strips combining marks after canonical decomposition, turning
// "é" into "e". Characters without a decomposition pass through.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
