// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize cleans operator input before it is persisted: template
// markup goes through an allow-list, labels and field values are reduced
// to plain text.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	headBody   = regexp.MustCompile(`(?i)</?(head|body)\b[^>]*>`)
	whitespace = regexp.MustCompile(`[\s]+`)
	blankLines = regexp.MustCompile(`[ \t]+\n`)
)

// policy is the template markup allow-list: user-generated content plus
// the structural attributes the field mapper relies on.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("header", "footer", "main", "nav", "figure", "figcaption", "section", "article")
	p.AllowAttrs("id", "class").Globally()
	p.AllowDataAttributes()
	return p
}

// StripHeadBody removes <head> and <body> open and close tags, keeping
// whatever they wrapped.
func StripHeadBody(s string) string {
	return headBody.ReplaceAllString(s, "")
}

// HTML runs template markup through the allow-list.
func HTML(s string) string {
	return policy.Sanitize(s)
}

// Template prepares sandbox markup for storage: head and body wrappers are
// dropped and the rest is allow-listed.
func Template(s string) string {
	return HTML(StripHeadBody(s))
}

// TextField reduces s to a single line of text: tags are stripped, runs
// of whitespace (including line breaks) collapse to one space and the
// result is trimmed.
func TextField(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(StripTags(s), " "))
}

// Textarea strips tags but keeps line breaks. Trailing spaces on each
// line and around the whole text are trimmed.
func Textarea(s string) string {
	s = strings.ReplaceAll(StripTags(s), "\r\n", "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n"))
}

// StripTags drops every tag and comment from s and returns the remaining
// text exactly as written, entities included. Contents of script and
// style elements are kept as text.
func StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}
