// Package web provides embedded static assets (CSS, JS) for the admin interface.
// In development, templates load Tailwind and HTMX from their CDNs; in
// production the compiled stylesheet and vendored HTMX are placed under
// static/ before the build and served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree: the editor scripts, the
// Tailwind input.css source and, in release builds, admin.css and
// htmx.min.js.
//
//go:embed all:static
var StaticFS embed.FS
