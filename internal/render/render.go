// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"lightwork/internal/middleware"
	"lightwork/internal/session"
)

//go:embed templates/admin/*.html
var adminFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active sidebar section (e.g., "dashboard", "types")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Flash     *session.Flash // Notice carried over from the previous request
	Data      map[string]any // Page-specific data

	// Nonce returns the per-action token for the current session. Templates
	// call it as {{call .Nonce "lw_save_cpt"}}.
	Nonce func(action string) string
}

// MappedField is a row of the "Mapped" list on the template editor.
type MappedField struct {
	Label    string
	Selector string
}

// Renderer handles template parsing and execution for admin pages.
type Renderer struct {
	templates map[string]*template.Template
	actions   *middleware.Actions
}

// standaloneTemplates render as full HTML pages without the base layout.
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
}

// New parses every admin template from the embedded filesystem, pairing
// each page with the base layout. devMode loads Tailwind and HTMX from
// their CDNs instead of the compiled files under /static/. actions issues
// the per-action tokens exposed to templates and may be nil in tests.
func New(devMode bool, actions *middleware.Actions) (*Renderer, error) {
	funcs := template.FuncMap{
		"activeClass": func(current, target string) string {
			if current == target {
				return "bg-gray-900 text-white"
			}
			return "text-gray-300 hover:bg-gray-700 hover:text-white"
		},
		"isDev": func() bool { return devMode },
		"join":  strings.Join,
		// has reports whether list contains s; used for the supports checkboxes.
		"has": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
		"add": func(a, b int) int { return a + b },
	}

	names, err := fs.Glob(adminFS, "templates/admin/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	rn := &Renderer{templates: make(map[string]*template.Template), actions: actions}
	for _, path := range names {
		file := path[strings.LastIndex(path, "/")+1:]
		if file == "base.html" {
			continue
		}
		name := strings.TrimSuffix(file, ".html")

		var tmpl *template.Template
		if standaloneTemplates[name] {
			tmpl, err = template.New(file).Funcs(funcs).ParseFS(adminFS, path)
		} else {
			tmpl, err = template.New("base.html").Funcs(funcs).ParseFS(adminFS, "templates/admin/base.html", path)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", file, err)
		}
		rn.templates[name] = tmpl
	}

	return rn, nil
}

// Page renders a full admin page, or only its "content" block for HTMX
// requests. Session, CSRF token and the nonce function are filled in from
// the request context.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code, used when re-rendering
// a form that failed validation.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}
	data.Nonce = rn.nonceFunc(data.Session)

	execName := "base.html"
	switch {
	case standaloneTemplates[name]:
		execName = name + ".html"
	case isHTMX(r):
		execName = "content"
	}

	// Render into a buffer so a template error never leaves a half page.
	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("render template", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func (rn *Renderer) nonceFunc(sess *session.Data) func(string) string {
	return func(action string) string {
		if rn.actions == nil || sess == nil {
			return ""
		}
		return rn.actions.Token(sess.ID, action)
	}
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
