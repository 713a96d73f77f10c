// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// LightWork. It organizes routes into the admin area, the asynchronous
// endpoints, the public listing API and the public site.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lightwork/internal/handlers"
	"lightwork/internal/middleware"
	"lightwork/internal/session"
)

// Config holds the dependencies of the router.
type Config struct {
	Sessions *session.Store
	Actions  *middleware.Actions
	Admin    *handlers.Admin
	Auth     *handlers.Auth
	API      *handlers.API
	Public   *handlers.Public
	Static   fs.FS

	// Secure marks cookies Secure and enables HSTS.
	Secure bool

	// LoginLimit login attempts are allowed per client IP within
	// LoginWindow.
	LoginLimit  int
	LoginWindow time.Duration
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The returned stop function releases the login
// rate limiter.
func New(cfg Config) (chi.Router, func()) {
	limiter := middleware.NewRateLimiter(cfg.LoginLimit, cfg.LoginWindow)
	admin, auth := cfg.Admin, cfg.Auth

	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.NewSecureHeaders(cfg.Secure))

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	if cfg.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static))))
	}

	// Public listing API: read only, no session.
	r.Get("/api/lightwork/v1/{type}", cfg.API.List)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(cfg.Sessions))
		r.Use(middleware.NewCSRF(cfg.Secure))

		r.Route("/admin", func(r chi.Router) {
			// Auth pages, accessible without a session.
			r.Get("/login", auth.LoginPage)
			r.With(limiter.Middleware).Post("/login", auth.LoginSubmit)
			r.Post("/logout", auth.Logout)

			// 2FA: requires auth but NOT completed 2FA.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/2fa/setup", auth.TwoFASetupPage)
				r.Get("/2fa/verify", auth.TwoFAVerifyPage)
				r.With(limiter.Middleware).Post("/2fa/setup", auth.TwoFAVerifySubmit)
				r.With(limiter.Middleware).Post("/2fa/verify", auth.TwoFAVerifySubmit)
			})

			// Asynchronous endpoints answer JSON and never redirect.
			r.Route("/ajax", func(r chi.Router) {
				r.Use(middleware.RequireAdminJSON)
				r.With(middleware.RequireAction(cfg.Actions, middleware.Action("lw_sandbox_save"))).
					Post("/sandbox", admin.SandboxSave)
				r.With(middleware.RequireAction(cfg.Actions, middleware.Action("lw_update_mapping"))).
					Post("/mapping", admin.UpdateMapping)
			})

			// Authenticated + 2FA-verified admin area.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.Require2FA)

				r.Get("/", admin.Dashboard)
				r.Get("/dashboard", admin.Dashboard)

				r.Route("/types", func(r chi.Router) {
					saveType := middleware.RequireAction(cfg.Actions, middleware.Action("lw_save_cpt"))

					r.Get("/", admin.TypesList)
					r.Get("/new", admin.TypeNew)
					r.With(middleware.RequireAdmin, saveType).Post("/", admin.TypeCreate)

					r.Route("/{slug}", func(r chi.Router) {
						r.Get("/edit", admin.TypeEdit)
						r.With(middleware.RequireAdmin, saveType).Post("/", admin.TypeUpdate)
						r.With(middleware.RequireAdmin, middleware.RequireAction(cfg.Actions, deleteTypeAction)).
							Post("/delete", admin.TypeDelete)

						r.Get("/template", admin.TemplatePage)
						r.With(middleware.RequireAdmin, middleware.RequireAction(cfg.Actions, saveTemplateAction)).
							Post("/template", admin.TemplateSave)

						r.Route("/records", func(r chi.Router) {
							r.Get("/", admin.RecordsList)
							r.Get("/new", admin.RecordNew)
							r.Post("/", admin.RecordCreate)
							r.Get("/{id}", admin.RecordEdit)
							r.Post("/{id}", admin.RecordUpdate)
							r.Post("/{id}/fields", admin.RecordQuickEdit)
							r.Post("/{id}/delete", admin.RecordDelete)
						})
					})
				})

				r.Get("/preview/{id}", admin.Preview)
				r.With(middleware.RequireAdmin).Get("/sandbox", admin.SandboxPage)

				r.Route("/settings", func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", admin.SettingsPage)
					r.Post("/batch", admin.BatchToggle)
					r.Post("/cache/purge", admin.CachePurge)
				})
			})
		})
	})

	// Public site, served through the page cache.
	pub := cfg.Public
	r.Get("/", pub.Homepage)
	r.Get("/page/{slug}", pub.Page)
	r.Get("/{route}/", pub.Archive)
	r.Get("/{route}/{slug}", pub.Record)
	r.Get("/{slug}", pub.Page)

	return r, limiter.Stop
}

// deleteTypeAction binds a delete token to the type being deleted.
func deleteTypeAction(r *http.Request) string {
	return "lw_delete_cpt_" + chi.URLParam(r, "slug")
}

// saveTemplateAction binds a mapping form token to its type.
func saveTemplateAction(r *http.Request) string {
	return "lw_save_template_" + chi.URLParam(r, "slug")
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
