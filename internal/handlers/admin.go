// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lightwork/internal/cache"
	"lightwork/internal/engine"
	"lightwork/internal/middleware"
	"lightwork/internal/models"
	"lightwork/internal/render"
	"lightwork/internal/session"
	"lightwork/internal/store"
)

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer  *render.Renderer
	sessions  *session.Store
	types     *store.ContentTypeStore
	mappings  *store.MappingStore
	records   *store.RecordStore
	sandbox   *store.SandboxStore
	cacheLog  *store.CacheLogStore
	pageCache *cache.PageCache
	engine    *engine.Engine
	images    ImageStore
	batch     BatchJob
}

// NewAdmin creates a new Admin handler group with the given dependencies.
// images may be nil when no object storage is configured.
func NewAdmin(renderer *render.Renderer, sessions *session.Store, types *store.ContentTypeStore, mappings *store.MappingStore, records *store.RecordStore, sandbox *store.SandboxStore, cacheLog *store.CacheLogStore, pageCache *cache.PageCache, eng *engine.Engine, images ImageStore, batch BatchJob) *Admin {
	return &Admin{
		renderer:  renderer,
		sessions:  sessions,
		types:     types,
		mappings:  mappings,
		records:   records,
		sandbox:   sandbox,
		cacheLog:  cacheLog,
		pageCache: pageCache,
		engine:    eng,
		images:    images,
		batch:     batch,
	}
}

// Dashboard renders the admin dashboard with per-type record counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	types, err := a.types.List()
	if err != nil {
		slog.Error("list content types failed", "error", err)
	}
	counts, err := a.records.CountByType()
	if err != nil {
		slog.Error("count records failed", "error", err)
		counts = map[string]int{}
	}

	total := 0
	for _, ct := range types {
		total += counts[ct.Slug]
	}

	a.page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"Types":        types,
			"RecordCounts": counts,
			"RecordTotal":  total,
			"BatchActive":  a.batch.Active(),
		},
	})
}

// page renders an admin page, picking up the notice left by the previous
// request.
func (a *Admin) page(w http.ResponseWriter, r *http.Request, name string, data *render.PageData) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.Flash != nil && data.Flash == nil {
		data.Flash = a.sessions.TakeFlash(r.Context(), r, sess)
	}
	a.renderer.Page(w, r, name, data)
}

// invalid re-renders a form with an error notice and status 422.
func (a *Admin) invalid(w http.ResponseWriter, r *http.Request, name, msg string, data *render.PageData) {
	data.Flash = &session.Flash{Kind: "error", Message: msg}
	a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, name, data)
}

// notice stores a one-shot message for the next page render.
func (a *Admin) notice(r *http.Request, kind, msg string) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || a.sessions == nil {
		return
	}
	if err := a.sessions.SetFlash(r.Context(), r, sess, kind, msg); err != nil {
		slog.Warn("set flash failed", "error", err)
	}
}

// redirect sends the browser to url with a notice for the next page.
func (a *Admin) redirect(w http.ResponseWriter, r *http.Request, url, kind, msg string) {
	a.notice(r, kind, msg)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// contentType loads the type named by the {slug} URL parameter, answering
// 404 when it does not exist. The built-in page type is always available.
func (a *Admin) contentType(w http.ResponseWriter, r *http.Request) *models.ContentType {
	slug := chi.URLParam(r, "slug")
	if slug == models.PageType {
		pt := pageType
		return &pt
	}
	ct, err := a.types.Find(slug)
	if err != nil {
		slog.Error("find content type failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if ct == nil {
		http.NotFound(w, r)
		return nil
	}
	return ct
}

// --- Cache invalidation ---

// invalidateRecord drops the cached pages of a record's type. A page may
// serve as a template for other types, so page changes flush everything.
func (a *Admin) invalidateRecord(ctx context.Context, rec *models.Record, action string) {
	if rec.Type == models.PageType {
		a.invalidateAll(ctx, "page", rec.Slug, action)
		return
	}
	a.pageCache.InvalidateType(ctx, rec.Type)
	a.cacheLog.Log("record", rec.Type+"/"+rec.Slug, action)
}

// invalidateAll flushes the whole page cache.
func (a *Admin) invalidateAll(ctx context.Context, entityType, key, action string) {
	a.pageCache.InvalidateAll(ctx)
	a.cacheLog.Log(entityType, key, action)
}
