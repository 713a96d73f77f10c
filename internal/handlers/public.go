// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lightwork/internal/cache"
	"lightwork/internal/engine"
	"lightwork/internal/models"
	"lightwork/internal/store"
)

// archivePerPage is the number of records per archive page.
const archivePerPage = 10

// homeSlug is the page served at the site root.
const homeSlug = "home"

// Public groups handlers for the public site. Each checks the Valkey page
// cache before rendering and stores the result on a miss.
type Public struct {
	engine    *engine.Engine
	types     *store.ContentTypeStore
	records   *store.RecordStore
	pageCache *cache.PageCache
}

// NewPublic creates a new Public handler group.
func NewPublic(eng *engine.Engine, types *store.ContentTypeStore, records *store.RecordStore, pageCache *cache.PageCache) *Public {
	return &Public{
		engine:    eng,
		types:     types,
		records:   records,
		pageCache: pageCache,
	}
}

// Homepage renders the published page with slug "home".
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	p.servePage(w, r, homeSlug)
}

// Page renders a published page by its slug.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	p.servePage(w, r, chi.URLParam(r, "slug"))
}

func (p *Public) servePage(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := r.Context()
	key := cache.PageKey(slug)
	if cached, ok := p.pageCache.Get(ctx, key); ok {
		writeHTML(w, cached)
		return
	}

	page, err := p.records.FindPublished(models.PageType, slug)
	if err != nil {
		slog.Error("find page failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		http.NotFound(w, r)
		return
	}

	out := p.engine.RenderPage(page)
	p.pageCache.Set(ctx, key, out)
	writeHTML(w, out)
}

// Record renders a published record of a public type at /{route}/{slug}.
func (p *Public) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ct := p.routeType(w, r)
	if ct == nil {
		return
	}
	slug := chi.URLParam(r, "slug")

	key := cache.RecordKey(ct.Slug, slug)
	if cached, ok := p.pageCache.Get(ctx, key); ok {
		writeHTML(w, cached)
		return
	}

	rec, err := p.records.FindPublished(ct.Slug, slug)
	if err != nil {
		slog.Error("find record failed", "error", err, "type", ct.Slug, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}

	out, err := p.engine.RenderRecord(ct, rec)
	if err != nil {
		slog.Error("render record failed", "error", err, "type", ct.Slug, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.pageCache.Set(ctx, key, out)
	writeHTML(w, out)
}

// Archive lists the published records of a type with an archive at
// /{route}/, ten per page via ?page=.
func (p *Public) Archive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ct := p.routeType(w, r)
	if ct == nil {
		return
	}
	if !ct.HasArchive {
		http.NotFound(w, r)
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	key := cache.ArchiveKey(ct.Slug, page)
	if cached, ok := p.pageCache.Get(ctx, key); ok {
		writeHTML(w, cached)
		return
	}

	recs, total, err := p.records.ListPublished(ct.Slug, store.OrderDate, page, archivePerPage)
	if err != nil {
		slog.Error("list archive failed", "error", err, "type", ct.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if len(recs) == 0 && page > 1 {
		http.NotFound(w, r)
		return
	}

	items := make([]engine.ArchiveItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, engine.ArchiveItem{
			Title: rec.Title,
			Link:  "/" + ct.Route() + "/" + rec.Slug,
		})
	}
	var prev, next int
	if page > 1 {
		prev = page - 1
	}
	if page*archivePerPage < total {
		next = page + 1
	}

	out, err := p.engine.RenderArchive(ct, items, prev, next)
	if err != nil {
		slog.Error("render archive failed", "error", err, "type", ct.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.pageCache.Set(ctx, key, out)
	writeHTML(w, out)
}

// routeType resolves the {route} URL segment to a public content type,
// answering 404 when none is served there.
func (p *Public) routeType(w http.ResponseWriter, r *http.Request) *models.ContentType {
	route := chi.URLParam(r, "route")
	ct, err := p.types.FindByRoute(route)
	if err != nil {
		slog.Error("find content type by route failed", "error", err, "route", route)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if ct == nil {
		http.NotFound(w, r)
		return nil
	}
	return ct
}
