// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lightwork/internal/models"
	"lightwork/internal/render"
	"lightwork/internal/sanitize"
	"lightwork/internal/slug"
	"lightwork/internal/store"
)

// emptyFieldRows is how many blank field rows the type form offers below
// the existing ones.
const emptyFieldRows = 3

const routeTakenMsg = "That URL is already used by another content type."

// TypesList renders the content type management page.
func (a *Admin) TypesList(w http.ResponseWriter, r *http.Request) {
	types, err := a.types.List()
	if err != nil {
		slog.Error("list content types failed", "error", err)
	}

	a.page(w, r, "types_list", &render.PageData{
		Title:   "Content Types",
		Section: "types",
		Data:    map[string]any{"Types": types},
	})
}

// TypeNew renders the empty content type form.
func (a *Admin) TypeNew(w http.ResponseWriter, r *http.Request) {
	ct := &models.ContentType{Public: true, HasArchive: true, Supports: models.DefaultSupports}
	a.page(w, r, "type_form", a.typeFormData("Add Content Type", ct, "", true))
}

// TypeCreate handles the new content type form submission.
func (a *Admin) TypeCreate(w http.ResponseWriter, r *http.Request) {
	ct := typeFromForm(r)
	data := a.typeFormData("Add Content Type", ct, "", true)

	if msg := validateType(ct); msg != "" {
		a.invalid(w, r, "type_form", msg, data)
		return
	}
	if a.slugTaken(ct.Slug) {
		a.invalid(w, r, "type_form", "Slug already in use.", data)
		return
	}
	created, err := a.linkTemplate(r, ct)
	if err != nil {
		slog.Error("link template page failed", "error", err, "slug", ct.Slug)
		a.invalid(w, r, "type_form", "Could not create the template page.", data)
		return
	}

	err = a.types.Create(ct)
	if err != nil {
		a.discardPage(created)
	}
	switch {
	case errors.Is(err, store.ErrSlugTaken):
		a.invalid(w, r, "type_form", "Slug already in use.", data)
		return
	case errors.Is(err, store.ErrRouteTaken):
		a.invalid(w, r, "type_form", routeTakenMsg, data)
		return
	case err != nil:
		slog.Error("create content type failed", "error", err)
		a.invalid(w, r, "type_form", "Failed to save the content type.", data)
		return
	}

	slog.Info("content type created", "slug", ct.Slug, "fields", len(ct.Fields))
	a.invalidateAll(r.Context(), "type", ct.Slug, "create")
	a.redirect(w, r, "/admin/types", "success", "Content type saved.")
}

// TypeEdit renders the form for an existing content type.
func (a *Admin) TypeEdit(w http.ResponseWriter, r *http.Request) {
	ct := a.definedType(w, r)
	if ct == nil {
		return
	}
	a.page(w, r, "type_form", a.typeFormData("Edit "+ct.Singular, ct, ct.Slug, false))
}

// TypeUpdate handles the edit form. A changed slug moves every record of
// the type and its field mapping along with it.
func (a *Admin) TypeUpdate(w http.ResponseWriter, r *http.Request) {
	if a.definedType(w, r) == nil {
		return
	}
	oldSlug := chi.URLParam(r, "slug")
	ct := typeFromForm(r)
	data := a.typeFormData("Edit "+ct.Singular, ct, oldSlug, false)

	if msg := validateType(ct); msg != "" {
		a.invalid(w, r, "type_form", msg, data)
		return
	}
	if ct.Slug != oldSlug && a.slugTaken(ct.Slug) {
		a.invalid(w, r, "type_form", "Slug already in use.", data)
		return
	}
	created, err := a.linkTemplate(r, ct)
	if err != nil {
		slog.Error("link template page failed", "error", err, "slug", ct.Slug)
		a.invalid(w, r, "type_form", "Could not create the template page.", data)
		return
	}

	err = a.types.Update(oldSlug, ct)
	if err != nil {
		a.discardPage(created)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, store.ErrSlugTaken):
		a.invalid(w, r, "type_form", "Slug already in use.", data)
		return
	case errors.Is(err, store.ErrRouteTaken):
		a.invalid(w, r, "type_form", routeTakenMsg, data)
		return
	case err != nil:
		slog.Error("update content type failed", "error", err, "slug", oldSlug)
		a.invalid(w, r, "type_form", "Failed to save the content type.", data)
		return
	}

	if oldSlug != ct.Slug {
		slog.Info("content type renamed", "from", oldSlug, "to", ct.Slug)
	}
	a.invalidateAll(r.Context(), "type", ct.Slug, "update")
	a.redirect(w, r, "/admin/types", "success", "Content type saved.")
}

// TypeDelete removes a content type and its mapping. Its records keep
// their type slug.
func (a *Admin) TypeDelete(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	err := a.types.Delete(slugParam)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("delete content type failed", "error", err, "slug", slugParam)
		a.redirect(w, r, "/admin/types", "error", "Failed to delete the content type.")
		return
	}

	slog.Info("content type deleted", "slug", slugParam)
	a.invalidateAll(r.Context(), "type", slugParam, "delete")
	a.redirect(w, r, "/admin/types", "success", "Content type deleted.")
}

// slugTaken reports whether a type already uses s. Checked before a
// template page is created; the store checks again on save.
func (a *Admin) slugTaken(s string) bool {
	existing, err := a.types.Find(s)
	return err == nil && existing != nil
}

// definedType loads a user-defined type named by {slug}; the built-in page
// type is not editable.
func (a *Admin) definedType(w http.ResponseWriter, r *http.Request) *models.ContentType {
	if chi.URLParam(r, "slug") == models.PageType {
		http.NotFound(w, r)
		return nil
	}
	return a.contentType(w, r)
}

func (a *Admin) typeFormData(title string, ct *models.ContentType, oldSlug string, isNew bool) *render.PageData {
	rows := make([]models.Field, 0, len(ct.Fields)+emptyFieldRows)
	rows = append(rows, ct.Fields...)
	for range emptyFieldRows {
		rows = append(rows, models.Field{Type: models.FieldText})
	}

	pages, err := a.records.ListByType(models.PageType)
	if err != nil {
		slog.Error("list pages failed", "error", err)
	}

	return &render.PageData{
		Title:   title,
		Section: "types",
		Data: map[string]any{
			"Type":       ct,
			"IsNew":      isNew,
			"OldSlug":    oldSlug,
			"Rows":       rows,
			"FieldTypes": models.FieldTypes,
			"Supports":   models.Supports,
			"Pages":      pages,
		},
	}
}

// linkTemplate applies the "associate template" choice: an existing page
// when one was picked, otherwise a new draft page named after the type.
// It returns the ID of the page it created, if any.
func (a *Admin) linkTemplate(r *http.Request, ct *models.ContentType) (*uuid.UUID, error) {
	if r.FormValue("associate_template") == "" {
		ct.TemplatePage = nil
		return nil, nil
	}

	if id, err := uuid.Parse(r.FormValue("template_page")); err == nil {
		page, err := a.records.FindByID(id)
		if err != nil {
			return nil, err
		}
		if page != nil && page.Type == models.PageType {
			ct.TemplatePage = &page.ID
			return nil, nil
		}
	}

	title := ct.Singular + " Template"
	pageSlug, err := a.uniqueSlug(models.PageType, slug.Generate(title), nil)
	if err != nil {
		return nil, err
	}
	page, err := a.records.Create(&models.Record{
		Type:   models.PageType,
		Title:  title,
		Slug:   pageSlug,
		Status: models.RecordDraft,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("template page created", "type", ct.Slug, "page_id", page.ID)
	ct.TemplatePage = &page.ID
	return &page.ID, nil
}

// discardPage removes a template page created for a save that failed.
func (a *Admin) discardPage(id *uuid.UUID) {
	if id == nil {
		return
	}
	if err := a.records.Delete(*id); err != nil {
		slog.Error("discard template page failed", "error", err, "page_id", *id)
		return
	}
	slog.Info("template page discarded", "page_id", *id)
}

// uniqueSlug returns base, or base with the first free numeric suffix.
func (a *Admin) uniqueSlug(typ, base string, exclude *uuid.UUID) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		taken, err := a.records.SlugExists(typ, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// typeFromForm reads and sanitizes a posted content type. Field rows with
// an empty name are skipped, repeated names keep the first row and unknown
// field types fall back to text.
func typeFromForm(r *http.Request) *models.ContentType {
	ct := &models.ContentType{
		Slug:         slug.Key(r.FormValue("slug")),
		Singular:     sanitize.TextField(r.FormValue("singular")),
		Plural:       sanitize.TextField(r.FormValue("plural")),
		Public:       r.FormValue("public") != "",
		HasArchive:   r.FormValue("has_archive") != "",
		Hierarchical: r.FormValue("hierarchical") != "",
		MenuIcon:     sanitize.TextField(r.FormValue("menu_icon")),
		RewriteSlug:  slug.Generate(r.FormValue("rewrite_slug")),
		Supports:     []string{},
	}

	for _, s := range r.Form["supports"] {
		s = slug.FieldName(s)
		if slices.Contains(models.Supports, s) && !slices.Contains(ct.Supports, s) {
			ct.Supports = append(ct.Supports, s)
		}
	}

	labels := r.Form["field_label"]
	kinds := r.Form["field_type"]
	for i, raw := range r.Form["field_name"] {
		name := slug.FieldName(raw)
		if name == "" || ct.Field(name) != nil {
			continue
		}
		label := sanitize.TextField(formAt(labels, i))
		if label == "" {
			label = name
		}
		kind := models.FieldType(formAt(kinds, i))
		if !kind.Valid() {
			kind = models.FieldText
		}
		ct.Fields = append(ct.Fields, models.Field{Name: name, Label: label, Type: kind})
	}
	return ct
}

func formAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
