// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lightwork/internal/engine"
	"lightwork/internal/models"
	"lightwork/internal/render"
	"lightwork/internal/sanitize"
	"lightwork/internal/selector"
	"lightwork/internal/store"
)

// mappingFieldPrefix names the hidden inputs of the mapping form:
// lw-mapping[<field>].
const mappingFieldPrefix = "lw-mapping["

// TemplatePage renders the field mapping editor of a type: a preview of
// its template page and the fields still waiting for a selector.
func (a *Admin) TemplatePage(w http.ResponseWriter, r *http.Request) {
	ct := a.definedType(w, r)
	if ct == nil {
		return
	}

	pd := &render.PageData{
		Title:   "Template Editor: " + ct.Plural,
		Section: "types",
		Data:    map[string]any{"Type": ct},
	}

	page, err := a.templatePage(ct)
	if err != nil {
		slog.Error("load template page failed", "error", err, "type", ct.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if page == nil {
		pd.Data["NoTemplate"] = true
		a.page(w, r, "template_mapping", pd)
		return
	}

	mapping, err := a.mappings.Get(ct.Slug)
	if err != nil {
		slog.Error("load mapping failed", "error", err, "type", ct.Slug)
		mapping = models.FieldMapping{}
	}

	var unmapped []models.Field
	var mapped []render.MappedField
	for _, f := range ct.Fields {
		if sel := mapping[f.Name]; sel != "" {
			mapped = append(mapped, render.MappedField{Label: f.Label, Selector: sel})
		} else {
			unmapped = append(unmapped, f)
		}
	}

	pd.Data["Page"] = page
	pd.Data["PreviewURL"] = "/admin/preview/" + page.ID.String()
	pd.Data["Unmapped"] = unmapped
	pd.Data["Mapped"] = mapped
	a.page(w, r, "template_mapping", pd)
}

// TemplateSave handles the mapping form. Posted selectors are merged over
// the stored mapping; the result is saved only when every field of the
// type has a selector.
func (a *Admin) TemplateSave(w http.ResponseWriter, r *http.Request) {
	ct := a.definedType(w, r)
	if ct == nil {
		return
	}
	back := "/admin/types/" + ct.Slug + "/template"

	mapping, err := a.mappings.Get(ct.Slug)
	if err != nil {
		slog.Error("load mapping failed", "error", err, "type", ct.Slug)
		a.redirect(w, r, back, "error", "Failed to save the template.")
		return
	}
	if err := r.ParseForm(); err != nil {
		a.redirect(w, r, back, "error", "Failed to save the template.")
		return
	}
	for key, values := range r.PostForm {
		name, ok := mappingField(key)
		if !ok || len(values) == 0 {
			continue
		}
		if sel := sanitize.TextField(values[0]); sel != "" {
			mapping[name] = sel
		}
	}

	err = a.mappings.Replace(ct, mapping)
	if errors.Is(err, store.ErrIncompleteMapping) {
		a.redirect(w, r, back, "error", "Map all fields before saving.")
		return
	}
	if err != nil {
		slog.Error("save mapping failed", "error", err, "type", ct.Slug)
		a.redirect(w, r, back, "error", "Failed to save the template.")
		return
	}

	a.invalidateAll(r.Context(), "mapping", ct.Slug, "update")
	a.redirect(w, r, back, "success", "Template saved.")
}

// mappingField extracts the field name from an lw-mapping[<name>] key.
func mappingField(key string) (string, bool) {
	if !strings.HasPrefix(key, mappingFieldPrefix) || !strings.HasSuffix(key, "]") {
		return "", false
	}
	name := key[len(mappingFieldPrefix) : len(key)-1]
	return name, name != ""
}

// UpdateMapping stores one field's selector from the drag-and-drop editor.
// The selector is either posted as is, or computed from a node index into
// the type's template page; with anchor=1 the node is given its own id
// first and the page is saved with it.
func (a *Admin) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	typeSlug := sanitize.TextField(r.FormValue("slug"))
	field := sanitize.TextField(r.FormValue("field"))
	if typeSlug == "" || field == "" {
		ajaxFailure(w, http.StatusBadRequest)
		return
	}

	ct, err := a.types.Find(typeSlug)
	if err != nil {
		slog.Error("find content type failed", "error", err, "slug", typeSlug)
		ajaxFailure(w, http.StatusInternalServerError)
		return
	}
	if ct == nil || ct.Field(field) == nil {
		ajaxFailure(w, http.StatusNotFound)
		return
	}

	sel := sanitize.TextField(r.FormValue("selector"))
	if sel == "" {
		node, err := strconv.Atoi(r.FormValue("node"))
		if err != nil || node < 0 {
			ajaxFailure(w, http.StatusBadRequest)
			return
		}
		var status int
		sel, status = a.selectorForNode(r, ct, node, r.FormValue("anchor") == "1")
		if sel == "" {
			ajaxFailure(w, status)
			return
		}
	}

	if err := a.mappings.Set(ct.Slug, field, sel); err != nil {
		slog.Error("update mapping failed", "error", err, "type", ct.Slug, "field", field)
		ajaxFailure(w, http.StatusInternalServerError)
		return
	}

	slog.Info("field mapped", "type", ct.Slug, "field", field, "selector", sel)
	a.invalidateAll(r.Context(), "mapping", ct.Slug, "update")
	ajaxSuccess(w, map[string]string{"selector": sel})
}

// selectorForNode computes the selector of element index node in the
// template page of ct. On failure it returns "" and the status to answer
// with.
func (a *Admin) selectorForNode(r *http.Request, ct *models.ContentType, node int, anchor bool) (string, int) {
	page, err := a.templatePage(ct)
	if err != nil {
		slog.Error("load template page failed", "error", err, "type", ct.Slug)
		return "", http.StatusInternalServerError
	}
	if page == nil {
		return "", http.StatusConflict
	}

	doc, err := engine.ParseDocument(page.Title, page.Body)
	if err != nil {
		return "", http.StatusInternalServerError
	}
	n := selector.NodeAt(doc, node)
	if n == nil {
		return "", http.StatusBadRequest
	}
	if !anchor {
		return selector.Path(n), 0
	}

	sel := selector.Anchor(n)
	body, err := engine.Body(doc)
	if err != nil {
		slog.Error("serialize template page failed", "error", err, "page_id", page.ID)
		return "", http.StatusInternalServerError
	}
	if err := a.saveTemplateBody(page, body); err != nil {
		slog.Error("save anchored template failed", "error", err, "page_id", page.ID)
		return "", http.StatusInternalServerError
	}
	return sel, 0
}

// saveTemplateBody writes a template page body. The sandbox page is saved
// through the sandbox so its document stays in step.
func (a *Admin) saveTemplateBody(page *models.Record, body string) error {
	sb, err := a.sandbox.Load()
	if err != nil {
		return err
	}
	if sb.PageID != nil && *sb.PageID == page.ID {
		_, err := a.sandbox.Save(body)
		return err
	}
	return a.records.UpdateBody(page.ID, body)
}

// templatePage returns the page linked to ct, or nil when there is none.
func (a *Admin) templatePage(ct *models.ContentType) (*models.Record, error) {
	if ct.TemplatePage == nil {
		return nil, nil
	}
	page, err := a.records.FindByID(*ct.TemplatePage)
	if err != nil || page == nil || page.Type != models.PageType {
		return nil, err
	}
	return page, nil
}

// Preview renders any record, drafts included, the way the public site
// would. Template pages are previewed as plain documents so their element
// indices match what the mapping endpoint resolves.
func (a *Admin) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	rec, err := a.records.FindByID(id)
	if err != nil {
		slog.Error("find record failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}

	if rec.Type == models.PageType {
		writeHTML(w, a.engine.RenderPage(rec))
		return
	}

	ct, err := a.types.Find(rec.Type)
	if err != nil || ct == nil {
		http.NotFound(w, r)
		return
	}
	out, err := a.engine.RenderRecord(ct, rec)
	if err != nil {
		slog.Error("render preview failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, out)
}
