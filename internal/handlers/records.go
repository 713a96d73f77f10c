// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lightwork/internal/models"
	"lightwork/internal/render"
	"lightwork/internal/sanitize"
	"lightwork/internal/slug"
	"lightwork/internal/storage"
	"lightwork/internal/store"
)

// maxRecordForm bounds a record form post, uploads included.
const maxRecordForm = 4 * storage.MaxImageSize

// RecordsList renders every record of a type with a column per field.
func (a *Admin) RecordsList(w http.ResponseWriter, r *http.Request) {
	ct := a.contentType(w, r)
	if ct == nil {
		return
	}
	items, err := a.records.ListByType(ct.Slug)
	if err != nil {
		slog.Error("list records failed", "error", err, "type", ct.Slug)
	}

	a.page(w, r, "records_list", &render.PageData{
		Title:   ct.Plural,
		Section: "types",
		Data: map[string]any{
			"Type":    ct,
			"Records": items,
		},
	})
}

// RecordNew renders the empty record form of a type.
func (a *Admin) RecordNew(w http.ResponseWriter, r *http.Request) {
	ct := a.contentType(w, r)
	if ct == nil {
		return
	}
	rec := &models.Record{Type: ct.Slug, Status: models.RecordDraft, Fields: map[string]string{}}
	a.page(w, r, "record_form", a.recordFormData(ct, rec, true))
}

// RecordCreate handles the new record form submission.
func (a *Admin) RecordCreate(w http.ResponseWriter, r *http.Request) {
	ct := a.contentType(w, r)
	if ct == nil {
		return
	}
	rec := &models.Record{Type: ct.Slug}
	data := a.recordFormData(ct, rec, true)

	uploaded, msg := a.recordFromForm(r, ct, rec, nil)
	if msg != "" {
		a.discardUploads(r.Context(), uploaded)
		a.invalid(w, r, "record_form", msg, data)
		return
	}

	created, err := a.records.Create(rec)
	if err != nil {
		slog.Error("create record failed", "error", err, "type", ct.Slug)
		a.discardUploads(r.Context(), uploaded)
		a.invalid(w, r, "record_form", "Failed to save the record.", data)
		return
	}

	slog.Info("record created", "type", ct.Slug, "id", created.ID, "slug", created.Slug)
	a.invalidateRecord(r.Context(), created, "create")
	a.redirect(w, r, "/admin/types/"+ct.Slug+"/records", "success", ct.Singular+" saved.")
}

// RecordEdit renders the form of an existing record.
func (a *Admin) RecordEdit(w http.ResponseWriter, r *http.Request) {
	ct := a.contentType(w, r)
	if ct == nil {
		return
	}
	rec := a.recordOf(w, r, ct)
	if rec == nil || a.sandboxRedirect(w, r, rec) {
		return
	}
	if rec.Fields == nil {
		rec.Fields = map[string]string{}
	}
	a.page(w, r, "record_form", a.recordFormData(ct, rec, false))
}

// RecordUpdate handles the edit form. Images replaced by a new upload are
// removed from storage once the record is saved.
func (a *Admin) RecordUpdate(w http.ResponseWriter, r *http.Request) {
	ct := a.contentType(w, r)
	if ct == nil {
		return
	}
	rec := a.recordOf(w, r, ct)
	if rec == nil || a.sandboxRedirect(w, r, rec) {
		return
	}
	previous := rec.Fields
	data := a.recordFormData(ct, rec, false)

	uploaded, msg := a.recordFromForm(r, ct, rec, &rec.ID)
	if msg != "" {
		a.discardUploads(r.Context(), uploaded)
		a.invalid(w, r, "record_form", msg, data)
		return
	}

	if err := a.records.Update(rec); err != nil {
		slog.Error("update record failed", "error", err, "id", rec.ID)
		a.discardUploads(r.Context(), uploaded)
		a.invalid(w, r, "record_form", "Failed to save the record.", data)
		return
	}

	var replaced []string
	for _, f := range ct.Fields {
		if f.Type == models.FieldImage && previous[f.Name] != "" && previous[f.Name] != rec.Fields[f.Name] {
			replaced = append(replaced, previous[f.Name])
		}
	}
	a.discardUploads(r.Context(), replaced)

	slog.Info("record updated", "type", ct.Slug, "id", rec.ID, "version", rec.Version)
	a.invalidateRecord(r.Context(), rec, "update")
	a.redirect(w, r, "/admin/types/"+ct.Slug+"/records", "success", ct.Singular+" saved.")
}

// RecordQuickEdit saves the field values posted from the record list.
// Fields missing from the form keep their value and image fields are
// never changed here.
func (a *Admin) RecordQuickEdit(w http.ResponseWriter, r *http.Request) {
	ct := a.contentType(w, r)
	if ct == nil {
		return
	}
	rec := a.recordOf(w, r, ct)
	if rec == nil {
		return
	}
	list := "/admin/types/" + ct.Slug + "/records"

	if err := r.ParseForm(); err != nil {
		a.redirect(w, r, list, "error", "The form could not be read.")
		return
	}
	fields := make(map[string]string)
	for _, f := range ct.Fields {
		raw, ok := r.PostForm["field_"+f.Name]
		if !ok || f.Type == models.FieldImage {
			continue
		}
		v := sanitize.TextField(raw[0])
		if f.Type == models.FieldTextarea {
			v = sanitize.Textarea(raw[0])
		}
		if msg := validateValue(f, v); msg != "" {
			a.redirect(w, r, list, "error", msg)
			return
		}
		fields[f.Name] = v
	}
	if len(fields) == 0 {
		a.redirect(w, r, list, "error", "Nothing to update.")
		return
	}

	if err := a.records.SetFields(rec.ID, fields); err != nil {
		slog.Error("quick edit failed", "error", err, "id", rec.ID)
		a.redirect(w, r, list, "error", "Failed to save the record.")
		return
	}

	slog.Info("record fields updated", "type", ct.Slug, "id", rec.ID, "fields", len(fields))
	a.invalidateRecord(r.Context(), rec, "update")
	a.redirect(w, r, list, "success", ct.Singular+" updated.")
}

// RecordDelete removes a record together with its uploaded images.
func (a *Admin) RecordDelete(w http.ResponseWriter, r *http.Request) {
	ct := a.contentType(w, r)
	if ct == nil {
		return
	}
	rec := a.recordOf(w, r, ct)
	if rec == nil {
		return
	}

	if err := a.records.Delete(rec.ID); err != nil {
		slog.Error("delete record failed", "error", err, "id", rec.ID)
		a.redirect(w, r, "/admin/types/"+ct.Slug+"/records", "error", "Failed to delete the record.")
		return
	}

	var images []string
	for _, f := range ct.Fields {
		if f.Type == models.FieldImage && rec.Fields[f.Name] != "" {
			images = append(images, rec.Fields[f.Name])
		}
	}
	a.discardUploads(r.Context(), images)

	slog.Info("record deleted", "type", ct.Slug, "id", rec.ID)
	a.invalidateRecord(r.Context(), rec, "delete")
	a.redirect(w, r, "/admin/types/"+ct.Slug+"/records", "success", ct.Singular+" deleted.")
}

// recordOf loads the record named by {id}, answering 404 when it is
// missing or belongs to another type.
func (a *Admin) recordOf(w http.ResponseWriter, r *http.Request, ct *models.ContentType) *models.Record {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}
	rec, err := a.records.FindByID(id)
	if err != nil {
		slog.Error("find record failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if rec == nil || rec.Type != ct.Slug {
		http.NotFound(w, r)
		return nil
	}
	return rec
}

// sandboxRedirect sends edits of the sandbox page to the sandbox editor,
// which keeps the page and the stored sandbox document in step. It reports
// whether it answered the request.
func (a *Admin) sandboxRedirect(w http.ResponseWriter, r *http.Request, rec *models.Record) bool {
	if rec.Type != models.PageType {
		return false
	}
	sandbox := rec.Slug == store.SandboxPageSlug
	if !sandbox {
		sb, err := a.sandbox.Load()
		if err != nil {
			slog.Error("load sandbox failed", "error", err)
		}
		sandbox = sb != nil && sb.PageID != nil && *sb.PageID == rec.ID
	}
	if !sandbox {
		return false
	}
	a.redirect(w, r, "/admin/sandbox", "error", "The sandbox page is edited in the Sandbox Editor.")
	return true
}

func (a *Admin) recordFormData(ct *models.ContentType, rec *models.Record, isNew bool) *render.PageData {
	title := "Edit " + ct.Singular
	if isNew {
		title = "Add " + ct.Singular
	}
	return &render.PageData{
		Title:   title,
		Section: "types",
		Data: map[string]any{
			"Type":       ct,
			"Record":     rec,
			"IsNew":      isNew,
			"HasStorage": a.images != nil,
		},
	}
}

// recordFromForm fills rec from the posted form. Values are sanitized for
// their field type, the body is allow-listed and image uploads are stored.
// It returns the URLs uploaded during the call, so a caller whose save
// fails can remove them, and the first validation error.
func (a *Admin) recordFromForm(r *http.Request, ct *models.ContentType, rec *models.Record, exclude *uuid.UUID) ([]string, string) {
	if err := r.ParseMultipartForm(maxRecordForm); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, "The form could not be read. Uploads are limited to 8 MB."
	}

	rec.Title = sanitize.TextField(r.FormValue("title"))
	rec.Slug = slug.Generate(r.FormValue("slug"))
	if rec.Slug == "" {
		rec.Slug = slug.Generate(rec.Title)
	}
	if ct.HasSupport("editor") {
		rec.Body = sanitize.HTML(r.FormValue("body"))
	}
	rec.Status = models.RecordDraft
	if r.FormValue("status") == string(models.RecordPublished) {
		rec.Status = models.RecordPublished
	}

	if msg := validateRecord(rec.Title, rec.Slug, rec.Body); msg != "" {
		return nil, msg
	}
	taken, err := a.records.SlugExists(ct.Slug, rec.Slug, exclude)
	if err != nil {
		slog.Error("check record slug failed", "error", err)
		return nil, "Failed to save the record."
	}
	if taken {
		return nil, "Slug already in use."
	}

	fields := make(map[string]string, len(ct.Fields))
	var uploaded []string
	for _, f := range ct.Fields {
		raw := r.FormValue("field_" + f.Name)
		var v string
		if f.Type == models.FieldTextarea {
			v = sanitize.Textarea(raw)
		} else {
			v = sanitize.TextField(raw)
		}

		if f.Type == models.FieldImage {
			url, msg := a.uploadField(r, ct, f)
			if msg != "" {
				return uploaded, msg
			}
			if url != "" {
				v = url
				uploaded = append(uploaded, url)
			}
		}

		if msg := validateValue(f, v); msg != "" {
			return uploaded, msg
		}
		fields[f.Name] = v
	}
	rec.Fields = fields
	return uploaded, ""
}

// uploadField stores the file posted for an image field, if any.
func (a *Admin) uploadField(r *http.Request, ct *models.ContentType, f models.Field) (string, string) {
	if a.images == nil {
		return "", ""
	}
	file, _, err := r.FormFile("upload_" + f.Name)
	if err != nil {
		return "", ""
	}
	defer file.Close()

	url, err := a.images.UploadImage(r.Context(), ct.Slug, f.Name, file)
	if errors.Is(err, storage.ErrNotImage) {
		return "", f.Label + " must be a JPEG, PNG, GIF or WebP image."
	}
	if err != nil {
		slog.Error("image upload failed", "error", err, "type", ct.Slug, "field", f.Name)
		return "", "Image upload failed."
	}
	return url, ""
}

// discardUploads removes stored images. Failures are logged only.
func (a *Admin) discardUploads(ctx context.Context, urls []string) {
	if a.images == nil {
		return
	}
	for _, u := range urls {
		if err := a.images.DeleteURL(ctx, u); err != nil {
			slog.Warn("delete image failed", "url", u, "error", err)
		}
	}
}
