// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"lightwork/internal/models"
)

func TestTypeFromForm(t *testing.T) {
	form := url.Values{
		"slug":         {"  My Book<b>s</b>!!"},
		"singular":     {" <em>Book</em>  "},
		"plural":       {"Books\n\tall"},
		"public":       {"1"},
		"rewrite_slug": {"Livres Été"},
		"menu_icon":    {"dashicons-book"},
		"supports":     {"title", "editor", "bogus", "title"},
		"field_name":   {"Author", "", "author", "Cover Image", "pages"},
		"field_label":  {"", "ignored", "Dup", "Cover", "Pages"},
		"field_type":   {"text", "text", "textarea", "image", "spinner"},
	}
	r := postForm("/admin/types", form)

	ct := typeFromForm(r)

	if ct.Slug != "mybookbsb" {
		t.Errorf("Slug = %q, want mybookbsb", ct.Slug)
	}
	if ct.Singular != "Book" || ct.Plural != "Books all" {
		t.Errorf("labels = %q / %q", ct.Singular, ct.Plural)
	}
	if !ct.Public || ct.HasArchive || ct.Hierarchical {
		t.Errorf("flags = public %v archive %v hierarchical %v", ct.Public, ct.HasArchive, ct.Hierarchical)
	}
	if ct.RewriteSlug != "livres-ete" {
		t.Errorf("RewriteSlug = %q, want livres-ete", ct.RewriteSlug)
	}
	if !reflect.DeepEqual(ct.Supports, []string{"title", "editor"}) {
		t.Errorf("Supports = %v", ct.Supports)
	}

	want := []models.Field{
		{Name: "author", Label: "author", Type: models.FieldText},
		{Name: "coverimage", Label: "Cover", Type: models.FieldImage},
		{Name: "pages", Label: "Pages", Type: models.FieldText},
	}
	if !reflect.DeepEqual(ct.Fields, want) {
		t.Errorf("Fields = %+v\nwant %+v", ct.Fields, want)
	}
}

func TestTypeFromFormSlugLimit(t *testing.T) {
	r := postForm("/admin/types", url.Values{"slug": {strings.Repeat("a", 30)}})
	if got := typeFromForm(r).Slug; len(got) != 20 {
		t.Errorf("slug length = %d, want 20", len(got))
	}
}

func bookForm(slug string) url.Values {
	return url.Values{
		"slug":        {slug},
		"singular":    {"Book"},
		"plural":      {"Books"},
		"public":      {"1"},
		"has_archive": {"1"},
		"supports":    {"title", "editor"},
		"field_name":  {"author", "cover"},
		"field_label": {"Author", "Cover"},
		"field_type":  {"text", "image"},
	}
}

func TestTypeCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession("admin", true)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing plural", url.Values{"slug": {"lwt_x"}, "singular": {"X"}}, "All fields are required."},
		{"tags only label", url.Values{"slug": {"lwt_x"}, "singular": {"<b></b>"}, "plural": {"Xs"}}, "All fields are required."},
		{"reserved", url.Values{"slug": {"admin"}, "singular": {"A"}, "plural": {"As"}}, "That slug is reserved."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParams(postForm("/admin/types", tt.form), sess)
			rec := httptest.NewRecorder()
			env.Admin.TypeCreate(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body should contain %q", tt.want)
			}
		})
	}

	if ct, _ := env.Types.Find("lwt_x"); ct != nil {
		t.Error("invalid type should not be stored")
	}
}

func TestTypeLifecycle(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession("admin", true)
	t.Cleanup(func() { cleanRecords(t, env.DB, "lwt_book", "lwt_novel") })

	// Create.
	req := withURLParams(postForm("/admin/types", bookForm("lwt_book")), sess)
	rec := httptest.NewRecorder()
	env.Admin.TypeCreate(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	ct, err := env.Types.Find("lwt_book")
	if err != nil || ct == nil {
		t.Fatalf("Find after create: %v, %v", ct, err)
	}
	if len(ct.Fields) != 2 || ct.Field("cover").Type != models.FieldImage {
		t.Errorf("fields = %+v", ct.Fields)
	}

	// Duplicate slug.
	rec = httptest.NewRecorder()
	env.Admin.TypeCreate(rec, withURLParams(postForm("/admin/types", bookForm("lwt_book")), sess))
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "Slug already in use.") {
		t.Errorf("duplicate create = %d", rec.Code)
	}

	// A record and a mapping that must follow a rename.
	r1, err := env.Records.Create(&models.Record{Type: "lwt_book", Title: "Dune", Slug: "dune"})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if err := env.Mappings.Set("lwt_book", "author", "#a"); err != nil {
		t.Fatalf("set mapping: %v", err)
	}

	// Rename.
	rec = httptest.NewRecorder()
	req = withURLParams(postForm("/admin/types/lwt_book", bookForm("lwt_novel")), sess, "slug", "lwt_book")
	env.Admin.TypeUpdate(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("update status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if old, _ := env.Types.Find("lwt_book"); old != nil {
		t.Error("old slug should be gone")
	}
	moved, _ := env.Records.FindByID(r1.ID)
	if moved == nil || moved.Type != "lwt_novel" {
		t.Errorf("record type after rename = %+v", moved)
	}
	m, _ := env.Mappings.Get("lwt_novel")
	if m["author"] != "#a" {
		t.Errorf("mapping after rename = %v", m)
	}

	// Delete keeps records.
	rec = httptest.NewRecorder()
	env.Admin.TypeDelete(rec, withURLParams(postForm("/admin/types/lwt_novel/delete", nil), sess, "slug", "lwt_novel"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if gone, _ := env.Types.Find("lwt_novel"); gone != nil {
		t.Error("type should be deleted")
	}
	if m, _ := env.Mappings.Get("lwt_novel"); len(m) != 0 {
		t.Errorf("mapping should be deleted, got %v", m)
	}
	kept, _ := env.Records.FindByID(r1.ID)
	if kept == nil || kept.Type != "lwt_novel" {
		t.Errorf("record after delete = %+v", kept)
	}

	// Deleting again is a 404.
	rec = httptest.NewRecorder()
	env.Admin.TypeDelete(rec, withURLParams(postForm("/admin/types/lwt_novel/delete", nil), sess, "slug", "lwt_novel"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestTypeCreateWithTemplatePage(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession("admin", true)
	t.Cleanup(func() {
		cleanRecords(t, env.DB, "lwt_film")
		cleanPages(t, env.DB, "film-template", "film-template-2")
	})
	cleanPages(t, env.DB, "film-template", "film-template-2")

	form := bookForm("lwt_film")
	form.Set("singular", "Film")
	form.Set("plural", "Films")
	form.Set("associate_template", "1")

	rec := httptest.NewRecorder()
	env.Admin.TypeCreate(rec, withURLParams(postForm("/admin/types", form), sess))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}

	ct, _ := env.Types.Find("lwt_film")
	if ct == nil || ct.TemplatePage == nil {
		t.Fatalf("type should link a template page: %+v", ct)
	}
	page, _ := env.Records.FindByID(*ct.TemplatePage)
	if page == nil {
		t.Fatal("template page not found")
	}
	if page.Type != models.PageType || page.Title != "Film Template" || page.Status != models.RecordDraft {
		t.Errorf("template page = %+v", page)
	}

	// Editing with the page selected keeps the same page.
	form.Set("template_page", page.ID.String())
	rec = httptest.NewRecorder()
	env.Admin.TypeUpdate(rec, withURLParams(postForm("/admin/types/lwt_film", form), sess, "slug", "lwt_film"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("update status = %d", rec.Code)
	}
	ct, _ = env.Types.Find("lwt_film")
	if ct.TemplatePage == nil || *ct.TemplatePage != page.ID {
		t.Errorf("template page changed: %v", ct.TemplatePage)
	}
}

func TestTypeSaveLeavesNoOrphanPage(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession("admin", true)
	t.Cleanup(func() {
		cleanRecords(t, env.DB, "lwt_shelf", "lwt_rack")
		cleanPages(t, env.DB, "ghost-template", "rack-template")
	})
	cleanPages(t, env.DB, "ghost-template", "rack-template")

	pageExists := func(slug string) bool {
		t.Helper()
		taken, err := env.Records.SlugExists(models.PageType, slug, nil)
		if err != nil {
			t.Fatalf("SlugExists: %v", err)
		}
		return taken
	}

	// Updating a type that does not exist.
	form := bookForm("lwt_ghost")
	form.Set("singular", "Ghost")
	form.Set("associate_template", "1")
	rec := httptest.NewRecorder()
	env.Admin.TypeUpdate(rec, withURLParams(postForm("/admin/types/lwt_ghost", form), sess, "slug", "lwt_ghost"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", rec.Code)
	}
	if pageExists("ghost-template") {
		t.Error("update of a missing type created a template page")
	}

	// Creating a type whose URL is already served by another type.
	shelf := bookForm("lwt_shelf")
	shelf.Set("rewrite_slug", "lwtshelf")
	rec = httptest.NewRecorder()
	env.Admin.TypeCreate(rec, withURLParams(postForm("/admin/types", shelf), sess))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create shelf = %d; body: %s", rec.Code, rec.Body.String())
	}

	rack := bookForm("lwt_rack")
	rack.Set("singular", "Rack")
	rack.Set("rewrite_slug", "lwtshelf")
	rack.Set("associate_template", "1")
	rec = httptest.NewRecorder()
	env.Admin.TypeCreate(rec, withURLParams(postForm("/admin/types", rack), sess))
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), routeTakenMsg) {
		t.Errorf("create on a taken route = %d", rec.Code)
	}
	if ct, _ := env.Types.Find("lwt_rack"); ct != nil {
		t.Error("type on a taken route should not be stored")
	}
	if pageExists("rack-template") {
		t.Error("rejected create left its template page behind")
	}
}

func TestTypePages(t *testing.T) {
	env := newTestEnv(t)
	sess := testSession("admin", true)

	rec := httptest.NewRecorder()
	env.Admin.TypeNew(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/admin/types/new", nil), sess))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Add Content Type") {
		t.Errorf("new form = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.Admin.TypesList(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/admin/types", nil), sess))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Content Types") {
		t.Errorf("list = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.Admin.TypeEdit(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/admin/types/nope/edit", nil), sess, "slug", "lwt_missing"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("edit missing = %d, want 404", rec.Code)
	}
}
