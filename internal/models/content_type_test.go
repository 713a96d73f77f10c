package models

import (
	"reflect"
	"testing"
)

func sampleType() *ContentType {
	return &ContentType{
		Slug:     "book",
		Singular: "Book",
		Plural:   "Books",
		Supports: []string{"title", "editor"},
		Fields: []Field{
			{Name: "author", Label: "Author", Type: FieldText},
			{Name: "cover", Label: "Cover", Type: FieldImage},
			{Name: "pages", Label: "Pages", Type: FieldNumber},
		},
	}
}

func TestFieldTypeValid(t *testing.T) {
	tests := []struct {
		ft   FieldType
		want bool
	}{
		{FieldText, true},
		{FieldTextarea, true},
		{FieldNumber, true},
		{FieldImage, true},
		{FieldType("select"), false},
		{FieldType(""), false},
		{FieldType("TEXT"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.ft), func(t *testing.T) {
			if got := tt.ft.Valid(); got != tt.want {
				t.Errorf("FieldType(%q).Valid() = %v, want %v", tt.ft, got, tt.want)
			}
		})
	}
}

func TestContentTypeField(t *testing.T) {
	ct := sampleType()

	if f := ct.Field("cover"); f == nil || f.Type != FieldImage {
		t.Errorf("Field(cover) = %+v, want image field", f)
	}
	if f := ct.Field("missing"); f != nil {
		t.Errorf("Field(missing) = %+v, want nil", f)
	}
}

func TestContentTypeFieldNames(t *testing.T) {
	got := sampleType().FieldNames()
	want := []string{"author", "cover", "pages"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FieldNames() = %v, want %v", got, want)
	}

	empty := (&ContentType{}).FieldNames()
	if len(empty) != 0 {
		t.Errorf("FieldNames() on empty type = %v, want empty", empty)
	}
}

func TestContentTypeRoute(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		rewrite string
		want    string
	}{
		{name: "defaults to slug", slug: "book", want: "book"},
		{name: "rewrite wins", slug: "book", rewrite: "library", want: "library"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := &ContentType{Slug: tt.slug, RewriteSlug: tt.rewrite}
			if got := ct.Route(); got != tt.want {
				t.Errorf("Route() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentTypeHasSupport(t *testing.T) {
	ct := sampleType()
	if !ct.HasSupport("editor") {
		t.Error("HasSupport(editor) = false, want true")
	}
	if ct.HasSupport("thumbnail") {
		t.Error("HasSupport(thumbnail) = true, want false")
	}
}

func TestFieldMappingMissing(t *testing.T) {
	ct := sampleType()

	tests := []struct {
		name    string
		mapping FieldMapping
		want    []string
	}{
		{name: "nil mapping", mapping: nil, want: []string{"author", "cover", "pages"}},
		{
			name:    "partially mapped",
			mapping: FieldMapping{"author": "#a", "pages": ""},
			want:    []string{"cover", "pages"},
		},
		{
			name:    "fully mapped with extras",
			mapping: FieldMapping{"author": "#a", "cover": "img", "pages": "p:eq(2)", "stale": "#x"},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mapping.Missing(ct)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordIsPublished(t *testing.T) {
	tests := []struct {
		status RecordStatus
		want   bool
	}{
		{RecordPublished, true},
		{RecordDraft, false},
		{RecordStatus(""), false},
	}

	for _, tt := range tests {
		r := &Record{Status: tt.status}
		if got := r.IsPublished(); got != tt.want {
			t.Errorf("Record{Status: %q}.IsPublished() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
