// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders public pages. A record whose content type links
// a template page is rendered by filling that page's markup with the
// record's field values, following the type's field mapping; other
// records fall back to a built-in layout.
package engine

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"lightwork/internal/models"
	"lightwork/internal/selector"
)

// FieldAttr marks an element that receives a field value wherever it
// sits in the template.
const FieldAttr = "data-lw-field"

// PageSource loads template pages.
type PageSource interface {
	FindByID(id uuid.UUID) (*models.Record, error)
}

// MappingSource loads the field mapping of a content type.
type MappingSource interface {
	Get(slug string) (models.FieldMapping, error)
}

// ArchiveItem is one entry of an archive listing.
type ArchiveItem struct {
	Title string
	Link  string
}

// Engine renders records, archives and pages to complete HTML documents.
type Engine struct {
	pages     PageSource
	mappings  MappingSource
	selectors *selectorCache
	record    *template.Template
	archive   *template.Template
	siteName  string
}

// New creates a rendering engine. siteName appears in document titles.
func New(pages PageSource, mappings MappingSource, siteName string) *Engine {
	return &Engine{
		pages:     pages,
		mappings:  mappings,
		selectors: newSelectorCache(),
		record:    template.Must(template.New("record").Parse(recordLayout)),
		archive:   template.Must(template.New("archive").Parse(archiveLayout)),
		siteName:  siteName,
	}
}

// Document wraps a page body in the document shell used both for the
// admin preview and for public rendering, so element indices and paths
// computed on one apply to the other.
func Document(title, body string) string {
	return `<!DOCTYPE html><html><head><meta charset="utf-8"><title>` +
		html.EscapeString(title) + `</title></head><body>` + body + `</body></html>`
}

// ParseDocument parses a page body wrapped by Document.
func ParseDocument(title, body string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(Document(title, body)))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// Body serializes the children of doc's body element, the inverse of
// ParseDocument.
func Body(doc *html.Node) (string, error) {
	body := cascadia.Query(doc, bodySel)
	if body == nil {
		return "", fmt.Errorf("document has no body")
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render body: %w", err)
		}
	}
	return buf.String(), nil
}

var bodySel = cascadia.MustCompile("body")

// RenderPage renders a page record as is.
func (e *Engine) RenderPage(page *models.Record) []byte {
	return []byte(Document(page.Title, page.Body))
}

// RenderRecord renders a record of content type ct. When the type links a
// template page that still exists, the page is filled with the record's
// values; otherwise the built-in layout is used.
func (e *Engine) RenderRecord(ct *models.ContentType, rec *models.Record) ([]byte, error) {
	if ct.TemplatePage != nil {
		page, err := e.pages.FindByID(*ct.TemplatePage)
		if err != nil {
			return nil, fmt.Errorf("load template page: %w", err)
		}
		if page != nil {
			mapping, err := e.mappings.Get(ct.Slug)
			if err != nil {
				return nil, fmt.Errorf("load mapping: %w", err)
			}
			return e.renderTemplate(page, ct, mapping, rec)
		}
		slog.Warn("template page missing, using default layout",
			"type", ct.Slug, "page_id", ct.TemplatePage.String())
	}
	return e.renderLayout(ct, rec)
}

func (e *Engine) renderTemplate(page *models.Record, ct *models.ContentType, mapping models.FieldMapping, rec *models.Record) ([]byte, error) {
	doc, err := ParseDocument(rec.Title, page.Body)
	if err != nil {
		return nil, err
	}
	e.Fill(doc, ct, mapping, rec)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

// Fill writes rec's field values into doc. For every field of ct the
// element matched by its mapped selector is filled, then every element
// carrying data-lw-field with the field's name, and finally {{name}}
// placeholders left in text and attributes are substituted. Unresolvable
// selectors are skipped.
func (e *Engine) Fill(doc *html.Node, ct *models.ContentType, mapping models.FieldMapping, rec *models.Record) {
	values := make(map[string]string, len(ct.Fields)+1)
	values["title"] = rec.Title
	for _, f := range ct.Fields {
		values[f.Name] = rec.Fields[f.Name]
	}

	for _, f := range ct.Fields {
		v := values[f.Name]
		if path := mapping[f.Name]; path != "" {
			if n := e.resolve(doc, path); n != nil {
				setValue(n, f, v)
			}
		}
		for _, n := range selector.Elements(doc) {
			if attr(n, FieldAttr) == f.Name {
				setValue(n, f, v)
			}
		}
	}

	replacePlaceholders(doc, values)
}

func (e *Engine) resolve(doc *html.Node, path string) *html.Node {
	sel, err := e.selectors.compile(path)
	if err != nil {
		slog.Debug("unusable field selector", "path", path, "error", err)
		return nil
	}
	return cascadia.Query(doc, sel)
}

// setValue writes v into n. Image fields set the src of n (when n is an
// img), of its first img descendant, or of a newly appended img. Other
// fields replace n's children with the text; textarea line breaks become
// <br> elements.
func setValue(n *html.Node, f models.Field, v string) {
	if f.Type == models.FieldImage {
		img := n
		if n.DataAtom != atom.Img {
			img = firstImg(n)
		}
		if img == nil {
			img = &html.Node{Type: html.ElementNode, Data: "img", DataAtom: atom.Img}
			img.Attr = []html.Attribute{{Key: "alt", Val: f.Label}}
			n.AppendChild(img)
		}
		setAttr(img, "src", v)
		return
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if f.Type != models.FieldTextarea {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
		return
	}
	for i, line := range strings.Split(strings.ReplaceAll(v, "\r\n", "\n"), "\n") {
		if i > 0 {
			n.AppendChild(&html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br})
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: line})
	}
}

func firstImg(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Img {
			return c
		}
		if found := firstImg(c); found != nil {
			return found
		}
	}
	return nil
}

// replacePlaceholders substitutes {{name}} in text nodes and attribute
// values. Script and style contents are left alone.
func replacePlaceholders(n *html.Node, values map[string]string) {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	r := strings.NewReplacer(pairs...)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if strings.Contains(n.Data, "{{") {
				n.Data = r.Replace(n.Data)
			}
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			for i := range n.Attr {
				if strings.Contains(n.Attr[i].Val, "{{") {
					n.Attr[i].Val = r.Replace(n.Attr[i].Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// layoutField is one field row of the built-in record layout.
type layoutField struct {
	Name  string
	Label string
	Value string
	Image bool
}

func (e *Engine) renderLayout(ct *models.ContentType, rec *models.Record) ([]byte, error) {
	fields := make([]layoutField, 0, len(ct.Fields))
	for _, f := range ct.Fields {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		fields = append(fields, layoutField{
			Name:  f.Name,
			Label: label,
			Value: rec.Fields[f.Name],
			Image: f.Type == models.FieldImage,
		})
	}

	data := struct {
		SiteName string
		Type     string
		Title    string
		Body     template.HTML
		Fields   []layoutField
	}{
		SiteName: e.siteName,
		Type:     ct.Slug,
		Title:    rec.Title,
		// Bodies are allow-listed when saved.
		Body:   template.HTML(rec.Body),
		Fields: fields,
	}

	var buf bytes.Buffer
	if err := e.record.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute record layout: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderArchive renders one page of a type's archive. prev and next are
// the neighbouring page numbers, zero when there is none.
func (e *Engine) RenderArchive(ct *models.ContentType, items []ArchiveItem, prev, next int) ([]byte, error) {
	data := struct {
		SiteName string
		Type     string
		Title    string
		Items    []ArchiveItem
		Prev     int
		Next     int
	}{
		SiteName: e.siteName,
		Type:     ct.Slug,
		Title:    ct.Plural,
		Items:    items,
		Prev:     prev,
		Next:     next,
	}

	var buf bytes.Buffer
	if err := e.archive.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute archive layout: %w", err)
	}
	return buf.Bytes(), nil
}
