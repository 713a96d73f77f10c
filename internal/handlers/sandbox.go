// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"lightwork/internal/models"
	"lightwork/internal/render"
	"lightwork/internal/sanitize"
)

// SandboxPage renders the sandbox editor. With ?slug= the fields of that
// content type are offered for dragging into the markup.
func (a *Admin) SandboxPage(w http.ResponseWriter, r *http.Request) {
	sb, err := a.sandbox.Load()
	if err != nil {
		slog.Error("load sandbox failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	markup, css, js := splitSandbox(sb.HTML)

	data := map[string]any{
		"HTML": markup,
		"CSS":  css,
		"JS":   js,
	}
	if s := r.URL.Query().Get("slug"); s != "" {
		ct, err := a.types.Find(s)
		if err != nil {
			slog.Error("find content type failed", "error", err, "slug", s)
		}
		if ct != nil {
			data["Type"] = ct
			data["Fields"] = ct.Fields
		}
	}

	a.page(w, r, "sandbox", &render.PageData{
		Title:   "Sandbox Editor",
		Section: "sandbox",
		Data:    data,
	})
}

// SandboxSave stores the posted html, css and js as the sandbox document
// and mirrors it into the sandbox draft page.
func (a *Admin) SandboxSave(w http.ResponseWriter, r *http.Request) {
	doc := composeSandbox(
		sanitize.Template(r.FormValue("html")),
		sanitize.Textarea(r.FormValue("css")),
		sanitize.Textarea(r.FormValue("js")),
	)

	pageID, err := a.sandbox.Save(doc)
	if err != nil {
		slog.Error("save sandbox failed", "error", err)
		ajaxFailure(w, http.StatusInternalServerError)
		return
	}

	slog.Info("sandbox saved", "page_id", pageID, "bytes", len(doc))
	a.invalidateAll(r.Context(), "page", models.PageType+"/sandbox", "update")
	ajaxSuccess(w, map[string]string{"page_id": pageID.String()})
}

// composeSandbox joins the three editor panes into one document. Empty
// style and script blocks are left out.
func composeSandbox(markup, css, js string) string {
	var b strings.Builder
	b.WriteString(markup)
	if css != "" {
		b.WriteString("<style>" + css + "</style>")
	}
	if js != "" {
		b.WriteString("<script>" + js + "</script>")
	}
	return b.String()
}

// splitSandbox reverses composeSandbox for the editor: a trailing script
// block becomes the js pane and a style block before it the css pane.
func splitSandbox(doc string) (markup, css, js string) {
	markup, js = trailingBlock(doc, "script")
	markup, css = trailingBlock(markup, "style")
	return markup, css, js
}

func trailingBlock(doc, tag string) (rest, inner string) {
	open, closing := "<"+tag+">", "</"+tag+">"
	if !strings.HasSuffix(doc, closing) {
		return doc, ""
	}
	i := strings.LastIndex(doc, open)
	if i < 0 {
		return doc, ""
	}
	return doc[:i], doc[i+len(open) : len(doc)-len(closing)]
}
