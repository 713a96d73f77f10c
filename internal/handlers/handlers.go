// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for LightWork. Handlers are
// grouped by concern (admin, auth, listing API, public site) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"lightwork/internal/middleware"
	"lightwork/internal/models"
)

// ImageStore uploads the files posted for image fields. *storage.Client
// implements it.
type ImageStore interface {
	UploadImage(ctx context.Context, typ, field string, body io.Reader) (string, error)
	DeleteURL(ctx context.Context, rawURL string) error
}

// BatchJob controls the scheduled field overwrite. *scheduler.Scheduler
// implements it.
type BatchJob interface {
	Active() bool
	NextRun() *time.Time
	Activate() error
	Deactivate() error
}

// pageType is the built-in type under which template and sandbox pages
// are edited like any other record.
var pageType = models.ContentType{
	Slug:     models.PageType,
	Singular: "Page",
	Plural:   "Pages",
	Public:   true,
	Supports: []string{"title", "editor"},
}

// ajaxResult is the envelope of every asynchronous endpoint.
type ajaxResult struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "error", err)
	}
}

func ajaxSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, ajaxResult{Success: true, Data: data})
}

func ajaxFailure(w http.ResponseWriter, status int) {
	middleware.WriteFailure(w, status)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}
