// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lightwork/internal/store"
)

// apiPerPage is the fixed page size of the listing endpoint.
const apiPerPage = 10

// apiType is the shape a type segment must have to reach the endpoint.
var apiType = regexp.MustCompile(`^[a-z_-]+$`)

// apiOrders is the allow-list of the orderby parameter.
var apiOrders = map[string]store.RecordOrder{
	"date":  store.OrderDate,
	"title": store.OrderTitle,
}

// API serves the public read-only listing endpoint
// GET /api/lightwork/v1/{type}.
type API struct {
	types   *store.ContentTypeStore
	records *store.RecordStore
	baseURL string
}

// NewAPI creates the listing API. baseURL prefixes the returned links.
func NewAPI(types *store.ContentTypeStore, records *store.RecordStore, baseURL string) *API {
	return &API{types: types, records: records, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// apiItem is one record in a listing response.
type apiItem struct {
	ID    string            `json:"ID"`
	Title string            `json:"title"`
	Link  string            `json:"link"`
	ACF   map[string]string `json:"acf,omitempty"`
}

// apiError is the error body of the endpoint.
type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// List returns one page of published records of a public type, newest
// first unless orderby=title. Unknown and non-public types list nothing.
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	if !apiType.MatchString(typ) {
		writeJSON(w, http.StatusNotFound, apiError{
			Code:    "rest_no_route",
			Message: "No route was found matching the URL and request method.",
			Data:    map[string]any{"status": http.StatusNotFound},
		})
		return
	}

	q := r.URL.Query()
	order := store.OrderDate
	if v, ok := q["orderby"]; ok {
		o, known := apiOrders[v[0]]
		if !known {
			invalidParam(w, "orderby", "orderby is not one of date, title.")
			return
		}
		order = o
	}
	page := 1
	if v, ok := q["page"]; ok {
		n, err := strconv.Atoi(v[0])
		if err != nil || n < 1 {
			invalidParam(w, "page", "page must be a positive integer.")
			return
		}
		page = n
	}

	ct, err := a.types.Find(typ)
	if err != nil {
		slog.Error("api find content type failed", "error", err, "type", typ)
		writeJSON(w, http.StatusInternalServerError, apiError{
			Code:    "rest_error",
			Message: "Internal Server Error",
			Data:    map[string]any{"status": http.StatusInternalServerError},
		})
		return
	}
	items := []apiItem{}
	if ct == nil || !ct.Public {
		writeList(w, items, 0)
		return
	}

	recs, total, err := a.records.ListPublished(ct.Slug, order, page, apiPerPage)
	if err != nil {
		slog.Error("api list records failed", "error", err, "type", typ)
		writeJSON(w, http.StatusInternalServerError, apiError{
			Code:    "rest_error",
			Message: "Internal Server Error",
			Data:    map[string]any{"status": http.StatusInternalServerError},
		})
		return
	}
	for _, rec := range recs {
		item := apiItem{
			ID:    rec.ID.String(),
			Title: rec.Title,
			Link:  a.baseURL + "/" + ct.Route() + "/" + rec.Slug,
		}
		if len(rec.Fields) > 0 {
			item.ACF = rec.Fields
		}
		items = append(items, item)
	}
	writeList(w, items, total)
}

// writeList sends a listing with its totals in the X-LW-Total and
// X-LW-TotalPages headers.
func writeList(w http.ResponseWriter, items []apiItem, total int) {
	pages := (total + apiPerPage - 1) / apiPerPage
	w.Header().Set("X-LW-Total", strconv.Itoa(total))
	w.Header().Set("X-LW-TotalPages", strconv.Itoa(pages))
	writeJSON(w, http.StatusOK, items)
}

func invalidParam(w http.ResponseWriter, param, reason string) {
	writeJSON(w, http.StatusBadRequest, apiError{
		Code:    "rest_invalid_param",
		Message: fmt.Sprintf("Invalid parameter(s): %s", param),
		Data: map[string]any{
			"status": http.StatusBadRequest,
			"params": map[string]string{param: reason},
		},
	})
}
