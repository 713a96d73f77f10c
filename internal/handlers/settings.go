// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"lightwork/internal/render"
)

// cacheLogLimit is how many invalidation events the settings page lists.
const cacheLogLimit = 20

// SettingsPage renders the scheduled job switch and the cache log.
func (a *Admin) SettingsPage(w http.ResponseWriter, r *http.Request) {
	entries, err := a.cacheLog.RecentEntries(cacheLogLimit)
	if err != nil {
		slog.Error("load cache log failed", "error", err)
	}

	a.page(w, r, "settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Data: map[string]any{
			"BatchActive": a.batch.Active(),
			"NextRun":     a.batch.NextRun(),
			"CacheLog":    entries,
		},
	})
}

// BatchToggle activates (active=1) or deactivates the hourly field
// overwrite job.
func (a *Admin) BatchToggle(w http.ResponseWriter, r *http.Request) {
	activate := r.FormValue("active") == "1"

	var err error
	if activate {
		err = a.batch.Activate()
	} else {
		err = a.batch.Deactivate()
	}
	if err != nil {
		slog.Error("toggle batch update failed", "error", err, "activate", activate)
		a.redirect(w, r, "/admin/settings", "error", "Failed to change the batch update.")
		return
	}

	slog.Info("batch update toggled", "active", activate)
	msg := "Batch update deactivated."
	if activate {
		msg = "Batch update activated."
	}
	a.redirect(w, r, "/admin/settings", "success", msg)
}

// CachePurge empties the page cache.
func (a *Admin) CachePurge(w http.ResponseWriter, r *http.Request) {
	a.invalidateAll(r.Context(), "site", "*", "purge")
	a.redirect(w, r, "/admin/settings", "success", "Page cache cleared.")
}
