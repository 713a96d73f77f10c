// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// AJAXPrefix is the path prefix of the asynchronous admin endpoints.
// Failures under it are answered with the JSON envelope.
const AJAXPrefix = "/admin/ajax/"

// WriteFailure answers with {"success":false} and the given status.
func WriteFailure(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"success":false}`))
}

func isAJAX(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, AJAXPrefix)
}

// deny rejects a request with msg as plain text, or with the JSON envelope
// on the asynchronous endpoints.
func deny(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isAJAX(r) {
		WriteFailure(w, status)
		return
	}
	http.Error(w, msg, status)
}
