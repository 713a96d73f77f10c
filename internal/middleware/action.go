// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

const (
	// ActionField is the form field carrying a per-action token.
	ActionField = "nonce"

	// ActionHeader carries the per-action token on script requests.
	ActionHeader = "X-LW-Nonce"

	// actionTick is half the lifetime of a token: a token issued in one
	// tick stays valid through the next.
	actionTick = 12 * time.Hour
)

// Actions issues and checks per-action anti-forgery tokens. A token binds
// a session, an action name and a 12-hour tick with HMAC-SHA256.
type Actions struct {
	secret []byte
	now    func() time.Time
}

// NewActions creates a token issuer keyed by secret.
func NewActions(secret string) *Actions {
	return &Actions{secret: []byte(secret), now: time.Now}
}

// Token returns the token for action in the given session.
func (a *Actions) Token(sessionID, action string) string {
	return a.sign(sessionID, action, a.tick())
}

// Verify reports whether token was issued for action in the session during
// the current or the previous tick.
func (a *Actions) Verify(sessionID, action, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	tick := a.tick()
	for _, t := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(a.sign(sessionID, action, t)), []byte(token)) {
			return true
		}
	}
	return false
}

func (a *Actions) tick() int64 {
	return a.now().Unix() / int64(actionTick/time.Second)
}

func (a *Actions) sign(sessionID, action string, tick int64) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(action))
	mac.Write([]byte{0})
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))[:20]
}

// RequireAction rejects requests whose token does not match the action
// named by actionFor. The token is read from the "nonce" form field or the
// X-LW-Nonce header. Must be applied after LoadSession.
func RequireAction(a *Actions, actionFor func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(ActionHeader)
			if token == "" {
				token = r.FormValue(ActionField)
			}
			var sessionID string
			if sess := SessionFromCtx(r.Context()); sess != nil {
				sessionID = sess.ID
			}
			if !a.Verify(sessionID, actionFor(r), token) {
				deny(w, r, http.StatusForbidden, "Invalid or expired link")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Action returns an actionFor function naming a fixed action.
func Action(name string) func(*http.Request) string {
	return func(*http.Request) string { return name }
}
