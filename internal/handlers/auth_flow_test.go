// auth_flow_test.go covers the Auth handlers: login, 2FA setup and
// verification, and logout. Tests that need PostgreSQL or Valkey are
// skipped when those services are unavailable.
package handlers

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"lightwork/internal/models"
	"lightwork/internal/session"
)

const testSecret = "JBSWY3DPEHPK3PXP"

// testUser creates a throwaway operator and removes it after the test.
func testUser(t *testing.T, env *testEnv, enrolled bool) *models.User {
	t.Helper()
	email := "lwt-" + uuid.NewString()[:8] + "@lightwork.local"
	u, err := env.Users.Create(email, "correct horse", "Tester", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.Users.Delete(u.ID) })

	if enrolled {
		if err := env.Users.SetTOTPSecret(u.ID, testSecret); err != nil {
			t.Fatal(err)
		}
		if err := env.Users.EnableTOTP(u.ID); err != nil {
			t.Fatal(err)
		}
		u.TOTPSecret = new(string)
		*u.TOTPSecret = testSecret
		u.TOTPEnabled = true
	}
	return u
}

// liveSession stores a session for u in Valkey and returns a request
// carrying its cookie and data.
func liveSession(t *testing.T, env *testEnv, u *models.User, r *http.Request) (*http.Request, *session.Data) {
	t.Helper()
	data := &session.Data{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
	rec := httptest.NewRecorder()
	if _, err := env.Sessions.Create(r.Context(), rec, data); err != nil {
		t.Fatalf("create session: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r.WithContext(ctxWithSession(r.Context(), data)), data
}

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		sess     *session.Data
		wantCode int
		wantLoc  string
	}{
		{"anonymous", nil, http.StatusOK, ""},
		{"half signed in", testSession("admin", false), http.StatusOK, ""},
		{"signed in", testSession("admin", true), http.StatusSeeOther, "/admin/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParams(httptest.NewRequest(http.MethodGet, "/admin/login", nil), tt.sess)
			rec := httptest.NewRecorder()
			env.Auth.LoginPage(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, want %q", loc, tt.wantLoc)
			}
		})
	}
}

func TestLoginSubmit(t *testing.T) {
	env := newTestEnv(t)
	fresh := testUser(t, env, false)
	enrolled := testUser(t, env, true)

	tests := []struct {
		name     string
		email    string
		password string
		wantCode int
		wantLoc  string
	}{
		{"needs setup", fresh.Email, "correct horse", http.StatusSeeOther, "/admin/2fa/setup"},
		{"enrolled", enrolled.Email, "correct horse", http.StatusSeeOther, "/admin/2fa/verify"},
		{"wrong password", fresh.Email, "battery staple", http.StatusUnauthorized, ""},
		{"unknown email", "nobody@lightwork.local", "x", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"email": {tt.email}, "password": {tt.password}}
			rec := httptest.NewRecorder()
			env.Auth.LoginSubmit(rec, postForm("/admin/login", form))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantLoc == "" {
				if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
					t.Error("login form should show the error")
				}
				return
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, want %q", loc, tt.wantLoc)
			}
			found := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == session.CookieName && c.Value != "" {
					found = true
				}
			}
			if !found {
				t.Error("session cookie should be set")
			}
		})
	}
}

func TestTwoFAPagesWithoutSession(t *testing.T) {
	a := &Auth{}
	handlers := map[string]http.HandlerFunc{
		"setup":  a.TwoFASetupPage,
		"verify": a.TwoFAVerifyPage,
		"submit": a.TwoFAVerifySubmit,
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/admin/2fa/"+name, nil))
			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/login" {
				t.Errorf("got %d %q, want redirect to login", rec.Code, rec.Header().Get("Location"))
			}
		})
	}
}

func TestTwoFASetupPage(t *testing.T) {
	env := newTestEnv(t)
	u := testUser(t, env, false)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/admin/2fa/setup", nil), &session.Data{
		ID: "sess-setup", UserID: u.ID, Email: u.Email, Role: string(u.Role),
	})
	rec := httptest.NewRecorder()
	env.Auth.TwoFASetupPage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "data:image/png;base64,") {
		t.Error("setup page should embed the QR code")
	}
	stored, _ := env.Users.FindByID(u.ID)
	if stored.TOTPSecret == nil || *stored.TOTPSecret == "" {
		t.Error("secret should be stored")
	}
	if stored.TOTPEnabled {
		t.Error("2FA should not be enabled before the first code")
	}
}

func TestTwoFAVerifySubmit(t *testing.T) {
	env := newTestEnv(t)

	t.Run("no secret goes to setup", func(t *testing.T) {
		u := testUser(t, env, false)
		req, _ := liveSession(t, env, u, postForm("/admin/2fa/verify", url.Values{"code": {"123456"}}))
		rec := httptest.NewRecorder()
		env.Auth.TwoFAVerifySubmit(rec, req)
		if loc := rec.Header().Get("Location"); loc != "/admin/2fa/setup" {
			t.Errorf("Location = %q", loc)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		u := testUser(t, env, true)
		req, _ := liveSession(t, env, u, postForm("/admin/2fa/verify", url.Values{"code": {"abcdef"}}))
		rec := httptest.NewRecorder()
		env.Auth.TwoFAVerifySubmit(rec, req)
		if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid code") {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("wrong code during setup shows the QR code again", func(t *testing.T) {
		u := testUser(t, env, false)
		if err := env.Users.SetTOTPSecret(u.ID, testSecret); err != nil {
			t.Fatal(err)
		}
		req, _ := liveSession(t, env, u, postForm("/admin/2fa/verify", url.Values{"code": {"abcdef"}}))
		rec := httptest.NewRecorder()
		env.Auth.TwoFAVerifySubmit(rec, req)
		body := rec.Body.String()
		if rec.Code != http.StatusUnauthorized || !strings.Contains(body, "data:image/png;base64,") {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("valid code enables 2FA", func(t *testing.T) {
		u := testUser(t, env, false)
		if err := env.Users.SetTOTPSecret(u.ID, testSecret); err != nil {
			t.Fatal(err)
		}
		code, err := totp.GenerateCode(testSecret, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		req, data := liveSession(t, env, u, postForm("/admin/2fa/verify", url.Values{"code": {code}}))
		rec := httptest.NewRecorder()
		env.Auth.TwoFAVerifySubmit(rec, req)

		if loc := rec.Header().Get("Location"); loc != "/admin/" {
			t.Fatalf("Location = %q, want /admin/", loc)
		}
		if !data.TwoFADone {
			t.Error("session should be marked as verified")
		}
		stored, _ := env.Users.FindByID(u.ID)
		if !stored.TOTPEnabled {
			t.Error("2FA should be enabled")
		}
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	u := testUser(t, env, true)
	req, _ := liveSession(t, env, u, httptest.NewRequest(http.MethodPost, "/admin/logout", nil))

	rec := httptest.NewRecorder()
	env.Auth.Logout(rec, req)

	if loc := rec.Header().Get("Location"); rec.Code != http.StatusSeeOther || loc != "/admin/login" {
		t.Errorf("got %d %q", rec.Code, loc)
	}
	if got, _ := env.Sessions.Get(t.Context(), req); got != nil {
		t.Error("session should be destroyed")
	}
}

func TestTOTPURL(t *testing.T) {
	got := totpURL("a b@example.com", testSecret)
	want := "otpauth://totp/LightWork:a%20b@example.com?issuer=LightWork&secret=" + testSecret
	if got != want {
		t.Errorf("totpURL = %q, want %q", got, want)
	}
}

func TestSetupData(t *testing.T) {
	data, err := setupData(totpURL("a@example.com", testSecret), testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if data["Secret"] != testSecret {
		t.Errorf("Secret = %v", data["Secret"])
	}
	if s := string(data["QRCode"].(template.URL)); !strings.HasPrefix(s, "data:image/png;base64,") {
		t.Errorf("QRCode = %.40s", s)
	}
}
