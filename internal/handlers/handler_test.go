// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"lightwork/internal/cache"
	"lightwork/internal/database"
	"lightwork/internal/engine"
	"lightwork/internal/middleware"
	"lightwork/internal/render"
	"lightwork/internal/session"
	"lightwork/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "lightwork")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "lightwork")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// fakeBatch records scheduler toggles.
type fakeBatch struct {
	active bool
	err    error
}

func (f *fakeBatch) Active() bool        { return f.active }
func (f *fakeBatch) NextRun() *time.Time { return nil }
func (f *fakeBatch) Activate() error {
	if f.err != nil {
		return f.err
	}
	f.active = true
	return nil
}
func (f *fakeBatch) Deactivate() error {
	if f.err != nil {
		return f.err
	}
	f.active = false
	return nil
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Renderer  *render.Renderer
	Sessions  *session.Store
	Types     *store.ContentTypeStore
	Mappings  *store.MappingStore
	Records   *store.RecordStore
	Sandbox   *store.SandboxStore
	Users     *store.UserStore
	CacheLog  *store.CacheLogStore
	Engine    *engine.Engine
	PageCache *cache.PageCache
	Batch     *fakeBatch
	Admin     *Admin
	Auth      *Auth
	API       *API
	Public    *Public
}

// newTestEnv creates a complete test environment with all handler
// dependencies. The content type list, sandbox options and every record
// of the test types are restored or removed afterwards.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true, middleware.NewActions("test-secret"))
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	types := store.NewContentTypeStore(db)
	mappings := store.NewMappingStore(db)
	records := store.NewRecordStore(db)
	sandbox := store.NewSandboxStore(db)
	users := store.NewUserStore(db)
	cacheLog := store.NewCacheLogStore(db)
	eng := engine.New(records, mappings, "LightWork")
	pageCache := cache.NewPageCache(vk, time.Minute)
	batch := &fakeBatch{}

	stashOptions(t, db, store.OptionContentTypes, store.OptionSandboxHTML, store.OptionSandboxPage)

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Renderer:  renderer,
		Sessions:  sessions,
		Types:     types,
		Mappings:  mappings,
		Records:   records,
		Sandbox:   sandbox,
		Users:     users,
		CacheLog:  cacheLog,
		Engine:    eng,
		PageCache: pageCache,
		Batch:     batch,
		Admin:     NewAdmin(renderer, sessions, types, mappings, records, sandbox, cacheLog, pageCache, eng, nil, batch),
		Auth:      NewAuth(renderer, sessions, users),
		API:       NewAPI(types, records, "http://example.test"),
		Public:    NewPublic(eng, types, records, pageCache),
	}
}

// stashOptions snapshots options and restores them when the test ends.
func stashOptions(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	saved := map[string][]byte{}
	for _, k := range keys {
		var raw []byte
		if err := db.QueryRow(`SELECT value FROM options WHERE key = $1`, k).Scan(&raw); err == nil {
			saved[k] = raw
		}
	}
	t.Cleanup(func() {
		for _, k := range keys {
			if raw, ok := saved[k]; ok {
				db.Exec(`INSERT INTO options (key, value) VALUES ($1, $2)
					ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, k, raw)
			} else {
				db.Exec(`DELETE FROM options WHERE key = $1`, k)
			}
		}
	})
}

// cleanRecords removes every record of the given types.
func cleanRecords(t *testing.T, db *sql.DB, types ...string) {
	t.Helper()
	for _, typ := range types {
		db.Exec("DELETE FROM records WHERE type = $1", typ)
	}
}

// cleanPages removes pages by slug.
func cleanPages(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM records WHERE type = 'page' AND slug = $1", s)
	}
}

// testSession creates a session.Data for testing.
func testSession(role string, twoFADone bool) *session.Data {
	return &session.Data{
		ID:          "sess-" + uuid.NewString(),
		UserID:      uuid.New(),
		Email:       "test@lightwork.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withURLParams adds chi URL parameters (name, value pairs) and an
// optional session to a request.
func withURLParams(r *http.Request, sess *session.Data, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = ctxWithSession(ctx, sess)
	}
	return r.WithContext(ctx)
}

// postForm builds a form POST request.
func postForm(target string, form url.Values) *http.Request {
	r, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}
