// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store_test

import (
	. "lightwork/internal/store"

	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"lightwork/internal/database"
	"lightwork/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "lightwork")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "lightwork")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanRecords removes every record of the given types.
func cleanRecords(t *testing.T, db *sql.DB, types ...string) {
	t.Helper()
	for _, typ := range types {
		db.Exec("DELETE FROM records WHERE type = $1", typ)
	}
}

// cleanOptions removes options by key.
func cleanOptions(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	for _, key := range keys {
		db.Exec("DELETE FROM options WHERE key = $1", key)
	}
}

// stashOptions snapshots the given options and restores them when the
// test finishes, so tests can rewrite shared keys freely.
func stashOptions(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	saved := make(map[string][]byte)
	for _, key := range keys {
		var raw []byte
		if err := db.QueryRow("SELECT value FROM options WHERE key = $1", key).Scan(&raw); err == nil {
			saved[key] = raw
		}
	}
	t.Cleanup(func() {
		for _, key := range keys {
			if raw, ok := saved[key]; ok {
				db.Exec(`INSERT INTO options (key, value) VALUES ($1, $2)
					ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, string(raw))
				continue
			}
			db.Exec("DELETE FROM options WHERE key = $1", key)
		}
	})
}

// withTypes replaces the content type list for the duration of the test.
func withTypes(t *testing.T, db *sql.DB, types []models.ContentType) {
	t.Helper()
	stashOptions(t, db, OptionContentTypes)
	if err := SetOption(db, OptionContentTypes, types); err != nil {
		t.Fatalf("seed content types: %v", err)
	}
}
