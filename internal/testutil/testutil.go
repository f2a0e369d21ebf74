package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"libraryapi/internal/platform/crypto"
	"libraryapi/internal/platform/database"
)

// TestSecret is a signing key long enough to pass config validation.
var TestSecret = strings.Repeat("k", 32)

// NewSQLiteDB returns a migrated in-memory SQLite database closed at test end.
func NewSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, zap.NewNop(), "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m, err := database.NewMigrator(zap.NewNop(), "sqlite3", db)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := m.Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewPostgresPool connects to TEST_DB_DSN, migrates it and empties the
// tables. The test is skipped when no database is reachable. Packages share
// the database, so run them with -p 1.
func NewPostgresPool(t testing.TB) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DB_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.OpenPostgres(ctx, zap.NewNop(), dsn)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	sqlDB := database.PostgresDB(pool)
	m, err := database.NewMigrator(zap.NewNop(), "postgres", sqlDB)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := m.Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE books, users RESTART IDENTITY"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

// GenerateTestToken signs a token for username with TestSecret.
func GenerateTestToken(username string) string {
	token, _, _ := crypto.GenerateToken(TestSecret, username, time.Hour)
	return token
}

// NewRequest creates an HTTP request with an optional JSON body.
func NewRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		raw, _ = json.Marshal(b)
	}
	r := httptest.NewRequest(method, path, bytes.NewReader(raw))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewRequestWithAuth creates an HTTP request carrying a bearer token.
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// DecodeBody decodes the recorded JSON response into a generic map.
func DecodeBody(t testing.TB, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return body
}

// ErrorCode extracts error.code from an error envelope.
func ErrorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}
