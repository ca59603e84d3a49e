// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrupp/homecase-anime/internal/repo/database"
)

// OpenTestDB opens a migrated SQLite database in a per-test temporary
// directory. It is closed automatically when the test ends.
func OpenTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.OpenSQLite(context.Background(), database.SQLiteConfig{
		DatabasePath:    filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout:     5 * time.Second,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
