package testutil

import (
	"path/filepath"
	"testing"

	"github.com/codr1/chroma/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	return NewTestDBAt(t, filepath.Join(t.TempDir(), "test.db"))
}

// NewTestDBAt opens (or reopens) the SQLite database at dbPath with migrations applied.
// Opening the same path twice simulates an application restart.
func NewTestDBAt(t *testing.T, dbPath string) *db.DB {
	t.Helper()

	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}
