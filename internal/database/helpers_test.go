package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

var fixedTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// newTestStore opens a migrated SQLite store in a temp directory.
func newTestStore(t *testing.T) *SQLiteCardStore {
	t.Helper()

	db, err := NewSQLite("file:" + filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite() failed: %v", err)
	}
	s := NewSQLiteCardStore(db)
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return s
}

func freezeTime(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return fixedTime }
	t.Cleanup(func() { now = prev })
}
