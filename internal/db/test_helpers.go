package db

import (
	"database/sql"
	"testing"
)

// NewTestDB creates a migrated in-memory SQLite database for testing.
//
// Always use this in tests rather than a file-based database so a test can
// never touch a real ~/.vogonix/vogonix.db.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Each pooled connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	t.Cleanup(func() { d.Close() })
	return d
}
