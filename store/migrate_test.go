package store

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestNewSQLiteStore_MigratesToLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	db := s.(*sqliteStore).db
	t.Cleanup(func() { s.Close() })

	version, dirty, err := schemaVersion(db)
	if err != nil {
		t.Fatalf("schemaVersion() error = %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schemaVersion() = %d, want %d", version, SchemaVersion)
	}
	if dirty {
		t.Error("schemaVersion() dirty = true, want false")
	}

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_records_updated_at'`).Scan(&name)
	if err != nil {
		t.Errorf("updated_at index missing: %v", err)
	}
}

func TestNewSQLiteStore_ReopenIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	first.Close()

	second, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer second.Close()

	version, _, err := schemaVersion(second.(*sqliteStore).db)
	if err != nil {
		t.Fatalf("schemaVersion() error = %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schemaVersion() after reopen = %d, want %d", version, SchemaVersion)
	}
}

func TestSchemaVersion_Unmigrated(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	version, dirty, err := schemaVersion(db)
	if err != nil {
		t.Fatalf("schemaVersion() error = %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("schemaVersion() = %d, %v, want 0, false", version, dirty)
	}
}
