// file: internal/database/migrations_test.go
// version: 1.1.0
// guid: 7a3d9c5e-1f8b-4a6d-9c2e-5b0f8d3a7e1c

package database

import (
	"errors"
	"os"
	"strings"
	"testing"

	ulid "github.com/oklog/ulid/v2"
)

// setupUnmigratedDB creates a temporary store without running migrations.
func setupUnmigratedDB(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	tmpfile := "/tmp/test_novelshelf_" + ulid.Make().String() + ".db"
	store, err := NewSQLiteStore(tmpfile)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return store, func() {
		store.Close()
		os.Remove(tmpfile)
	}
}

func TestSchemaVersionFresh(t *testing.T) {
	store, cleanup := setupUnmigratedDB(t)
	defer cleanup()

	version, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != 0 {
		t.Errorf("Expected version 0 on a fresh database, got %d", version)
	}
}

func TestApplyAll(t *testing.T) {
	store, cleanup := setupUnmigratedDB(t)
	defer cleanup()

	if err := store.ApplyAll(); err != nil {
		t.Fatalf("ApplyAll failed: %v", err)
	}

	version, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != len(revisions) {
		t.Errorf("Expected version %d, got %d", len(revisions), version)
	}

	// Spot-check that the full schema landed, triggers included.
	for _, name := range []string{"novels", "chapters", "chapter_variants", "bookmarks",
		"reading_progress", "reading_state", "novel_tags"} {
		var found string
		err := store.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&found)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", name, err)
		}
	}
	var triggerCount int
	if err := store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='trigger'").Scan(&triggerCount); err != nil {
		t.Fatalf("Failed to count triggers: %v", err)
	}
	if triggerCount != 3 {
		t.Errorf("Expected 3 update triggers, got %d", triggerCount)
	}
}

func TestApplyAllIdempotent(t *testing.T) {
	store, cleanup := setupUnmigratedDB(t)
	defer cleanup()

	if err := store.ApplyAll(); err != nil {
		t.Fatalf("First ApplyAll failed: %v", err)
	}
	before, _ := store.SchemaVersion()

	if err := store.ApplyAll(); err != nil {
		t.Fatalf("Second ApplyAll failed: %v", err)
	}
	after, _ := store.SchemaVersion()

	if before != after {
		t.Errorf("Version changed on repeated ApplyAll: %d -> %d", before, after)
	}
}

func TestRevisionAtomicity(t *testing.T) {
	store, cleanup := setupUnmigratedDB(t)
	defer cleanup()

	if err := store.ApplyAll(); err != nil {
		t.Fatalf("ApplyAll failed: %v", err)
	}
	versionBefore, _ := store.SchemaVersion()

	// Append a revision whose second statement is invalid; the first
	// statement's table must not survive the rollback.
	saved := revisions
	defer func() { revisions = saved }()
	revisions = append(revisions, `
CREATE TABLE atomicity_probe (id INTEGER PRIMARY KEY);
INSERT INTO no_such_table VALUES (1);
`)

	err := store.ApplyAll()
	if err == nil {
		t.Fatal("Expected ApplyAll to fail on the bad revision")
	}
	var failure *MigrationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Expected *MigrationFailure, got %T: %v", err, err)
	}
	if failure.Revision != len(saved) {
		t.Errorf("Expected failing revision %d, got %d", len(saved), failure.Revision)
	}
	if failure.Unwrap() == nil {
		t.Error("Expected underlying cause to be preserved")
	}

	versionAfter, _ := store.SchemaVersion()
	if versionAfter != versionBefore {
		t.Errorf("Version advanced despite failure: %d -> %d", versionBefore, versionAfter)
	}

	var count int
	if err := store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='atomicity_probe'").
		Scan(&count); err != nil {
		t.Fatalf("Failed to query sqlite_master: %v", err)
	}
	if count != 0 {
		t.Error("Expected atomicity_probe not to exist after rollback")
	}
}

func TestSplitStatements(t *testing.T) {
	script := `
-- leading comment; with a semicolon
CREATE TABLE a (id INTEGER);
CREATE TRIGGER trg AFTER UPDATE ON a
BEGIN
	UPDATE a SET id = NEW.id WHERE id = NEW.id;
	DELETE FROM a WHERE id = 0;
END;
INSERT INTO a VALUES (1);
`
	stmts := splitStatements(script)
	if len(stmts) != 3 {
		t.Fatalf("Expected 3 statements, got %d: %#v", len(stmts), stmts)
	}
	for _, part := range []string{"CREATE TRIGGER", "UPDATE a", "DELETE FROM a", "END"} {
		if !strings.Contains(stmts[1], part) {
			t.Errorf("Trigger statement missing %q: %q", part, stmts[1])
		}
	}
}

func TestSplitStatementsQuotedSemicolon(t *testing.T) {
	stmts := splitStatements(`INSERT INTO a VALUES ('x;y'); INSERT INTO a VALUES ("p;q");`)
	if len(stmts) != 2 {
		t.Fatalf("Expected 2 statements, got %d: %#v", len(stmts), stmts)
	}
}
