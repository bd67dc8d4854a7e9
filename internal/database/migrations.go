// file: internal/database/migrations.go
// version: 1.4.0
// guid: 9e1b7f4c-3d8a-4b2e-a6c9-5f0d2e8b4a7c

package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/novelshelf/novelshelf/internal/metrics"
)

// revisions is the ordered, append-only list of schema revisions. Released
// revisions are immutable: never edit or re-order entries, only append.
// The stored schema version (PRAGMA user_version, 0 for a fresh database)
// is the index of the next revision to apply.
var revisions = []string{
	revision0Schema,
	revision1Indexes,
	revision2FolderOrder,
}

// SchemaVersion returns the persisted schema version counter.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// ApplyAll applies every revision newer than the stored schema version, each
// inside its own transaction. A revision that fails rolls back completely and
// leaves the version at its pre-revision value; the error is a
// *MigrationFailure carrying the revision index and underlying cause.
//
// Calling ApplyAll when already at the latest version performs no writes.
// Callers must serialize invocations; concurrent calls are undefined.
func (s *SQLiteStore) ApplyAll() error {
	current, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	if current >= len(revisions) {
		return nil
	}

	log.Printf("Applying schema revisions %d..%d", current, len(revisions)-1)

	for idx := current; idx < len(revisions); idx++ {
		if err := s.applyRevision(idx); err != nil {
			return err
		}
		metrics.IncMigrationApplied()
		log.Printf("Schema revision %d applied", idx)
	}

	return nil
}

// applyRevision executes one revision's statement batch atomically and
// advances the stored version to idx+1 in the same transaction.
func (s *SQLiteStore) applyRevision(idx int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &MigrationFailure{Revision: idx, Err: err}
	}

	for _, stmt := range splitStatements(revisions[idx]) {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return &MigrationFailure{Revision: idx, Err: fmt.Errorf("statement %q: %w", abbreviate(stmt), err)}
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", idx+1)); err != nil {
		tx.Rollback()
		return &MigrationFailure{Revision: idx, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &MigrationFailure{Revision: idx, Err: err}
	}
	return nil
}

// splitStatements splits a revision script into individual statements on
// top-level semicolons. A trigger body bracketed by BEGIN ... END is kept as
// a single unit so its internal terminators do not split it apart. Line
// comments and quoted literals are copied through uninterpreted.
func splitStatements(script string) []string {
	var out []string
	var cur strings.Builder
	depth := 0

	flush := func() {
		if stmt := strings.TrimSpace(cur.String()); stmt != "" {
			out = append(out, stmt)
		}
		cur.Reset()
	}

	i := 0
	for i < len(script) {
		ch := script[i]
		switch {
		case ch == '-' && i+1 < len(script) && script[i+1] == '-':
			// line comment: copy until end of line
			for i < len(script) && script[i] != '\n' {
				cur.WriteByte(script[i])
				i++
			}
		case ch == '\'' || ch == '"':
			quote := ch
			cur.WriteByte(ch)
			i++
			for i < len(script) {
				cur.WriteByte(script[i])
				if script[i] == quote {
					i++
					break
				}
				i++
			}
		case ch == ';':
			if depth == 0 {
				flush()
			} else {
				cur.WriteByte(ch)
			}
			i++
		case isWordByte(ch):
			start := i
			for i < len(script) && isWordByte(script[i]) {
				i++
			}
			word := script[start:i]
			switch strings.ToUpper(word) {
			case "BEGIN":
				depth++
			case "END":
				if depth > 0 {
					depth--
				}
			}
			cur.WriteString(word)
		default:
			cur.WriteByte(ch)
			i++
		}
	}
	flush()
	return out
}

func isWordByte(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// abbreviate shortens a statement for error messages.
func abbreviate(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > 80 {
		return stmt[:77] + "..."
	}
	return stmt
}

// Revision 0: full base schema. Timestamps are seconds since epoch assigned
// by the store; updated_at on novels, chapters and chapter_variants is
// refreshed by AFTER UPDATE triggers rather than by callers.
const revision0Schema = `
CREATE TABLE novels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	author TEXT,
	description TEXT,
	cover_path TEXT,
	lang_original TEXT,
	status TEXT NOT NULL DEFAULT 'ongoing',
	release_status TEXT,
	slug TEXT,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);

CREATE TABLE chapters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	novel_id INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	volume INTEGER,
	display_title TEXT,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	UNIQUE(novel_id, seq)
);

CREATE TABLE chapter_variants (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chapter_id INTEGER NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
	variant_type TEXT NOT NULL,
	lang TEXT NOT NULL,
	title TEXT,
	content TEXT NOT NULL,
	source_url TEXT,
	provider TEXT,
	model_name TEXT,
	is_primary INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	UNIQUE(chapter_id, variant_type, lang)
);

CREATE TABLE bookmarks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chapter_id INTEGER NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
	position_pct REAL NOT NULL DEFAULT 0,
	device_id TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	UNIQUE(chapter_id, device_id)
);

CREATE TABLE genres (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE folders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE novel_genres (
	novel_id INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
	PRIMARY KEY (novel_id, genre_id)
);

CREATE TABLE novel_tags (
	novel_id INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (novel_id, tag_id)
);

CREATE TABLE novel_folders (
	novel_id INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	folder_id INTEGER NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
	PRIMARY KEY (novel_id, folder_id)
);

CREATE TABLE reading_progress (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	novel_id INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	chapter_id INTEGER NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
	device_id TEXT NOT NULL DEFAULT '',
	position_pct REAL NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	UNIQUE(chapter_id, device_id)
);

CREATE TABLE reading_state (
	novel_id INTEGER NOT NULL REFERENCES novels(id) ON DELETE CASCADE,
	device_id TEXT NOT NULL DEFAULT '',
	chapter_id INTEGER NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
	position_pct REAL NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	PRIMARY KEY (novel_id, device_id)
);

CREATE TRIGGER trg_novels_updated_at AFTER UPDATE ON novels
BEGIN
	UPDATE novels SET updated_at = strftime('%s','now') WHERE id = NEW.id;
END;

CREATE TRIGGER trg_chapters_updated_at AFTER UPDATE ON chapters
BEGIN
	UPDATE chapters SET updated_at = strftime('%s','now') WHERE id = NEW.id;
END;

CREATE TRIGGER trg_chapter_variants_updated_at AFTER UPDATE ON chapter_variants
BEGIN
	UPDATE chapter_variants SET updated_at = strftime('%s','now') WHERE id = NEW.id;
END;
`

// Revision 1: indexes for facet membership, chapter lookups and per-device
// progress queries.
const revision1Indexes = `
CREATE INDEX idx_chapters_novel ON chapters(novel_id);
CREATE INDEX idx_variants_chapter ON chapter_variants(chapter_id);
CREATE INDEX idx_bookmarks_chapter ON bookmarks(chapter_id);
CREATE INDEX idx_novel_genres_genre ON novel_genres(genre_id);
CREATE INDEX idx_novel_tags_tag ON novel_tags(tag_id);
CREATE INDEX idx_novel_folders_folder ON novel_folders(folder_id);
CREATE INDEX idx_progress_novel_device ON reading_progress(novel_id, device_id);
CREATE INDEX idx_novels_status ON novels(status);
CREATE INDEX idx_novels_created ON novels(created_at);
`

// Revision 2: explicit display ordering for folders.
const revision2FolderOrder = `
ALTER TABLE folders ADD COLUMN sort_order INTEGER NOT NULL DEFAULT 0;
CREATE INDEX idx_folders_sort ON folders(sort_order);
`
