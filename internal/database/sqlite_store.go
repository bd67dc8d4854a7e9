// file: internal/database/sqlite_store.go
// version: 1.3.0
// guid: 7d4e2b9a-1c8f-4e3a-9b6d-2f7a5c0e8d1b

package database

import (
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// driverName registers a sqlite3 driver variant that installs the "folded"
// collation on every connection. Title/author sorting uses it so that case
// and diacritics do not affect ordering.
const driverName = "sqlite3_novelshelf"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			coll := collate.New(language.Und, collate.Loose)
			return conn.RegisterCollation("folded", func(a, b string) int {
				return coll.CompareString(a, b)
			})
		},
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// SQLiteStore is the persistent library store. Construct it once per process
// with NewSQLiteStore and pass it to callers; it must not be re-opened for
// the same path while another instance holds it.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the library database at path.
// Foreign keys are enforced on every connection. The schema is not touched;
// callers run ApplyAll before issuing queries.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &StoreUnavailable{Path: path, Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreUnavailable{Path: path, Err: err}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CheckIntegrity runs SQLite's integrity and foreign-key checks and returns
// any problems found. An empty slice means the file is sound.
func (s *SQLiteStore) CheckIntegrity() ([]string, error) {
	var problems []string

	rows, err := s.db.Query("PRAGMA integrity_check")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			rows.Close()
			return nil, err
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("PRAGMA foreign_key_check")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var table string
		var rowid sql.NullInt64
		var parent string
		var fkid int
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return nil, err
		}
		problems = append(problems, fmt.Sprintf("foreign key violation: %s -> %s (rowid %d)",
			table, parent, rowid.Int64))
	}
	return problems, rows.Err()
}
