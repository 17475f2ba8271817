package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/0xn0va/slh-sh/internal/document"
)

// ErrNotFound is returned when an update targets a missing row.
var ErrNotFound = document.ErrNotFound

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Create schema if needed
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS studies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			authors TEXT NOT NULL DEFAULT '',
			year INTEGER,
			doi TEXT,
			filename TEXT,
			keywords TEXT,
			citation TEXT,
			total_annotations INTEGER NOT NULL DEFAULT 0,
			total_distribution INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS themes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			color TEXT NOT NULL UNIQUE,
			hex TEXT NOT NULL,
			term TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		);

		CREATE TABLE IF NOT EXISTS sources (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT
		);

		CREATE TABLE IF NOT EXISTS annotations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			studies_id INTEGER NOT NULL REFERENCES studies(id),
			theme_id INTEGER REFERENCES themes(id),
			count INTEGER NOT NULL,
			page_number INTEGER NOT NULL,
			annot_rgb_color TEXT NOT NULL,
			annot_hex_color TEXT NOT NULL,
			text TEXT NOT NULL,
			UNIQUE (studies_id, text)
		);

		CREATE TABLE IF NOT EXISTS distribution (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			studies_id INTEGER NOT NULL REFERENCES studies(id),
			theme_id INTEGER REFERENCES themes(id),
			count INTEGER NOT NULL,
			page_number INTEGER NOT NULL,
			term TEXT NOT NULL,
			text TEXT NOT NULL,
			paragraph TEXT NOT NULL DEFAULT '',
			UNIQUE (studies_id, text)
		);

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			studies_id INTEGER NOT NULL REFERENCES studies(id),
			kind TEXT NOT NULL,
			filter TEXT,
			total INTEGER NOT NULL,
			inserted INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_annotations_theme ON annotations(theme_id);
		CREATE INDEX IF NOT EXISTS idx_distribution_term ON distribution(term);
		CREATE INDEX IF NOT EXISTS idx_runs_study ON runs(studies_id);
	`

	_, err := db.Exec(schema)
	return err
}

// migrateSchema brings databases created by older versions up to date.
// Distribution rows written before the paragraph column existed get their
// stored text as paragraph.
func migrateSchema(db *sql.DB) error {
	has, err := hasColumn(db, "distribution", "paragraph")
	if err != nil {
		return err
	}
	if !has {
		if _, err := db.Exec(`ALTER TABLE distribution ADD COLUMN paragraph TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
		if _, err := db.Exec(`UPDATE distribution SET paragraph = text`); err != nil {
			return err
		}
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_distribution_paragraph ON distribution(studies_id, paragraph)`)
	return err
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&count)
	return count > 0, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
