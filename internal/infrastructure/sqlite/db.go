// Package sqlite persists saved views in a SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/views/domain"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS views (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	guid        TEXT    NOT NULL UNIQUE,
	name        TEXT    NOT NULL UNIQUE,
	description TEXT,
	dataset     TEXT,
	snapshot    TEXT    NOT NULL,
	fingerprint TEXT    NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS view_filters (
	view_id    INTEGER NOT NULL REFERENCES views(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	kind       TEXT    NOT NULL,
	filter_key TEXT    NOT NULL,
	PRIMARY KEY (view_id, position)
);

CREATE INDEX IF NOT EXISTS idx_views_dataset ON views(dataset);
`

// DB is an open views database.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if needed) the database at path, with WAL journaling,
// foreign keys and a 5s busy timeout. An existing database older than the
// current schema is copied to path+".bak" before it is upgraded.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	existed := fileExists(path)

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(path, existed); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debug(log.CatDB, "Opened views database", "path", path)
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(wal)")
	return "file:" + path + "?" + q.Encode()
}

func (d *DB) migrate(path string, existed bool) error {
	var version int
	if err := d.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}
	if existed {
		if err := backup(path); err != nil {
			return err
		}
	}
	if _, err := d.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := d.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	log.Info(log.CatDB, "Applied schema", "from", version, "to", schemaVersion)
	return nil
}

func backup(path string) error {
	src, err := os.Open(path) // #nosec G304 -- database path from config
	if err != nil {
		return fmt.Errorf("failed to open database for backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return dst.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// ViewRepository returns the repository backed by this database.
func (d *DB) ViewRepository() domain.ViewRepository {
	return newViewRepository(d.conn)
}

// Connection exposes the underlying pool.
func (d *DB) Connection() *sql.DB {
	return d.conn
}

func (d *DB) Close() error {
	return d.conn.Close()
}
