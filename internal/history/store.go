// Package history remembers the last project name and logs every exported
// document in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS exports (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sessionId   TEXT NOT NULL,
	projectName TEXT NOT NULL DEFAULT '',
	filename    TEXT NOT NULL,
	path        TEXT NOT NULL,
	source      TEXT NOT NULL,
	title       TEXT NOT NULL,
	entries     INTEGER NOT NULL,
	speakers    INTEGER NOT NULL,
	duration    TEXT NOT NULL DEFAULT '',
	exportedAt  REAL NOT NULL
);
`

const lastProjectKey = "last_project_name"

// Export is one logged document.
type Export struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	ProjectName string    `json:"projectName,omitempty"`
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Entries     int       `json:"entries"`
	Speakers    int       `json:"speakers"`
	Duration    string    `json:"duration,omitempty"`
	ExportedAt  time.Time `json:"exportedAt"`
}

// Store is the history database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the database path under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "teamscribe", "history.sqlite")
}

// Open opens or creates the database at path. ":memory:" keeps it in memory.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LastProjectName returns the remembered project name, or "".
func (s *Store) LastProjectName(ctx context.Context) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, lastProjectKey).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last project name: %w", err)
	}
	return name, nil
}

// SetLastProjectName remembers name. An empty name clears it.
func (s *Store) SetLastProjectName(ctx context.Context, name string) error {
	if name == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, lastProjectKey)
		if err != nil {
			return fmt.Errorf("clear last project name: %w", err)
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastProjectKey, name)
	if err != nil {
		return fmt.Errorf("save last project name: %w", err)
	}
	return nil
}

// RecordExport logs e and returns it with its ID set.
func (s *Store) RecordExport(ctx context.Context, e Export) (Export, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (sessionId, projectName, filename, path, source, title, entries, speakers, duration, exportedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.SessionID, e.ProjectName, e.Filename, e.Path, e.Source, e.Title,
		e.Entries, e.Speakers, e.Duration, unixFromTime(e.ExportedAt))
	if err != nil {
		return Export{}, fmt.Errorf("insert export: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return Export{}, fmt.Errorf("export id: %w", err)
	}
	return e, nil
}

// RecentExports returns up to limit exports, newest first.
func (s *Store) RecentExports(ctx context.Context, limit int) ([]Export, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sessionId, projectName, filename, path, source, title, entries, speakers, duration, exportedAt
		FROM exports
		ORDER BY exportedAt DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		var (
			e          Export
			exportedAt float64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ProjectName, &e.Filename, &e.Path,
			&e.Source, &e.Title, &e.Entries, &e.Speakers, &e.Duration, &exportedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		e.ExportedAt = timeFromUnix(exportedAt)
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}
