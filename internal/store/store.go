// Package store persists the movie catalog in a local SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrDuplicatePath is returned by Insert when a movie with the same
// file path is already cataloged.
var ErrDuplicatePath = errors.New("file path already cataloged")

// Store wraps the library database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the library database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open library database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS movies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_path TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			year INTEGER,
			rating INTEGER,
			notes TEXT,
			watched INTEGER NOT NULL DEFAULT 0,
			favorite INTEGER NOT NULL DEFAULT 0,
			thumbnail_path TEXT,
			file_size INTEGER,
			duration_seconds REAL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			tmdb_id INTEGER,
			poster_path TEXT,
			tmdb_rating REAL,
			overview TEXT,
			director TEXT,
			cast_list TEXT,
			release_date TEXT,
			genres TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_movies_file_path ON movies(file_path);
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
