package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Store is a durable string-key to JSON-value table backed by SQLite.
// Durability is best-effort: reads fall back to caller defaults and writes
// never surface errors. The in-memory session stays the source of truth
// after the initial load.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Open opens (creating if necessary) the key-value database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw value for key, reporting whether the key exists.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}
	return value, true, nil
}

// Put writes value under key, replacing any prior value.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// Keys returns all keys matching the given LIKE pattern.
func (s *Store) Keys(pattern string) ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM kv WHERE key LIKE ?", pattern)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return keys, nil
}

// Load reads and decodes the value stored under key. A missing key,
// unreadable row, or malformed value falls back to def; persistence failures
// are logged and never block the caller.
func Load[T any](s *Store, key string, def T) T {
	raw, ok, err := s.Get(key)
	if err != nil {
		slog.Warn("Failed to read persisted value, using default", "key", key, "err", err)
		return def
	}
	if !ok {
		return def
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		slog.Warn("Persisted value is malformed, using default", "key", key, "err", err)
		return def
	}
	return value
}

// Save encodes value and writes it under key. If the encoding is the empty
// sentinel for its type (null, an empty sequence, or an empty string) the key
// is removed instead, so sessions don't accumulate empty placeholders.
// Failures are logged and never propagate; the in-memory value is not rolled
// back.
func Save[T any](s *Store, key string, value T) {
	encoded, err := json.Marshal(value)
	if err != nil {
		slog.Error("Failed to encode value for persistence", "key", key, "err", err)
		return
	}

	switch string(encoded) {
	case "null", "[]", `""`:
		if err := s.Delete(key); err != nil {
			slog.Error("Failed to remove persisted key", "key", key, "err", err)
		}
		return
	}

	if err := s.Put(key, string(encoded)); err != nil {
		slog.Error("Failed to persist value", "key", key, "err", err)
	}
}
