package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "store_kv"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStorage persists values in a single two-column SQLite table.
type SQLiteStorage struct {
	db    *sql.DB
	table string

	getQuery string
	setQuery string
}

// OpenSQLite opens (and creates when missing) the database at dsn and makes
// sure table exists. dsn may be a file path or ":memory:".
func OpenSQLite(ctx context.Context, dsn, table string) (*SQLiteStorage, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "store.db"
	}
	table = strings.TrimSpace(table)
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("kv: invalid table name %q", table)
	}
	if !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("kv: create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("kv: open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writes
	db.SetMaxOpenConns(1)

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`, table)
	if _, err := db.ExecContext(ctx, create); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kv: create table %s: %w", table, err)
	}

	return &SQLiteStorage{
		db:       db,
		table:    table,
		getQuery: fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, table),
		setQuery: fmt.Sprintf(`INSERT INTO %s (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, table),
	}, nil
}

// Get implements Storage.
func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", false, err
	}
	var value string
	err = s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements Storage.
func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.setQuery, key, value); err != nil {
		return fmt.Errorf("kv: set %q: %w", key, err)
	}
	return nil
}

// Table returns the backing table name.
func (s *SQLiteStorage) Table() string {
	return s.table
}

// Close releases the database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
