// Package storage keeps ledger blobs in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fatura/internal/kv"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a kv.Store backed by the kv_entries table.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ kv.Store = (*SQLiteStore)(nil)

// sqlitePragmas are applied by the driver to every pooled connection.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

func dsn(dbPath string) string {
	return dbPath + "?" + sqlitePragmas
}

func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Single writer keeps SQLITE_BUSY out of concurrent saves.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements kv.Store
func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return value, nil
}

// Save implements kv.Store
func (s *SQLiteStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Ledger blob saved to SQLite", "key", key, "bytes", len(value))
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
