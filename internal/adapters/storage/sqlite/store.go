// Package sqlite implements the persistence ports on an embedded SQLite
// database using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/jsamuelsen/tarot-service/internal/adapters/storage/sqlite/migrations"
)

// Config configures the SQLite store.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns caps the connection pool. Zero leaves the driver default.
	MaxOpenConns int

	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration

	// SkipMigrations opens the database without applying embedded migrations.
	SkipMigrations bool

	Logger *slog.Logger
}

// Store owns the SQLite handle shared by all repositories.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the database, verifies the connection, and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite: database path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", buildDSN(path, busy))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := &Store{db: db, logger: logger}

	if !cfg.SkipMigrations {
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()

			return nil, err
		}
	}

	return s, nil
}

func buildDSN(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")

	return filepath.Clean(path) + "?" + q.Encode()
}

// Migrate applies the embedded migrations that have not run yet.
func (s *Store) Migrate(ctx context.Context) error {
	applied, err := applyMigrations(ctx, s.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}

	if len(applied) > 0 {
		s.logger.InfoContext(ctx, "database migrations applied", slog.Any("migrations", applied))
	}

	return nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "sqlite"
}

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}

	return false
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func decodeStrings(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}

	out := []string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}

	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}

	n := int(v.Int64)

	return &n
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}

	s := v.String

	return &s
}
