package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"mfcatalog/internal/core/logger"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by lookups and keyed writes when the row is absent.
var ErrNotFound = errors.New("not found")

const defaultBusyTimeout = 5 * time.Second

type Option func(*Store)

func WithLogger(log *logger.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

func WithBusyTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.busyTimeout = timeout
	}
}

// Store persists datasets and members in a SQLite database file. It holds a
// single connection.
type Store struct {
	db          *sql.DB
	path        string
	busyTimeout time.Duration
	log         *logger.Logger
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the database file at path. The schema is
// not touched; see CreateSchema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:        path,
		busyTimeout: defaultBusyTimeout,
		log:         logger.NewLogger(logger.WithName("store")),
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(-1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to catalog %s: %w", path, err)
	}

	s.db = db
	s.log.Debug("opened catalog", "path", path)
	return s, nil
}

func (s *Store) dsn() string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", s.busyTimeout.Milliseconds()))
	return "file:" + s.path + "?" + q.Encode()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close catalog %s: %w", s.path, err)
	}
	s.log.Debug("closed catalog", "path", s.path)
	return nil
}

// CreateSchema creates both tables if they are absent.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range []string{createDatasets, createMembers} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops both tables if they are present.
func (s *Store) DropSchema(ctx context.Context) error {
	for _, stmt := range dropStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}

// inTx runs fn in a transaction, rolling back when fn or the commit fails.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Unknown values are stored as NULL so they never read back as an explicit
// zero.

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v > 0}
}

func nullTime(v time.Time) sql.NullTime {
	return sql.NullTime{Time: v.UTC(), Valid: !v.IsZero()}
}

func timeValue(v sql.NullTime) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time.UTC()
}
