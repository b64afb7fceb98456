package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// DefaultNoteWindow identical notes stored within this window are suppressed
const DefaultNoteWindow = time.Hour

// DB wraps sqlx.DB
type DB struct {
	*sqlx.DB

	noteWindow time.Duration
	clock      func() time.Time
}

// Option configures a DB
type Option func(*DB)

// WithNoteWindow sets the identical-note suppression window
func WithNoteWindow(d time.Duration) Option {
	return func(db *DB) {
		db.noteWindow = d
	}
}

// WithClock replaces time.Now, used by tests
func WithClock(clock func() time.Time) Option {
	return func(db *DB) {
		db.clock = clock
	}
}

// New creates a new database connection
func New(path string, opts ...Option) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Connect with WAL mode and foreign keys enabled
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return wrap(db, opts...), nil
}

// NewFromSQL wraps an already opened connection
func NewFromSQL(db *sql.DB, opts ...Option) *DB {
	return wrap(sqlx.NewDb(db, "sqlite3"), opts...)
}

func wrap(db *sqlx.DB, opts ...Option) *DB {
	d := &DB{
		DB:         db,
		noteWindow: DefaultNoteWindow,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Migrate runs database migrations
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// now returns the current time as stored: UTC, whole seconds
func (db *DB) now() time.Time {
	return db.clock().UTC().Truncate(time.Second)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// inserted reports whether an INSERT OR IGNORE / upsert changed a row
func inserted(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
