// Package store owns the durable SQLite representation of the catalog:
// schema creation and scoped connection/transaction handling.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

const memoryPath = ":memory:"

// Executor is satisfied by both *sql.Conn and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Executor = (*sql.Conn)(nil)
	_ Executor = (*sql.Tx)(nil)
)

// Store wraps a sql.DB opened on a single storage location.
type Store struct {
	db     *sql.DB
	driver string
	path   string
}

// Option configures Open.
type Option func(*Store)

// WithDriver selects the SQLite driver. Unknown names are rejected by Open.
func WithDriver(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.driver = name
		}
	}
}

// Open opens (or creates) the database at path, creating its directory if
// needed, and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: empty database path")
	}
	s := &Store{driver: DriverCGO, path: path}
	for _, opt := range opts {
		opt(s)
	}

	if path != memoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create db dir: %w", err)
			}
		}
	}

	dsn, err := buildDSN(s.driver, path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(s.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if path == memoryPath {
		// Every new connection to :memory: is a fresh database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	s.db = db

	if err := s.InitializeSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func buildDSN(driver, path string) (string, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	switch driver {
	case DriverCGO:
		return path + sep + "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", nil
	case DriverPureGo:
		return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	default:
		return "", fmt.Errorf("store: unsupported driver %q", driver)
	}
}

// InitializeSchema creates tables and indexes if they are missing.
// It is safe to call any number of times.
func (s *Store) InitializeSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	return nil
}

// Path returns the storage location the store was opened with.
func (s *Store) Path() string { return s.path }

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string { return s.driver }

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithConn acquires a single connection, runs fn on it and releases the
// connection on every exit path.
func WithConn[T any](ctx context.Context, s *Store, fn func(conn *sql.Conn) (T, error)) (T, error) {
	var zero T
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return zero, fmt.Errorf("store: acquire conn: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// WithTx runs fn inside a transaction on a dedicated connection. The
// transaction is committed when fn succeeds and rolled back otherwise.
func WithTx[T any](ctx context.Context, s *Store, fn func(tx *sql.Tx) (T, error)) (T, error) {
	return WithConn(ctx, s, func(conn *sql.Conn) (T, error) {
		var zero T
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return zero, fmt.Errorf("store: begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // no-op after commit

		out, err := fn(tx)
		if err != nil {
			return zero, err
		}
		if err := tx.Commit(); err != nil {
			return zero, fmt.Errorf("store: commit: %w", err)
		}
		return out, nil
	})
}
