// Package sqlstore implements the service.Service interface on a SQL
// database. SQLite is the default; MySQL is supported for shared boards.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver and schema.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

const (
	maxRetries   = 5
	initialWait  = 100 * time.Millisecond
	maxOpenConns = 10
	maxIdleConns = 5
	busyTimeout  = 5000 // milliseconds
)

var schemas = map[Dialect][]string{
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS tasks (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    text TEXT NOT NULL,
    status TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    action TEXT NOT NULL,
    ts TEXT NOT NULL
)`,
	},
	DialectMySQL: {
		`CREATE TABLE IF NOT EXISTS tasks (
    seq BIGINT PRIMARY KEY AUTO_INCREMENT,
    id VARCHAR(64) NOT NULL,
    text TEXT NOT NULL,
    status VARCHAR(20) NOT NULL,
    UNIQUE KEY uniq_task_id (id)
)`,
		`CREATE TABLE IF NOT EXISTS history (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    action TEXT NOT NULL,
    ts VARCHAR(32) NOT NULL
)`,
	},
}

// Open connects to the database described by dsn and prepares the schema.
// For DialectSQLite dsn is a file path; its directory is created if needed.
func Open(ctx context.Context, dialect Dialect, dsn string, logger zerolog.Logger) (*Store, error) {
	driver, source, err := dataSource(dialect, dsn)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)

	s := &Store{db: conn, dialect: dialect, logger: logger}

	if err := s.pingWithRetry(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := s.initSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().Str("dialect", string(dialect)).Msg("database ready")
	return s, nil
}

func dataSource(dialect Dialect, dsn string) (driver, source string, err error) {
	switch dialect {
	case DialectSQLite:
		if dsn == "" {
			return "", "", fmt.Errorf("sqlite: database path required")
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return "", "", fmt.Errorf("create database directory: %w", err)
		}
		uri, err := sqliteURI(dsn)
		if err != nil {
			return "", "", err
		}
		return "sqlite", uri, nil
	case DialectMySQL:
		if dsn == "" {
			return "", "", fmt.Errorf("mysql: dsn required")
		}
		return "mysql", dsn, nil
	default:
		return "", "", fmt.Errorf("unknown sql dialect: %q", dialect)
	}
}

// sqliteURI turns a file path into a file: URI with the connection pragmas.
// The path is made absolute and percent-encoded so "?" and "#" in it stay
// part of the file name.
func sqliteURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve database path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{
		Scheme:   "file",
		Path:     p,
		RawQuery: fmt.Sprintf("_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", busyTimeout),
	}
	return u.String(), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back if fn fails.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// pingWithRetry pings the database with exponential backoff.
func (s *Store) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = s.db.PingContext(ctx); lastErr == nil {
			return nil
		}
		s.logger.Debug().Err(lastErr).Int("attempt", i+1).Msg("ping failed")

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
	}
	return fmt.Errorf("failed to ping database after %d retries: %w", maxRetries, lastErr)
}

// initSchema runs the dialect's DDL one statement at a time; the MySQL
// driver rejects multi-statement Exec unless the DSN enables it.
func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schemas[s.dialect] {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}
	return nil
}
