package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// DB wraps sqlx.DB for Postgres (pgx) or SQLite.
type DB struct {
	Client *sqlx.DB
	Driver string
}

// NewDB opens a Postgres connection with sane pool defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sqlx.Open(DriverPostgres, connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db, Driver: DriverPostgres}, db.PingContext(context.Background())
}

// NewSQLite opens (and creates) a SQLite file. ":memory:" gives a private
// in-memory database.
func NewSQLite(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dsn = path + sep + "_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite serialises writers anyway and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	return &DB{Client: db, Driver: DriverSQLite}, db.PingContext(context.Background())
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
