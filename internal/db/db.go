package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store bundles the raw sqlite handle with the typed query layer. The pool is
// capped at one connection; every reader and writer in the app funnels
// through it, so checkout transactions never see SQLITE_BUSY.
type Store struct {
	DB *sql.DB
	Q  *Queries
}

// dsn enables foreign keys (order_items references menu rows with
// ON DELETE SET NULL) and waits out short lock contention instead of failing.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

func Open(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{DB: sqlDB, Q: &Queries{db: sqlDB}}, nil
}

func (s *Store) Close() error { return s.DB.Close() }
func (s *Store) Ping() error  { return s.DB.Ping() }
