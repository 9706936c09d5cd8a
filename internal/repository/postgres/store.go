// Package postgres persists imported records and timesheet entries.
//
// All writes are idempotent where the domain has a natural key (chat id,
// snapshot date) and append-only where it does not (training sessions).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/pienissimo/opsdash/internal/config"
)

// Store wraps the database handle. One Store serves the whole process.
type Store struct {
	db *sql.DB
}

// New wraps an existing handle, used by tests with sqlmock.
func New(db *sql.DB) *Store { return &Store{db: db} }

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnLifetime())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for infrastructure that needs raw access, such as
// advisory locks.
func (s *Store) DB() *sql.DB { return s.db }

// Ping reports connection health for the health endpoint.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
