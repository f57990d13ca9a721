// Package postgres reads collections straight from the store's Postgres
// database, bypassing the HTTP API.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/hamed0406/storeprobe/internal/domain"
)

type Store struct {
	db      *sql.DB
	timeout time.Duration
}

// Open parses dsn and prepares a lazily connecting pool. credential is
// used as the password when dsn carries none.
func Open(dsn, credential string, timeout time.Duration) (*Store, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.Password == "" {
		cfg.Password = credential
	}
	return New(stdlib.OpenDB(*cfg), timeout), nil
}

// New wraps an existing handle.
func New(db *sql.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query returns up to limit rows of collection, each row decoded from its
// row_to_json form.
func (s *Store) Query(ctx context.Context, collection string, limit int) ([]domain.Record, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := s.db.QueryContext(ctx, selectQuery(collection), limit)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", collection, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func selectQuery(collection string) string {
	return `SELECT row_to_json(t)::text FROM (SELECT * FROM ` +
		pgx.Identifier{collection}.Sanitize() + ` LIMIT $1) AS t`
}
