// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS sources (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT        NOT NULL,
	type       TEXT        NOT NULL,
	config     JSONB       NOT NULL DEFAULT '{}'::jsonb,
	is_active  BOOLEAN     NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sources_active ON sources (is_active);
`

// Repository persists sources in PostgreSQL via a pgx connection pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository opens a connection pool against dsn and verifies it
// with a ping.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// EnsureSchema creates the sources table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating sources schema: %w", err)
	}
	return nil
}

// Create inserts a source and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, src *Source) (*Source, error) {
	cfg := src.Config
	if len(cfg) == 0 {
		cfg = []byte("{}")
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sources (name, type, config, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, type, config, is_active, created_at`,
		src.Name, src.Type, cfg, src.IsActive)
	return scanSource(row)
}

// GetByID fetches a single source, active or not.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Source, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, type, config, is_active, created_at
		 FROM sources WHERE id = $1`, id)
	return scanSource(row)
}

// Deactivate marks a source inactive. The row stays around so ranked
// items keep a resolvable provenance.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sources SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivating source %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSourceNotFound
	}
	return nil
}

// List returns every source, newest first.
func (r *Repository) List(ctx context.Context) ([]*Source, error) {
	return r.list(ctx,
		`SELECT id, name, type, config, is_active, created_at
		 FROM sources ORDER BY created_at DESC`)
}

// ListActive returns sources the scheduler should be polling.
func (r *Repository) ListActive(ctx context.Context) ([]*Source, error) {
	return r.list(ctx,
		`SELECT id, name, type, config, is_active, created_at
		 FROM sources WHERE is_active ORDER BY id`)
}

func (r *Repository) list(ctx context.Context, query string) ([]*Source, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var out []*Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return out, nil
}

// Close releases the connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*Source, error) {
	var src Source
	err := row.Scan(&src.ID, &src.Name, &src.Type, &src.Config, &src.IsActive, &src.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	return &src, nil
}
