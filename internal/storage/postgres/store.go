// Package postgres owns the pgx connection pool used by the Postgres backend.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

// Pool wraps a pgx pool together with a database/sql view of it for the ORM.
type Pool struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// Open parses databaseURL, connects, and verifies the connection.
func Open(ctx context.Context, databaseURL string, maxConns int32) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{pool: pool, db: stdlib.OpenDBFromPool(pool)}, nil
}

// DB returns a database/sql handle backed by the pool.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Ping checks that a connection can be acquired.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases database resources.
func (p *Pool) Close() {
	if p.db != nil {
		_ = p.db.Close()
	}
	if p.pool != nil {
		p.pool.Close()
	}
}

// IsUniqueViolation reports whether err carries a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
