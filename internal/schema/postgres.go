// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresExecutor runs statements directly on a pgx connection pool.
type PostgresExecutor struct {
	// Pool is the PostgreSQL connection pool
	Pool *pgxpool.Pool
}

// NewPostgresExecutor wraps an existing pool.
func NewPostgresExecutor(pool *pgxpool.Pool) *PostgresExecutor {
	return &PostgresExecutor{Pool: pool}
}

// ConnectPostgres opens a pool for dsn and verifies it with a ping bounded by
// timeout.
func ConnectPostgres(ctx context.Context, dsn string, timeout time.Duration) (*PostgresExecutor, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	// statements run one at a time
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresExecutor{Pool: pool}, nil
}

// Exec implements Executor.
func (e *PostgresExecutor) Exec(ctx context.Context, stmt string) error {
	_, err := e.Pool.Exec(ctx, stmt)
	return err
}

// InTx implements Transactor. fn's executor runs on the transaction.
func (e *PostgresExecutor) InTx(ctx context.Context, fn func(Executor) error) error {
	return pgx.BeginFunc(ctx, e.Pool, func(tx pgx.Tx) error {
		return fn(txExecutor{tx: tx})
	})
}

// ServerVersion returns the server_version setting.
func (e *PostgresExecutor) ServerVersion(ctx context.Context) (string, error) {
	var v string
	if err := e.Pool.QueryRow(ctx, "SHOW server_version").Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}

// Close releases the pool.
func (e *PostgresExecutor) Close() {
	if e.Pool != nil {
		e.Pool.Close()
	}
}

type txExecutor struct {
	tx pgx.Tx
}

func (t txExecutor) Exec(ctx context.Context, stmt string) error {
	_, err := t.tx.Exec(ctx, stmt)
	return err
}
