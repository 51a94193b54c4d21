// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

// Package store provides the shared PostgreSQL connection pool and schema
// management for the identity core.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection settings. Callers treat a timeout as storage unavailability,
// never as silent success.
const (
	connectTimeout = 30 * time.Second
	connectBackoff = 500 * time.Millisecond
	dialTimeout    = 5 * time.Second
)

// Connect opens a pgx connection pool and verifies connectivity, retrying
// with fibonacci backoff until the database answers a ping or the overall
// timeout elapses. Individual dials are bounded so request handlers never
// block indefinitely on a slow store.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").
			With("operation", "parse dsn").
			Wrap(err)
	}
	cfg.ConnConfig.ConnectTimeout = dialTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	backoff := retry.NewFibonacci(connectBackoff)
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, oops.Code("DB_UNAVAILABLE").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}
