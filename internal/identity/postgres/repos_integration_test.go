//go:build integration

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hireloop/hireloop/internal/identity"
	"github.com/hireloop/hireloop/internal/identity/postgres"
	"github.com/hireloop/hireloop/internal/store"
)

func setupDatabase(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("test"),
		pgcontainer.WithUsername("test"),
		pgcontainer.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := store.NewMigrator(connStr)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	pool, err := store.Connect(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return ctx, pool
}

func TestSequenceRepository_ConcurrentAllocationsAreUnique(t *testing.T) {
	ctx, pool := setupDatabase(t)
	repo := postgres.NewSequenceRepository(pool, 0)

	const workers = 16
	const perWorker = 25

	results := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				value, err := repo.NextValue(ctx, identity.SequenceUsers)
				assert.NoError(t, err)
				results <- value
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	var highest int64
	for value := range results {
		assert.False(t, seen[value], "duplicate sequence value %d", value)
		seen[value] = true
		if value > highest {
			highest = value
		}
	}

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), highest, "no values skipped under contention")
}

func TestSequenceRepository_IndependentKeys(t *testing.T) {
	ctx, pool := setupDatabase(t)
	repo := postgres.NewSequenceRepository(pool, 0)

	users, err := repo.NextValue(ctx, identity.SequenceUsers)
	require.NoError(t, err)
	profiles, err := repo.NextValue(ctx, identity.SequenceProfiles)
	require.NoError(t, err)

	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), profiles, "counters advance independently per key")
}

func TestPrincipalRepository_RoundTrip(t *testing.T) {
	ctx, pool := setupDatabase(t)
	repo := postgres.NewPrincipalRepository(pool)

	principal, err := identity.NewPrincipal(1, 1, "Alice", "alice@example.com", "$argon2id$hash", identity.AccountApplicant)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, principal))

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "ALICE@example.COM")
		require.NoError(t, err)
		assert.Equal(t, principal.ID, got.ID)
		assert.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("duplicate subject rejected regardless of case", func(t *testing.T) {
		dup, err := identity.NewPrincipal(2, 2, "Mallory", "Alice@Example.com", "$argon2id$other", identity.AccountEmployer)
		require.NoError(t, err)
		// NewPrincipal lowercases, so force the cased variant to hit
		// the database index itself.
		dup.Email = "Alice@Example.com"

		err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, identity.ErrAlreadyExists)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, "alice@example.com", "$argon2id$newhash"))

		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "$argon2id$newhash", got.PasswordHash)
	})
}

func TestChallengeRepository_UpsertReplaces(t *testing.T) {
	ctx, pool := setupDatabase(t)
	repo := postgres.NewChallengeRepository(pool)

	first, err := identity.NewChallenge("alice@example.com", "111111")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, first))

	second, err := identity.NewChallenge("alice@example.com", "222222")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.GetBySubject(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code, "at most one live challenge per subject")
	assert.Equal(t, second.ID, got.ID)
}

func TestChallengeRepository_DeleteOlderThan(t *testing.T) {
	ctx, pool := setupDatabase(t)
	repo := postgres.NewChallengeRepository(pool)

	stale, err := identity.NewChallenge("old@example.com", "111111")
	require.NoError(t, err)
	stale.CreatedAt = time.Now().Add(-10 * time.Minute)
	require.NoError(t, repo.Upsert(ctx, stale))

	fresh, err := identity.NewChallenge("new@example.com", "222222")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, fresh))

	count, err := repo.DeleteOlderThan(ctx, time.Now().Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.GetBySubject(ctx, "old@example.com")
	assert.ErrorIs(t, err, identity.ErrNotFound)

	_, err = repo.GetBySubject(ctx, "new@example.com")
	assert.NoError(t, err)
}
