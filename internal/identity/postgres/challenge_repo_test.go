// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/identity"
	"github.com/hireloop/hireloop/internal/identity/postgres"
)

func sampleChallenge() *identity.Challenge {
	return &identity.Challenge{
		ID:        ulid.Make(),
		Subject:   "alice@example.com",
		Code:      "123456",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestChallengeRepository_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("stores challenge", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)
		c := sampleChallenge()

		mock.ExpectExec(`INSERT INTO otp_challenges`).
			WithArgs(c.ID.String(), c.Subject, c.Code, c.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Upsert(ctx, c)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database error", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)
		c := sampleChallenge()

		mock.ExpectExec(`INSERT INTO otp_challenges`).
			WithArgs(c.ID.String(), c.Subject, c.Code, c.CreatedAt).
			WillReturnError(errors.New("connection refused"))

		err := repo.Upsert(ctx, c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestChallengeRepository_GetBySubject(t *testing.T) {
	ctx := context.Background()

	t.Run("returns challenge", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)
		c := sampleChallenge()

		rows := pgxmock.NewRows([]string{"id", "subject", "code", "created_at"}).
			AddRow(c.ID.String(), c.Subject, c.Code, c.CreatedAt)

		mock.ExpectQuery(`SELECT id, subject, code, created_at`).
			WithArgs("alice@example.com").
			WillReturnRows(rows)

		got, err := repo.GetBySubject(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)

		mock.ExpectQuery(`SELECT id, subject, code, created_at`).
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"id", "subject", "code", "created_at"}))

		_, err := repo.GetBySubject(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, identity.ErrNotFound)
	})

	t.Run("unparseable id is an error", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)

		rows := pgxmock.NewRows([]string{"id", "subject", "code", "created_at"}).
			AddRow("not-a-ulid", "alice@example.com", "123456", time.Now())

		mock.ExpectQuery(`SELECT id, subject, code, created_at`).
			WithArgs("alice@example.com").
			WillReturnRows(rows)

		_, err := repo.GetBySubject(ctx, "alice@example.com")
		assert.Error(t, err)
	})
}

func TestChallengeRepository_DeleteBySubject(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes challenge", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)

		mock.ExpectExec(`DELETE FROM otp_challenges WHERE subject`).
			WithArgs("alice@example.com").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err := repo.DeleteBySubject(ctx, "alice@example.com")
		assert.NoError(t, err)
	})

	t.Run("absence is not an error", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)

		mock.ExpectExec(`DELETE FROM otp_challenges WHERE subject`).
			WithArgs("ghost@example.com").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeleteBySubject(ctx, "ghost@example.com")
		assert.NoError(t, err)
	})
}

func TestChallengeRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()

	t.Run("returns deleted count", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)
		cutoff := time.Date(2026, 8, 1, 11, 55, 0, 0, time.UTC)

		mock.ExpectExec(`DELETE FROM otp_challenges WHERE created_at`).
			WithArgs(cutoff).
			WillReturnResult(pgxmock.NewResult("DELETE", 4))

		count, err := repo.DeleteOlderThan(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("propagates database error", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewChallengeRepository(mock)

		mock.ExpectExec(`DELETE FROM otp_challenges WHERE created_at`).
			WithArgs(pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.DeleteOlderThan(ctx, time.Now())
		assert.Error(t, err)
	})
}
