// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/identity"
	"github.com/hireloop/hireloop/internal/identity/postgres"
	"github.com/hireloop/hireloop/pkg/errutil"
)

func TestSequenceRepository_NextValue(t *testing.T) {
	ctx := context.Background()

	t.Run("returns incremented value", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewSequenceRepository(mock, 0)

		mock.ExpectQuery(`INSERT INTO sequences`).
			WithArgs(identity.SequenceUsers, int64(0)).
			WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(int64(8)))

		value, err := repo.NextValue(ctx, identity.SequenceUsers)
		require.NoError(t, err)
		assert.Equal(t, int64(8), value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first allocation starts above the base", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewSequenceRepository(mock, 1000)

		mock.ExpectQuery(`INSERT INTO sequences`).
			WithArgs(identity.SequenceJobs, int64(1000)).
			WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(int64(1001)))

		value, err := repo.NextValue(ctx, identity.SequenceJobs)
		require.NoError(t, err)
		assert.Equal(t, int64(1001), value)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewSequenceRepository(mock, 0)

		_, err := repo.NextValue(ctx, "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SEQUENCE_INVALID_KEY")
	})

	t.Run("storage failure propagates without a fallback value", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewSequenceRepository(mock, 0)

		mock.ExpectQuery(`INSERT INTO sequences`).
			WithArgs(identity.SequenceUsers, int64(0)).
			WillReturnError(errors.New("connection refused"))

		value, err := repo.NextValue(ctx, identity.SequenceUsers)
		require.Error(t, err)
		assert.Zero(t, value)
	})
}
