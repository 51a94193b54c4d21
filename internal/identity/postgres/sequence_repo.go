// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/hireloop/hireloop/internal/identity"
)

// SequenceRepository implements identity.SequenceAllocator using PostgreSQL.
//
// The increment-with-upsert runs as a single statement, so the database's row
// lock makes concurrent allocations for the same key strictly ordered and
// collision-free. A read followed by a separate write would reintroduce the
// duplicate-ID race.
type SequenceRepository struct {
	db   DB
	base int64
}

// NewSequenceRepository creates a SequenceRepository whose counters start at
// base (first allocation returns base+1).
func NewSequenceRepository(db DB, base int64) *SequenceRepository {
	return &SequenceRepository{db: db, base: base}
}

// NextValue atomically increments the counter for key and returns the new
// value, creating the counter at base+1 on first use. Storage failure
// propagates; there is no fallback value.
func (r *SequenceRepository) NextValue(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, oops.Code("SEQUENCE_INVALID_KEY").Errorf("counter key cannot be empty")
	}

	var value int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sequences (key, value)
		VALUES ($1, $2 + 1)
		ON CONFLICT (key)
		DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`, key, r.base).Scan(&value)
	if err != nil {
		return 0, oops.Code("SEQUENCE_ALLOCATE_FAILED").
			With("operation", "increment sequence").
			With("key", key).
			Wrap(err)
	}

	identity.SequenceAllocations.WithLabelValues(key).Inc()
	return value, nil
}

// Compile-time interface check.
var _ identity.SequenceAllocator = (*SequenceRepository)(nil)
