// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/hireloop/hireloop/internal/identity"
)

// ChallengeRepository implements identity.ChallengeRepository using
// PostgreSQL. The subject column carries a unique constraint, so the upsert
// keeps at most one live challenge per subject in a single statement.
type ChallengeRepository struct {
	db DB
}

// NewChallengeRepository creates a new ChallengeRepository.
func NewChallengeRepository(db DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Upsert stores the challenge, replacing any prior challenge for the same
// subject atomically.
func (r *ChallengeRepository) Upsert(ctx context.Context, challenge *identity.Challenge) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otp_challenges (id, subject, code, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject)
		DO UPDATE SET id = EXCLUDED.id, code = EXCLUDED.code, created_at = EXCLUDED.created_at
	`, challenge.ID.String(), challenge.Subject, challenge.Code, challenge.CreatedAt)
	if err != nil {
		return oops.Code("OTP_UPSERT_FAILED").
			With("operation", "upsert otp_challenge").
			With("subject", challenge.Subject).
			Wrap(err)
	}
	return nil
}

// GetBySubject retrieves the live challenge for a subject.
func (r *ChallengeRepository) GetBySubject(ctx context.Context, subject string) (*identity.Challenge, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, subject, code, created_at
		FROM otp_challenges
		WHERE subject = $1
	`, subject)

	challenge, err := r.scanChallenge(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("OTP_NOT_FOUND").
			With("subject", subject).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("OTP_GET_FAILED").
			With("operation", "get otp_challenge by subject").
			With("subject", subject).
			Wrap(err)
	}
	return challenge, nil
}

// DeleteBySubject removes the challenge for a subject, if any. Absence is not
// an error: replacement and the sweep may already have removed it.
func (r *ChallengeRepository) DeleteBySubject(ctx context.Context, subject string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM otp_challenges WHERE subject = $1
	`, subject)
	if err != nil {
		return oops.Code("OTP_DELETE_FAILED").
			With("operation", "delete otp_challenge").
			With("subject", subject).
			Wrap(err)
	}
	return nil
}

// DeleteOlderThan removes every challenge created before the cutoff and
// returns the count.
func (r *ChallengeRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM otp_challenges WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, oops.Code("OTP_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired otp_challenges").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanChallenge scans a single row into a Challenge.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *ChallengeRepository) scanChallenge(row pgx.Row) (*identity.Challenge, error) {
	var (
		idStr     string
		subject   string
		code      string
		createdAt time.Time
	)

	err := row.Scan(&idStr, &subject, &code, &createdAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("OTP_SCAN_FAILED").
			With("operation", "scan otp_challenge").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("OTP_INVALID_ID").
			With("operation", "parse challenge id").
			With("id", idStr).
			Wrap(err)
	}

	return &identity.Challenge{
		ID:        id,
		Subject:   subject,
		Code:      code,
		CreatedAt: createdAt,
	}, nil
}

// Compile-time interface check.
var _ identity.ChallengeRepository = (*ChallengeRepository)(nil)
