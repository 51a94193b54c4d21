// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/hireloop/hireloop/internal/identity"
)

// PrincipalRepository implements identity.PrincipalRepository using
// PostgreSQL.
type PrincipalRepository struct {
	db DB
}

// NewPrincipalRepository creates a new PrincipalRepository.
func NewPrincipalRepository(db DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// Create stores a new principal. A unique violation on the subject maps to
// identity.ErrAlreadyExists so callers can distinguish races from storage
// failures.
func (r *PrincipalRepository) Create(ctx context.Context, principal *identity.Principal) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO principals (
			id, profile_id, name, email, password_hash,
			account_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		principal.ID,
		principal.ProfileID,
		principal.Name,
		principal.Email,
		principal.PasswordHash,
		string(principal.AccountType),
		principal.CreatedAt,
		principal.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("PRINCIPAL_SUBJECT_TAKEN").
				With("email", principal.Email).
				Wrap(identity.ErrAlreadyExists)
		}
		return oops.Code("PRINCIPAL_CREATE_FAILED").
			With("operation", "insert principal").
			With("email", principal.Email).
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves a principal by subject (case-insensitive).
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*identity.Principal, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, profile_id, name, email, password_hash,
		       account_type, created_at, updated_at
		FROM principals
		WHERE LOWER(email) = LOWER($1)
	`, email)

	principal, err := r.scanPrincipal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").
			With("email", email).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_BY_EMAIL_FAILED").
			With("operation", "get principal by email").
			With("email", email).
			Wrap(err)
	}
	return principal, nil
}

// UpdatePassword replaces only the password hash for a subject.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE principals SET password_hash = $2, updated_at = $3
		WHERE LOWER(email) = LOWER($1)
	`, email, passwordHash, time.Now())
	if err != nil {
		return oops.Code("PRINCIPAL_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("email", email).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("email", email).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// scanPrincipal scans a single row into a Principal.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *PrincipalRepository) scanPrincipal(row pgx.Row) (*identity.Principal, error) {
	var (
		p           identity.Principal
		accountType string
	)

	err := row.Scan(
		&p.ID,
		&p.ProfileID,
		&p.Name,
		&p.Email,
		&p.PasswordHash,
		&accountType,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("PRINCIPAL_SCAN_FAILED").
			With("operation", "scan principal").
			Wrap(err)
	}

	p.AccountType = identity.AccountType(accountType)
	return &p, nil
}

// Compile-time interface check.
var _ identity.PrincipalRepository = (*PrincipalRepository)(nil)
