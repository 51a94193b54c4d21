// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/samber/oops"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// AccountType tags a principal as a job seeker or a job poster.
type AccountType string

// Valid account types.
const (
	AccountApplicant AccountType = "APPLICANT"
	AccountEmployer  AccountType = "EMPLOYER"
)

// Valid reports whether the account type is one of the known tags.
func (t AccountType) Valid() bool {
	return t == AccountApplicant || t == AccountEmployer
}

// Principal is an account in the identity core. The subject (email) is the
// globally unique identifier; comparison is case-insensitive and the stored
// form is always lowercase. PasswordHash is opaque to everything but the
// PasswordHasher that produced it.
type Principal struct {
	ID           int64
	ProfileID    int64
	Name         string
	Email        string
	PasswordHash string
	AccountType  AccountType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPrincipal creates a validated Principal. The email is normalized to
// lowercase; IDs are assigned by the caller from the sequence allocator.
func NewPrincipal(id, profileID int64, name, email, passwordHash string, accountType AccountType) (*Principal, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, oops.Code("PRINCIPAL_INVALID_ID").Errorf("principal id must be positive")
	}
	if passwordHash == "" {
		return nil, oops.Code("PRINCIPAL_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if !accountType.Valid() {
		return nil, oops.Code("PRINCIPAL_INVALID_ACCOUNT_TYPE").
			With("account_type", string(accountType)).
			Errorf("unknown account type")
	}

	now := time.Now()
	return &Principal{
		ID:           id,
		ProfileID:    profileID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		AccountType:  accountType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail lowercases and trims a subject for case-insensitive
// comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that the subject is a plain RFC 5322 address.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("PRINCIPAL_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return oops.Code("PRINCIPAL_INVALID_EMAIL").
			With("email", email).
			Errorf("malformed email address")
	}
	return nil
}

// PrincipalRepository manages principal persistence.
type PrincipalRepository interface {
	// Create stores a new principal. Returns ErrAlreadyExists if the
	// subject is taken.
	Create(ctx context.Context, principal *Principal) error

	// GetByEmail retrieves a principal by subject (case-insensitive).
	// Returns ErrNotFound if no principal has the given subject.
	GetByEmail(ctx context.Context, email string) (*Principal, error)

	// UpdatePassword replaces only the password hash for a subject.
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}
