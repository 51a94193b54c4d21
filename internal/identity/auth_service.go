// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// dummyPasswordHash is verified against when a subject doesn't exist so that
// response time does not reveal whether an account is registered. It is a
// fake hash that can never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing-attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// externalCredentialHash is stored for principals created through the
// identity-provider exchange. It can never match any password, so those
// accounts stay closed to password login until a credential is set via
// ChangePassword.
const externalCredentialHash = dummyPasswordHash

// AuthService provides registration, login, and password-change operations.
type AuthService struct {
	principals PrincipalRepository
	sequences  SequenceAllocator
	hasher     PasswordHasher
	tokens     *TokenService
	notifier   Notifier
	logger     *slog.Logger
}

// NewAuthService creates an AuthService with a no-op logger.
// Returns an error if any required dependency is nil.
func NewAuthService(principals PrincipalRepository, sequences SequenceAllocator, hasher PasswordHasher, tokens *TokenService, notifier Notifier) (*AuthService, error) {
	if principals == nil {
		return nil, oops.Errorf("principals repository is required")
	}
	if sequences == nil {
		return nil, oops.Errorf("sequence allocator is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	return &AuthService{
		principals: principals,
		sequences:  sequences,
		hasher:     hasher,
		tokens:     tokens,
		notifier:   notifier,
		logger:     slog.New(slog.DiscardHandler),
	}, nil
}

// NewAuthServiceWithLogger creates an AuthService with the provided logger.
func NewAuthServiceWithLogger(principals PrincipalRepository, sequences SequenceAllocator, hasher PasswordHasher, tokens *TokenService, notifier Notifier, logger *slog.Logger) (*AuthService, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc, err := NewAuthService(principals, sequences, hasher, tokens, notifier)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// Register creates a new principal. The principal and profile identifiers come
// from the shared sequence allocator; an aborted save after allocation leaves a
// permanent gap in the sequence, which is accepted.
// Returns ErrAlreadyExists if the subject is taken.
func (s *AuthService) Register(ctx context.Context, name, email, password string, accountType AccountType) (*Principal, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, oops.Code("AUTH_PASSWORD_TOO_SHORT").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}

	if _, err := s.principals.GetByEmail(ctx, email); err == nil {
		return nil, oops.Code("AUTH_SUBJECT_TAKEN").Wrap(ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check subject").
			Wrap(err)
	}

	id, err := s.sequences.NextValue(ctx, SequenceUsers)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "allocate principal id").
			Wrap(err)
	}
	profileID, err := s.sequences.NextValue(ctx, SequenceProfiles)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "allocate profile id").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	principal, err := NewPrincipal(id, profileID, name, email, hash, accountType)
	if err != nil {
		return nil, err
	}

	if err := s.principals.Create(ctx, principal); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// Lost a race with a concurrent registration for the same
			// subject; the allocated ids become sequence gaps.
			return nil, oops.Code("AUTH_SUBJECT_TAKEN").Wrap(ErrAlreadyExists)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create principal").
			Wrap(err)
	}

	s.logger.Info("principal registered", "subject", principal.Email, "account_type", string(principal.AccountType))
	return principal, nil
}

// Login verifies the password for a subject and issues a bearer token.
// Password verification runs even for unknown subjects (against a dummy hash)
// so that response time stays flat, and the same ErrInvalidCredential comes
// back whether the subject is missing or the password is wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)

	principal, lookupErr := s.principals.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = principal.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Keep the dummy hash; verification still runs below.
	default:
		Logins.WithLabelValues(StatusError).Inc()
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get principal").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && exists {
		Logins.WithLabelValues(StatusError).Inc()
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !exists || !valid {
		Logins.WithLabelValues(StatusRejected).Inc()
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredential)
	}

	token, err := s.tokens.Issue(principal.Email)
	if err != nil {
		Logins.WithLabelValues(StatusError).Inc()
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	Logins.WithLabelValues(StatusSuccess).Inc()
	return token, nil
}

// LoginWithVerifiedEmail signs in a subject whose address was already
// verified by an external identity provider, creating the principal on first
// contact. Verifying the provider credential is the caller's concern; this
// operation trusts the address it is handed. Returning subjects keep their
// stored name and account type regardless of what the provider reports.
func (s *AuthService) LoginWithVerifiedEmail(ctx context.Context, email, name string, accountType AccountType) (*Principal, string, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, "", err
	}

	principal, lookupErr := s.principals.GetByEmail(ctx, email)
	switch {
	case lookupErr == nil:
	case errors.Is(lookupErr, ErrNotFound):
		created, err := s.registerExternal(ctx, name, email, accountType)
		if err != nil {
			return nil, "", err
		}
		principal = created
	default:
		Logins.WithLabelValues(StatusError).Inc()
		return nil, "", oops.Code("AUTH_EXCHANGE_FAILED").
			With("operation", "get principal").
			Wrap(lookupErr)
	}

	token, err := s.tokens.Issue(principal.Email)
	if err != nil {
		Logins.WithLabelValues(StatusError).Inc()
		return nil, "", oops.Code("AUTH_EXCHANGE_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	Logins.WithLabelValues(StatusSuccess).Inc()
	return principal, token, nil
}

// registerExternal creates the principal for a first-time exchange. The
// stored credential hash is unmatchable, so the account cannot be entered
// with a password. A lost race with a concurrent exchange for the same
// subject resolves by adopting the winner's principal.
func (s *AuthService) registerExternal(ctx context.Context, name, email string, accountType AccountType) (*Principal, error) {
	id, err := s.sequences.NextValue(ctx, SequenceUsers)
	if err != nil {
		return nil, oops.Code("AUTH_EXCHANGE_FAILED").
			With("operation", "allocate principal id").
			Wrap(err)
	}
	profileID, err := s.sequences.NextValue(ctx, SequenceProfiles)
	if err != nil {
		return nil, oops.Code("AUTH_EXCHANGE_FAILED").
			With("operation", "allocate profile id").
			Wrap(err)
	}

	principal, err := NewPrincipal(id, profileID, name, email, externalCredentialHash, accountType)
	if err != nil {
		return nil, err
	}

	if err := s.principals.Create(ctx, principal); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			winner, getErr := s.principals.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, oops.Code("AUTH_EXCHANGE_FAILED").
					With("operation", "adopt principal").
					Wrap(getErr)
			}
			return winner, nil
		}
		return nil, oops.Code("AUTH_EXCHANGE_FAILED").
			With("operation", "create principal").
			Wrap(err)
	}

	s.logger.Info("principal registered via identity provider", "subject", principal.Email, "account_type", string(principal.AccountType))
	return principal, nil
}

// ChangePassword replaces the credential hash for a subject and sends a
// best-effort notification. Returns ErrNotFound if the subject is unknown.
func (s *AuthService) ChangePassword(ctx context.Context, email, newPassword string) error {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if len(newPassword) < MinPasswordLength {
		return oops.Code("AUTH_PASSWORD_TOO_SHORT").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}

	if _, err := s.principals.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_SUBJECT_UNKNOWN").Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "get principal").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.principals.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_SUBJECT_UNKNOWN").Wrap(ErrNotFound)
		}
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	if err := s.notifier.Notify(ctx, Notification{
		Subject: email,
		Action:  "Password Reset",
		Message: "Your HireLoop password has been reset successfully.",
	}); err != nil {
		s.logger.Warn("password change notification failed", "subject", email, "error", err)
	}

	return nil
}
