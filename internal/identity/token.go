// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the bearer token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// TokenService issues and validates stateless bearer tokens. A token is an
// HS256-signed JWT carrying the subject, issued-at, and expiry claims; its
// validity is a pure function of the signature and expiry, never of a lookup
// table. The signing key is loaded once at startup and never exposed.
type TokenService struct {
	key []byte
	ttl time.Duration

	// now is the single clock authority for issue and validate.
	now func() time.Time
}

// NewTokenService creates a TokenService with the given signing key and
// token lifetime. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(key []byte, ttl time.Duration) (*TokenService, error) {
	if len(key) == 0 {
		return nil, oops.Code("TOKEN_KEY_REQUIRED").Errorf("signing key is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{key: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token binding the subject, the current time, and the expiry
// (issued-at plus TTL).
func (s *TokenService) Issue(subject string) (string, error) {
	if subject == "" {
		return "", oops.Code("TOKEN_SUBJECT_REQUIRED").Errorf("subject cannot be empty")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of a token and returns its
// subject. Any failure - bad signature, malformed encoding, wrong algorithm,
// or past expiry - yields ErrInvalidToken. The operation is side-effect-free
// and consults no store.
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", oops.Code("TOKEN_INVALID").Wrap(ErrInvalidToken)
	}
	if claims.Subject == "" {
		return "", oops.Code("TOKEN_INVALID").Wrap(ErrInvalidToken)
	}

	return claims.Subject, nil
}
