// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Challenge configuration.
const (
	// OTPCodeLength is the fixed length of a one-time-password code.
	OTPCodeLength = 6

	// DefaultChallengeTTL is how long a challenge stays verifiable.
	DefaultChallengeTTL = 5 * time.Minute

	// DefaultSweepInterval is how often expired challenges are purged.
	DefaultSweepInterval = time.Minute
)

// otpCodeSpace is 10^OTPCodeLength, the number of possible codes.
var otpCodeSpace = big.NewInt(1_000_000)

// Challenge is a live one-time-password challenge bound to a subject. At most
// one challenge exists per subject at a time; issuing a new one replaces the
// previous one. A challenge is destroyed by successful verification, by
// replacement, or by the expiry sweep.
type Challenge struct {
	ID        ulid.ULID
	Subject   string
	Code      string
	CreatedAt time.Time
}

// NewChallenge creates a validated Challenge for the subject.
func NewChallenge(subject, code string) (*Challenge, error) {
	if subject == "" {
		return nil, oops.Code("OTP_INVALID_SUBJECT").Errorf("subject cannot be empty")
	}
	if len(code) != OTPCodeLength {
		return nil, oops.Code("OTP_INVALID_CODE").
			With("length", len(code)).
			Errorf("code must be %d digits", OTPCodeLength)
	}
	return &Challenge{
		ID:        ulid.Make(),
		Subject:   subject,
		Code:      code,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpiredAt reports whether the challenge is older than ttl at the given
// time. Verification re-checks this itself; the sweep is only a cleanup
// optimization, not the authority on validity.
func (c *Challenge) IsExpiredAt(t time.Time, ttl time.Duration) bool {
	return t.Sub(c.CreatedAt) > ttl
}

// GenerateOTPCode produces a zero-padded numeric code of OTPCodeLength digits
// from a cryptographically strong source. A predictable generator here would
// be a direct account-takeover vector.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpCodeSpace)
	if err != nil {
		return "", oops.Code("OTP_GENERATE_FAILED").Wrap(err)
	}
	return fmt.Sprintf("%0*d", OTPCodeLength, n), nil
}

// ChallengeRepository manages one-time-password challenge persistence. The
// subject is the natural key: Upsert replaces any existing challenge for the
// same subject in a single statement.
type ChallengeRepository interface {
	// Upsert stores the challenge, replacing any prior challenge for the
	// same subject.
	Upsert(ctx context.Context, challenge *Challenge) error

	// GetBySubject retrieves the live challenge for a subject.
	// Returns ErrNotFound if none exists.
	GetBySubject(ctx context.Context, subject string) (*Challenge, error)

	// DeleteBySubject removes the challenge for a subject, if any.
	DeleteBySubject(ctx context.Context, subject string) error

	// DeleteOlderThan removes every challenge created before the cutoff and
	// returns the count of deleted records.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
