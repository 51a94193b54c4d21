// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
)

// OTPService manages one-time-password challenges: issue, verify, and the
// expiry sweep. Operations for the same subject serialize through a keyed
// mutex so that no two of them interleave against inconsistent state;
// operations for different subjects run concurrently.
type OTPService struct {
	principals PrincipalRepository
	challenges ChallengeRepository
	notifier   Notifier
	ttl        time.Duration
	logger     *slog.Logger

	locks *keyedMutex
	now   func() time.Time
}

// NewOTPService creates an OTPService with a no-op logger. A non-positive ttl
// falls back to DefaultChallengeTTL.
func NewOTPService(principals PrincipalRepository, challenges ChallengeRepository, notifier Notifier, ttl time.Duration) (*OTPService, error) {
	if principals == nil {
		return nil, oops.Errorf("principals repository is required")
	}
	if challenges == nil {
		return nil, oops.Errorf("challenges repository is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return &OTPService{
		principals: principals,
		challenges: challenges,
		notifier:   notifier,
		ttl:        ttl,
		logger:     slog.New(slog.DiscardHandler),
		locks:      newKeyedMutex(),
		now:        time.Now,
	}, nil
}

// NewOTPServiceWithLogger creates an OTPService with the provided logger.
func NewOTPServiceWithLogger(principals PrincipalRepository, challenges ChallengeRepository, notifier Notifier, ttl time.Duration, logger *slog.Logger) (*OTPService, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc, err := NewOTPService(principals, challenges, notifier, ttl)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// TTL returns the configured challenge lifetime.
func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// Issue generates a fresh code for the subject and stores it, replacing any
// prior challenge so that at most one is live per subject. The code is handed
// to the notifier for out-of-band delivery; delivery failure is logged but
// does not fail the issue (the challenge exists regardless). Returns
// ErrNotFound if the subject is unknown.
func (s *OTPService) Issue(ctx context.Context, subject string) (string, error) {
	subject = NormalizeEmail(subject)

	if _, err := s.principals.GetByEmail(ctx, subject); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code("OTP_SUBJECT_UNKNOWN").Wrap(ErrNotFound)
		}
		return "", oops.Code("OTP_ISSUE_FAILED").
			With("operation", "get principal").
			Wrap(err)
	}

	code, err := GenerateOTPCode()
	if err != nil {
		return "", oops.Code("OTP_ISSUE_FAILED").
			With("operation", "generate code").
			Wrap(err)
	}

	challenge, err := NewChallenge(subject, code)
	if err != nil {
		return "", oops.Code("OTP_ISSUE_FAILED").
			With("operation", "create challenge").
			Wrap(err)
	}

	s.locks.Lock(subject)
	err = s.challenges.Upsert(ctx, challenge)
	s.locks.Unlock(subject)
	if err != nil {
		return "", oops.Code("OTP_ISSUE_FAILED").
			With("operation", "store challenge").
			Wrap(err)
	}

	OTPIssued.Inc()

	if err := s.notifier.Notify(ctx, Notification{
		Subject: subject,
		Action:  "Account Verification",
		Message: fmt.Sprintf("Your HireLoop verification code is %s. It expires in %s.", code, s.ttl),
	}); err != nil {
		// Delivery is out of band and best effort; the challenge stands.
		s.logger.Warn("otp delivery failed", "subject", subject, "error", err)
	}

	return code, nil
}

// Verify checks a candidate code against the live challenge for the subject.
// The candidate is trimmed but not otherwise normalized. Returns ErrNotFound
// if no live challenge exists (including one past its TTL that the sweep has
// not yet removed - validity is decided here, not by sweep timing) and
// ErrIncorrectOTP on a mismatch. On success the challenge is deleted
// immediately, making each code single-use.
func (s *OTPService) Verify(ctx context.Context, subject, candidate string) error {
	subject = NormalizeEmail(subject)
	candidate = strings.TrimSpace(candidate)

	s.locks.Lock(subject)
	defer s.locks.Unlock(subject)

	challenge, err := s.challenges.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			OTPVerifications.WithLabelValues(StatusRejected).Inc()
			return oops.Code("OTP_NOT_FOUND").Wrap(ErrNotFound)
		}
		OTPVerifications.WithLabelValues(StatusError).Inc()
		return oops.Code("OTP_VERIFY_FAILED").
			With("operation", "get challenge").
			Wrap(err)
	}

	if challenge.IsExpiredAt(s.now(), s.ttl) {
		// Past TTL the challenge is dead even before the sweep fires.
		// Remove it opportunistically while the subject lock is held.
		if err := s.challenges.DeleteBySubject(ctx, subject); err != nil {
			s.logger.Warn("expired challenge cleanup failed", "subject", subject, "error", err)
		}
		OTPVerifications.WithLabelValues(StatusRejected).Inc()
		return oops.Code("OTP_NOT_FOUND").Wrap(ErrNotFound)
	}

	if subtle.ConstantTimeCompare([]byte(candidate), []byte(challenge.Code)) != 1 {
		OTPVerifications.WithLabelValues(StatusRejected).Inc()
		return oops.Code("OTP_INCORRECT").Wrap(ErrIncorrectOTP)
	}

	// Single-use: a verified challenge must not verify again.
	if err := s.challenges.DeleteBySubject(ctx, subject); err != nil {
		OTPVerifications.WithLabelValues(StatusError).Inc()
		return oops.Code("OTP_VERIFY_FAILED").
			With("operation", "invalidate challenge").
			Wrap(err)
	}

	OTPVerifications.WithLabelValues(StatusSuccess).Inc()
	return nil
}

// SweepExpired removes every challenge whose age exceeds the TTL at now and
// returns how many were removed. Safe to run concurrently with Verify: the
// repository delete is keyed on creation time, and Verify re-checks age
// itself, so sweep timing never decides validity.
func (s *OTPService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.challenges.DeleteOlderThan(ctx, now.Add(-s.ttl))
	if err != nil {
		return 0, oops.Code("OTP_SWEEP_FAILED").Wrap(err)
	}
	if count > 0 {
		OTPSwept.Add(float64(count))
		s.logger.Info("removed expired otp challenges", "count", count)
	}
	return count, nil
}
