// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import "errors"

// Sentinel errors matched with errors.Is. Services wrap these in oops errors
// carrying a machine-readable code; handlers map the sentinels to responses.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating an entity whose subject
	// is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredential is returned on a password mismatch. The message
	// surfaced to callers never reveals whether the subject exists.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidToken is returned for a bearer token with a bad signature,
	// malformed encoding, or past expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrIncorrectOTP is returned when a candidate code does not match the
	// live challenge for the subject.
	ErrIncorrectOTP = errors.New("incorrect one-time password")
)
