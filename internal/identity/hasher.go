// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("CREDENTIAL_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher is the one-way comparison primitive of the credential store.
// The concrete algorithm is pluggable; callers only rely on Hash producing an
// opaque value and Verify running in time independent of where a mismatch
// occurs.
type PasswordHasher interface {
	// Hash produces an opaque one-way hash of the password.
	Hash(password string) (string, error)

	// Verify checks the password against a stored hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// on an undecodable hash.
	Verify(password, hash string) (bool, error)
}

// argon2Params are the cost parameters baked into every hash this process
// produces. Verification reads the parameters back out of the PHC string, so
// changing these does not invalidate stored hashes.
type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
	saltLen uint32
	keyLen  uint32
}

// OWASP-recommended argon2id parameters.
var defaultArgon2Params = argon2Params{
	time:    1,
	memory:  64 * 1024,
	threads: 4,
	saltLen: 16,
	keyLen:  32,
}

// Argon2idHasher implements PasswordHasher using argon2id with PHC-encoded
// output ($argon2id$v=19$m=...,t=...,p=...$<salt>$<hash>).
type Argon2idHasher struct {
	params argon2Params
}

// NewArgon2idHasher creates an Argon2idHasher with the default parameters.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{params: defaultArgon2Params}
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("CREDENTIAL_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.time, h.params.memory, h.params.threads, h.params.keyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memory,
		h.params.time,
		h.params.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify checks the password against a PHC-encoded argon2id hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	salt, expected, params, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, params.keyLen)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// decodeArgon2Hash parses a PHC string back into its salt, key, and cost
// parameters.
func decodeArgon2Hash(encodedHash string) ([]byte, []byte, argon2Params, error) {
	var params argon2Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, params, oops.Code("CREDENTIAL_INVALID_HASH").Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, oops.Code("CREDENTIAL_INVALID_HASH").
			Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, oops.Code("CREDENTIAL_INVALID_HASH").Wrap(err)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &threads); err != nil {
		return nil, nil, params, oops.Code("CREDENTIAL_INVALID_HASH").Wrap(err)
	}
	// Threads must fit in uint8 to prevent silent truncation.
	if threads == 0 || threads > 255 {
		return nil, nil, params, oops.Code("CREDENTIAL_INVALID_HASH").
			Errorf("threads value %d out of range", threads)
	}
	params.threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, oops.Code("CREDENTIAL_INVALID_HASH").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, oops.Code("CREDENTIAL_INVALID_HASH").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1<<10 {
		return nil, nil, params, oops.Code("CREDENTIAL_INVALID_HASH").
			Errorf("invalid hash key length: %d", len(key))
	}
	params.keyLen = uint32(len(key))

	return salt, key, params, nil
}
