// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/identity"
)

func TestNewPrincipal(t *testing.T) {
	t.Run("creates principal", func(t *testing.T) {
		p, err := identity.NewPrincipal(1, 2, "Alice", "Alice@Example.com", "$argon2id$hash", identity.AccountApplicant)
		require.NoError(t, err)
		assert.Equal(t, int64(1), p.ID)
		assert.Equal(t, int64(2), p.ProfileID)
		assert.Equal(t, "alice@example.com", p.Email)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("rejects non-positive id", func(t *testing.T) {
		_, err := identity.NewPrincipal(0, 2, "Alice", "alice@example.com", "$argon2id$hash", identity.AccountApplicant)
		assert.Error(t, err)
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := identity.NewPrincipal(1, 2, "Alice", "alice@example.com", "", identity.AccountApplicant)
		assert.Error(t, err)
	})

	t.Run("rejects unknown account type", func(t *testing.T) {
		_, err := identity.NewPrincipal(1, 2, "Alice", "alice@example.com", "$argon2id$hash", identity.AccountType("ROBOT"))
		assert.Error(t, err)
	})
}

func TestAccountTypeValid(t *testing.T) {
	assert.True(t, identity.AccountApplicant.Valid())
	assert.True(t, identity.AccountEmployer.Valid())
	assert.False(t, identity.AccountType("").Valid())
	assert.False(t, identity.AccountType("applicant").Valid(), "tags are case-sensitive")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", identity.NormalizeEmail("  Alice@EXAMPLE.com "))
	assert.Equal(t, "", identity.NormalizeEmail("   "))
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"a.b+tag@sub.example.org",
	}
	for _, email := range valid {
		assert.NoError(t, identity.ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"not-an-email",
		"@example.com",
		"alice@",
		"Alice Smith <alice@example.com>",
	}
	for _, email := range invalid {
		assert.Error(t, identity.ValidateEmail(email), email)
	}
}
