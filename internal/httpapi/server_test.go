// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package httpapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/httpapi"
	"github.com/hireloop/hireloop/internal/identity"
	"github.com/hireloop/hireloop/internal/identity/mocks"
)

func newServerFixture(t *testing.T) *httpapi.Server {
	t.Helper()

	tokens := newTestTokenService(t)
	principals := mocks.NewMockPrincipalRepository(t)
	sequences := mocks.NewMockSequenceAllocator(t)
	hasher := mocks.NewMockPasswordHasher(t)
	challenges := mocks.NewMockChallengeRepository(t)
	notifier := mocks.NewMockNotifier(t)

	auth, err := identity.NewAuthService(principals, sequences, hasher, tokens, notifier)
	require.NoError(t, err)
	otp, err := identity.NewOTPService(principals, challenges, notifier, 0)
	require.NoError(t, err)
	gate, err := httpapi.NewAuthenticationGate(tokens, principals, nil)
	require.NoError(t, err)
	handler, err := httpapi.NewHandler(auth, otp, nil)
	require.NoError(t, err)

	server, err := httpapi.NewServer("127.0.0.1:0", handler, gate)
	require.NoError(t, err)
	return server
}

func TestServerLifecycle(t *testing.T) {
	server := newServerFixture(t)

	_, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})

	require.NotEmpty(t, server.Addr())

	// Routes answer over a real listener.
	resp, err := http.Get("http://" + server.Addr() + "/api/users/me")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	t.Run("double start fails", func(t *testing.T) {
		_, err := server.Start()
		assert.Error(t, err)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, server.Stop(ctx))
		require.NoError(t, server.Stop(ctx))
	})
}

func TestNewServerValidation(t *testing.T) {
	_, err := httpapi.NewServer("", nil, nil)
	assert.Error(t, err)
}
