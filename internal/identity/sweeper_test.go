// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hireloop/hireloop/internal/identity"
	"github.com/hireloop/hireloop/internal/identity/mocks"
)

func newSweeperFixture(t *testing.T, interval time.Duration) (*identity.Sweeper, *mocks.MockChallengeRepository) {
	t.Helper()

	principals := mocks.NewMockPrincipalRepository(t)
	challenges := mocks.NewMockChallengeRepository(t)
	notifier := mocks.NewMockNotifier(t)

	otp, err := identity.NewOTPService(principals, challenges, notifier, 5*time.Minute)
	require.NoError(t, err)

	sweeper, err := identity.NewSweeper(otp, interval, nil)
	require.NoError(t, err)
	return sweeper, challenges
}

func TestSweeperRunOnce(t *testing.T) {
	sweeper, challenges := newSweeperFixture(t, time.Hour)

	challenges.On("DeleteOlderThan", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(2), nil)

	err := sweeper.RunOnce(context.Background())
	assert.NoError(t, err)
}

func TestSweeperStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper, challenges := newSweeperFixture(t, 10*time.Millisecond)

	swept := make(chan struct{}, 16)
	challenges.On("DeleteOlderThan", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		}).
		Return(int64(0), nil).
		Maybe()

	sweeper.Start(context.Background())

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never fired")
	}

	sweeper.Stop()
}

func TestSweeperStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper, challenges := newSweeperFixture(t, 10*time.Millisecond)
	challenges.On("DeleteOlderThan", mock.Anything, mock.Anything).
		Return(int64(0), nil).
		Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	cancel()

	// Stop after cancel must still return promptly.
	sweeper.Stop()
}

func TestNewSweeperRequiresService(t *testing.T) {
	_, err := identity.NewSweeper(nil, time.Minute, nil)
	assert.Error(t, err)
}
