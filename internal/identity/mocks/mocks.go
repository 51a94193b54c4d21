// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

// Package mocks provides testify mocks for the identity package interfaces.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hireloop/hireloop/internal/identity"
)

// MockPrincipalRepository is a mock identity.PrincipalRepository.
type MockPrincipalRepository struct {
	mock.Mock
}

// NewMockPrincipalRepository creates a mock whose expectations are asserted
// at test cleanup.
func NewMockPrincipalRepository(t *testing.T) *MockPrincipalRepository {
	t.Helper()
	m := &MockPrincipalRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPrincipalRepository) Create(ctx context.Context, principal *identity.Principal) error {
	args := m.Called(ctx, principal)
	return args.Error(0)
}

func (m *MockPrincipalRepository) GetByEmail(ctx context.Context, email string) (*identity.Principal, error) {
	args := m.Called(ctx, email)
	if p, ok := args.Get(0).(*identity.Principal); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPrincipalRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

// MockChallengeRepository is a mock identity.ChallengeRepository.
type MockChallengeRepository struct {
	mock.Mock
}

// NewMockChallengeRepository creates a mock whose expectations are asserted
// at test cleanup.
func NewMockChallengeRepository(t *testing.T) *MockChallengeRepository {
	t.Helper()
	m := &MockChallengeRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockChallengeRepository) Upsert(ctx context.Context, challenge *identity.Challenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

func (m *MockChallengeRepository) GetBySubject(ctx context.Context, subject string) (*identity.Challenge, error) {
	args := m.Called(ctx, subject)
	if c, ok := args.Get(0).(*identity.Challenge); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChallengeRepository) DeleteBySubject(ctx context.Context, subject string) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockChallengeRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockSequenceAllocator is a mock identity.SequenceAllocator.
type MockSequenceAllocator struct {
	mock.Mock
}

// NewMockSequenceAllocator creates a mock whose expectations are asserted at
// test cleanup.
func NewMockSequenceAllocator(t *testing.T) *MockSequenceAllocator {
	t.Helper()
	m := &MockSequenceAllocator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSequenceAllocator) NextValue(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher is a mock identity.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock whose expectations are asserted at
// test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	t.Helper()
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock identity.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a mock whose expectations are asserted at test
// cleanup.
func NewMockNotifier(t *testing.T) *MockNotifier {
	t.Helper()
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotifier) Notify(ctx context.Context, n identity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// Compile-time interface checks.
var (
	_ identity.PrincipalRepository = (*MockPrincipalRepository)(nil)
	_ identity.ChallengeRepository = (*MockChallengeRepository)(nil)
	_ identity.SequenceAllocator   = (*MockSequenceAllocator)(nil)
	_ identity.PasswordHasher      = (*MockPasswordHasher)(nil)
	_ identity.Notifier            = (*MockNotifier)(nil)
)
