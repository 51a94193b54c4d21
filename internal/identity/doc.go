// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

// Package identity provides the credential core of HireLoop: principal
// accounts, password hashing, stateless bearer tokens, one-time-password
// challenges, and the shared sequence allocator.
//
// # Domain Types
//
// Domain types (Principal, Challenge) should be created using their
// constructors:
//   - NewPrincipal - creates a Principal with a validated subject and hash
//   - NewChallenge - creates a Challenge bound to a subject and code
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - AuthService - registration, login, password change
//   - TokenService - issuing and validating signed bearer tokens
//   - OTPService - issuing, verifying, and sweeping one-time passwords
//
// Services are created with New*Service constructors that validate
// dependencies.
package identity
