// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package httpapi

import (
	"context"

	"github.com/hireloop/hireloop/internal/identity"
)

type contextKey int

const principalContextKey contextKey = iota

// WithPrincipal attaches an authenticated principal to the context.
func WithPrincipal(ctx context.Context, principal *identity.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request is anonymous.
func PrincipalFromContext(ctx context.Context) *identity.Principal {
	principal, _ := ctx.Value(principalContextKey).(*identity.Principal)
	return principal
}
