// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/hireloop/hireloop/internal/identity"
)

const bearerPrefix = "Bearer "

// AuthenticationGate resolves the bearer token on each request into an
// authenticated principal on the request context. The gate is fail-open: a
// missing, malformed, expired, or unresolvable token leaves the request
// anonymous and passes it through; handlers that need a principal reject
// anonymous requests themselves. A principal already present on the context
// is never overwritten.
type AuthenticationGate struct {
	tokens     *identity.TokenService
	principals identity.PrincipalRepository
	logger     *slog.Logger
}

// NewAuthenticationGate creates a gate over the given token service and
// principal repository. A nil logger discards output.
func NewAuthenticationGate(tokens *identity.TokenService, principals identity.PrincipalRepository, logger *slog.Logger) (*AuthenticationGate, error) {
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	if principals == nil {
		return nil, oops.Errorf("principals repository is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthenticationGate{tokens: tokens, principals: principals, logger: logger}, nil
}

// Wrap returns a handler that runs the gate before next.
func (g *AuthenticationGate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if PrincipalFromContext(ctx) != nil {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := g.tokens.Validate(token)
		if err != nil {
			// Invalid bearer passes through anonymous; protected
			// handlers reject downstream.
			g.logger.Debug("bearer token rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		principal, err := g.principals.GetByEmail(ctx, subject)
		if err != nil {
			g.logger.Debug("bearer subject unresolved", "subject", subject, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// bearerToken extracts the token from the Authorization header. Returns
// false when the header is absent or does not carry a bearer scheme.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
