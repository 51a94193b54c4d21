// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/hireloop/hireloop/internal/identity"
)

// Handler serves the identity HTTP API.
type Handler struct {
	auth   *identity.AuthService
	otp    *identity.OTPService
	logger *slog.Logger
}

// NewHandler creates the API handler. A nil logger discards output.
func NewHandler(auth *identity.AuthService, otp *identity.OTPService, logger *slog.Logger) (*Handler, error) {
	if auth == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if otp == nil {
		return nil, oops.Errorf("otp service is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{auth: auth, otp: otp, logger: logger}, nil
}

// Routes registers every API route on mux behind the gate.
func (h *Handler) Routes(mux *http.ServeMux, gate *AuthenticationGate) {
	wrap := func(fn http.HandlerFunc) http.Handler { return gate.Wrap(fn) }

	mux.Handle("POST /api/users/register", wrap(h.handleRegister))
	mux.Handle("POST /api/auth/login", wrap(h.handleLogin))
	mux.Handle("POST /api/auth/exchange", wrap(h.handleExchange))
	mux.Handle("GET /api/auth/validate", wrap(h.handleValidate))
	mux.Handle("POST /api/users/change-password", wrap(h.handleChangePassword))
	mux.Handle("POST /api/users/otp/send/{email}", wrap(h.handleOTPSend))
	mux.Handle("GET /api/users/otp/verify/{email}/{code}", wrap(h.handleOTPVerify))
	mux.Handle("GET /api/users/me", wrap(h.handleMe))
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"accountType"`
}

type principalResponse struct {
	ID          int64  `json:"id"`
	ProfileID   int64  `json:"profileId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccountType string `json:"accountType"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	principal, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password, identity.AccountType(req.AccountType))
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAlreadyExists):
			respondError(w, http.StatusConflict, "email already registered")
		case isValidationError(err):
			respondError(w, http.StatusBadRequest, validationMessage(err))
		default:
			h.respondServiceError(w, r, err, "registration failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, principalResponse{
		ID:          principal.ID,
		ProfileID:   principal.ProfileID,
		Name:        principal.Name,
		Email:       principal.Email,
		AccountType: string(principal.AccountType),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredential) {
			// Unknown subject and wrong password answer identically.
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.respondServiceError(w, r, err, "login failed")
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type exchangeRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
}

type exchangeResponse struct {
	Token string            `json:"token"`
	User  principalResponse `json:"user"`
}

// handleExchange signs in a subject on the strength of an identity-provider
// assertion, creating the account on first contact. The provider credential
// itself is verified upstream; this endpoint receives the already-verified
// claims.
func (h *Handler) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	principal, token, err := h.auth.LoginWithVerifiedEmail(r.Context(), req.Email, req.Name, identity.AccountType(req.AccountType))
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		h.respondServiceError(w, r, err, "identity provider exchange failed")
		return
	}

	respondJSON(w, http.StatusOK, exchangeResponse{
		Token: token,
		User: principalResponse{
			ID:          principal.ID,
			ProfileID:   principal.ProfileID,
			Name:        principal.Name,
			Email:       principal.Email,
			AccountType: string(principal.AccountType),
		},
	})
}

type validateResponse struct {
	Subject string `json:"subject"`
}

// handleValidate reports whether the presented bearer resolved. The gate
// already ran, so a nil principal means the token was absent or invalid.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	respondJSON(w, http.StatusOK, validateResponse{Subject: principal.Email})
}

type changePasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), req.Email, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, identity.ErrNotFound):
			respondError(w, http.StatusNotFound, "unknown account")
		case isValidationError(err):
			respondError(w, http.StatusBadRequest, validationMessage(err))
		default:
			h.respondServiceError(w, r, err, "password change failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (h *Handler) handleOTPSend(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	if _, err := h.otp.Issue(r.Context(), email); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			respondError(w, http.StatusNotFound, "unknown account")
			return
		}
		h.respondServiceError(w, r, err, "otp issue failed")
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "verification code sent"})
}

func (h *Handler) handleOTPVerify(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	code := r.PathValue("code")

	if err := h.otp.Verify(r.Context(), email, code); err != nil {
		switch {
		case errors.Is(err, identity.ErrIncorrectOTP):
			respondError(w, http.StatusUnauthorized, "incorrect verification code")
		case errors.Is(err, identity.ErrNotFound):
			// Absent and expired answer identically.
			respondError(w, http.StatusNotFound, "no active verification code")
		default:
			h.respondServiceError(w, r, err, "otp verification failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "verified"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respondJSON(w, http.StatusOK, principalResponse{
		ID:          principal.ID,
		ProfileID:   principal.ProfileID,
		Name:        principal.Name,
		Email:       principal.Email,
		AccountType: string(principal.AccountType),
	})
}

// validationCodes are the error codes that blame the request, not the
// service.
var validationCodes = map[string]struct{}{
	"PRINCIPAL_INVALID_EMAIL":        {},
	"PRINCIPAL_INVALID_ACCOUNT_TYPE": {},
	"AUTH_PASSWORD_TOO_SHORT":        {},
}

func isValidationError(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	code, ok := oopsErr.Code().(string)
	if !ok {
		return false
	}
	_, found := validationCodes[code]
	return found
}

// validationMessage exposes the message of a validation error. Safe because
// validation errors describe the request, never internals.
func validationMessage(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Error()
	}
	return err.Error()
}

// respondServiceError logs the failure and answers with a generic message so
// that internals never leak to clients.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.logger.ErrorContext(r.Context(), msg, "method", r.Method, "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, msg)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads the request body into v, answering 400 on malformed
// input. Returns false when the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
