// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// OwnerKey is the context key for the authenticated owner's id.
	OwnerKey contextKey = "owner"
)

// TokenVerifier resolves a bearer token to the owner it identifies.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// Authenticate rejects requests without a valid bearer token with a JSON
// 401 and stores the token's owner in the request context. Downstream
// handlers read it with OwnerFromCtx().
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			owner, err := tokens.Verify(token)
			if err != nil {
				slog.Debug("bearer token rejected", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithOwner returns a copy of ctx carrying owner.
func WithOwner(ctx context.Context, owner uuid.UUID) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}

// OwnerFromCtx extracts the authenticated owner from the request context.
// The second result is false if the request was not authenticated.
func OwnerFromCtx(ctx context.Context) (uuid.UUID, bool) {
	owner, ok := ctx.Value(OwnerKey).(uuid.UUID)
	return owner, ok && owner != uuid.Nil
}
