package middleware

import (
	"context"
	"net/http"
	"strings"

	"eventshare/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// AccessVerifier verifies an access token and returns its identity claims.
type AccessVerifier interface {
	VerifyAccess(token string) (*domain.TokenClaims, error)
}

// SetClaims returns a context with the token claims set. Used by auth middleware.
func SetClaims(ctx context.Context, claims *domain.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the authenticated identity claims from the
// context, if present.
func ClaimsFromContext(ctx context.Context) (*domain.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*domain.TokenClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.UserID, true
}

// unauthorized mirrors the delivery package's JSON error envelope without
// importing it (the delivery package imports middleware for route wiring).
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"data":null,"error":{"code":"unauthorized","message":"` + message + `"}}`))
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// identity claims in the request context. If the token is missing or invalid,
// it responds with 401 and does not call next. Invalid and expired tokens get
// the same message.
func RequireAuth(verifier AccessVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				unauthorized(w, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				unauthorized(w, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				unauthorized(w, "missing token")
				return
			}
			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			r = r.WithContext(SetClaims(r.Context(), claims))
			next(w, r)
		}
	}
}
