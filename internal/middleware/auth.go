package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bloodlink/backend/internal/httpx"
	"github.com/bloodlink/backend/internal/token"
)

type ctxKeyClaims struct{}

// ClaimsFrom returns the authenticated subject's claims, if any.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims{}).(*token.Claims)
	return c, ok
}

// WithClaims stores claims in the context; exported for handler tests.
func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims{}, c)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func RequireAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				httpx.JSONError(w, http.StatusUnauthorized, "No token provided", nil)
				return
			}
			claims, err := tokens.Validate(raw)
			if err != nil {
				if err == token.ErrExpired {
					httpx.JSONError(w, http.StatusUnauthorized, "Token expired", nil)
					return
				}
				httpx.JSONError(w, http.StatusUnauthorized, "Invalid token", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole gates a subtree to subjects whose token type matches role.
// Must run after RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "No token provided", nil)
				return
			}
			if claims.Type != role {
				httpx.JSONError(w, http.StatusForbidden, "Insufficient privileges", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
