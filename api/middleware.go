/*
middleware.go - Authentication and authorization middleware

PURPOSE:
  Validates bearer tokens on protected routes and attaches the caller's
  identity to the request context. RequireHR gates the approval and
  administration endpoints to the HR role.

SEE ALSO:
  - token.go: Token validation
  - server.go: Where the middleware is mounted
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/warp/leave-engine/auth"
)

type contextKey int

const claimsKey contextKey = iota

// CallerClaims is the authenticated identity attached to the context.
type CallerClaims struct {
	UserID int64
	Role   auth.Role
}

// ClaimsFromContext returns the caller identity set by Authenticate.
func ClaimsFromContext(ctx context.Context) (CallerClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(CallerClaims)
	return claims, ok
}

// Authenticate validates the Authorization header and stores the
// caller's claims in the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Missing or malformed authorization header", nil)
			return
		}

		claims, err := h.Tokens.Validate(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		caller := CallerClaims{UserID: claims.UserID, Role: auth.Role(claims.Role)}
		ctx := context.WithValue(r.Context(), claimsKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireHR rejects callers that do not hold the HR role.
func RequireHR(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		if caller.Role != auth.RoleHR {
			writeError(w, http.StatusForbidden, "HR role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
