package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/Nrlsb/Logistica-Remitos/internal/session"
)

type contextKey string

// UserContextKey carries the *session.Claims of the authenticated request
const UserContextKey contextKey = "user"

// AuthMiddleware validates the bearer token and re-checks the session mutex
// against the store on every request. All failure sub-reasons (expired,
// superseded, account gone) answer the same way; the distinction only
// reaches the log.
func AuthMiddleware(guard *session.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			claims, err := guard.Authenticate(tokenString)
			if err != nil {
				log.Printf("🔒 Rejected %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Session ended", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the credential from the Authorization header, or from
// the legacy x-auth-token header older scanner clients still send.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.Header.Get("x-auth-token")
}

// ClaimsFromContext returns the authenticated claims, or nil on
// unauthenticated requests.
func ClaimsFromContext(ctx context.Context) *session.Claims {
	claims, _ := ctx.Value(UserContextKey).(*session.Claims)
	return claims
}

// RequireRole gates a handler to one role (e.g. admin-only user management)
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil || claims.Role != role {
				http.Error(w, "Access denied", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
