package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gymnica/clubapi/internal/models"
	pkghttp "github.com/gymnica/clubapi/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// PrincipalContextKey is the key for storing token claims in context
	PrincipalContextKey contextKey = "principal"
)

// Middleware validates the bearer token and injects the principal's
// claims into the request context.
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Non autenticato")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "Non autenticato")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Non autenticato")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMember rejects requests whose principal is not a member.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetPrincipal(r)
		if claims == nil || claims.Role != models.RoleMember || claims.MemberID == "" {
			pkghttp.WriteUnauthorized(w, "Non autenticato")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose principal is not the admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetPrincipal(r)
		if claims == nil || claims.Role != models.RoleAdmin {
			pkghttp.WriteUnauthorized(w, "Non autorizzato")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipal extracts the authenticated principal's claims from the
// request context, nil when the request is unauthenticated.
func GetPrincipal(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(PrincipalContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
