// Package middleware holds the bearer-token and rate-limit middleware shared by the API routes.
package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/http/httperr"
)

type Verifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				httperr.Message(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			id, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				httperr.Message(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole lets through callers whose role is one of roles. It must run after Authenticate.
func RequireRole(roles ...application.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				httperr.Message(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			if !slices.Contains(roles, id.Role) {
				httperr.Message(w, http.StatusForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
