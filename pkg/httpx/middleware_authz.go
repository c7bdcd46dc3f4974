package httpx

import (
	"net/http"
	"strings"
)

// RequireRole lets the request through only when the authenticated user has
// one of the given roles. It must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.HasRole(roles...) {
				WriteError(w, http.StatusForbidden, "insufficient_role",
					"requires role "+strings.Join(roles, " or "))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
