package middleware

import (
	"net/http"

	"wallmag/internal/reqctx"
	"wallmag/internal/utils/helpers"
)

// OnlyRole должен стоять после SessionAuth, чтобы роль уже была в контексте.
func OnlyRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole, ok := reqctx.GetRole(r.Context())
			if !ok || userRole != role {
				helpers.Error(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
