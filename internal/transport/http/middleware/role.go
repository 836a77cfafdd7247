package middleware

import (
	"errors"
	"net/http"

	"github.com/jobboard-api/internal/application/access"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/metrics"
)

// RequireRole allows only principals whose role is in allowed. It must run after
// Authenticator.Required.
func RequireRole(allowed domain.RoleSet, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := PrincipalFromContext(r.Context())
			if err := access.RequireRole(u, allowed); err != nil {
				if errors.Is(err, domain.ErrForbidden) {
					m.AccessDenied("role")
					writeJSONError(w, http.StatusForbidden, "forbidden")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
