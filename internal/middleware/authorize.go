package middleware

import (
	"net/http"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/http/respond"
	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/metrics"
)

// Authorize rejects requests to protected paths that carry no principal.
// It must run after Authenticate.
func Authorize(policy *auth.Policy, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.Decide(r.URL.Path, r.Method) == auth.Public {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
				logger.DebugCtx(r.Context(), "unauthorized request", "method", r.Method, "path", r.URL.Path)
				m.Denied()
				respond.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
