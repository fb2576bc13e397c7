package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/metrics"
)

// Logging logs each completed request and records it in m.
func Logging(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			m.ObserveRequest(r.Method, strconv.Itoa(status), duration.Seconds())

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", duration.String(),
				"remote_addr", r.RemoteAddr,
			}
			if r.URL.Path == "/health" {
				logger.DebugCtx(r.Context(), "request completed", args...)
				return
			}
			logger.InfoCtx(r.Context(), "request completed", args...)
		})
	}
}
