package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	chiMiddleware "github.com/go-chi/chi/middleware"
)

// sensitiveHeaders are redacted from request logs.
var sensitiveHeaders = []string{
	"authorization",
	"cookie",
	"x-api-key",
}

// Logging logs one line per request with method, path, status, and
// duration. Credential-bearing headers are redacted.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := chiMiddleware.GetReqID(r.Context())

			ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", FilterHeaders(r.Header),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}

// FilterHeaders returns a copy of headers safe to log.
func FilterHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		redacted := false
		for _, sensitive := range sensitiveHeaders {
			if lower == sensitive {
				redacted = true
				break
			}
		}
		if redacted {
			out[name] = "[REDACTED]"
		} else {
			out[name] = strings.Join(values, ", ")
		}
	}
	return out
}
