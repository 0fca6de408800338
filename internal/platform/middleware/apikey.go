package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// APIKeyHeader is the shared-secret header every inter-party call carries.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey rejects requests whose shared secret is absent or mismatched
// before any business logic executes. Comparison is constant-time.
func RequireAPIKey(key string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(APIKeyHeader)
			if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				logger.WarnContext(r.Context(), "rejected request with missing or invalid API key",
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"missing or invalid API key"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
