package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/handlers"
)

// APIKeyHeader carries the caller's key on write requests.
const APIKeyHeader = "api_key"

// APIKeyAuth rejects requests whose api_key header is missing (401) or not
// one of keys (403). An empty key list lets every request through.
func APIKeyAuth(keys []string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)

			if apiKey == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "API key required", logger)
				return
			}

			valid := false
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(k)) == 1 {
					valid = true
					break
				}
			}

			if !valid {
				handlers.WriteError(w, http.StatusForbidden, "Invalid API key", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
