package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyAuth guards the monitoring endpoints with a single shared key. The
// bot runs unattended, so the API's only audience is an operator or a status
// dashboard; one static key checked in constant time is enough. The key is
// read from X-API-Key, or from Authorization: Bearer for clients that only
// speak bearer auth.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				authHeader := r.Header.Get("Authorization")
				if strings.HasPrefix(authHeader, "Bearer ") {
					key = strings.TrimPrefix(authHeader, "Bearer ")
				}
			}

			if key == "" {
				respondJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "missing API key: set X-API-Key or Authorization: Bearer <key>",
				})
				return
			}

			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				respondJSON(w, http.StatusForbidden, map[string]string{
					"error": "invalid API key",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
