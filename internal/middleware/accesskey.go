// Package middleware provides HTTP middlewares for access gating and logging.
package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AccessKeyHeader carries the shared admin access key.
const AccessKeyHeader = "X-Access-Key"

// AccessKey gates a route group behind a fixed shared secret. This is a
// UI gate for the admin dashboard, not a security boundary: the
// prototype has no real authentication.
func AccessKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AccessKeyHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				http.Error(w, "admin access key required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
