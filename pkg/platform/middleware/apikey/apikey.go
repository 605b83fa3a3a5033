// Package apikey implements static API key authentication for service
// callers. Caller identity is established here so domain services can assume
// an authenticated principal.
package apikey

import (
	"crypto/subtle"
	"net/http"

	dErrors "payguard/pkg/domain-errors"
	"payguard/pkg/platform/httputil"
)

// Header is the request header carrying the caller's API key.
const Header = "X-API-Key"

// Middleware rejects requests whose API key does not match expected.
func Middleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(Header)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or missing API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
