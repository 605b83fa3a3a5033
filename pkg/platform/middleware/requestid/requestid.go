// Package requestid assigns a unique ID to every request and exposes it both
// to downstream code (via request context) and to callers (via response
// header), so one ID ties together logs, traces, and responses.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"payguard/pkg/requestcontext"
)

// Header is the response header carrying the generated request ID.
const Header = "X-Request-Id"

// Middleware injects a request ID into the context and the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
