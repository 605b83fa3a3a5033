// Package httpapi wires the public HTTP surface. Handlers delegate to domain
// services; transport concerns (auth, request ids, metrics exposition) stay
// here.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	paymenthandler "payguard/internal/payment/handler"
	"payguard/pkg/platform/middleware/apikey"
	"payguard/pkg/platform/middleware/requestid"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter mounts all public endpoints. Payment routes sit behind API key
// auth; health and metrics are open for probes and scrapers. Any health
// checkers passed in gate the readiness answer.
func NewRouter(payments *paymenthandler.Handler, apiKey string, checkers ...HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Get("/healthz", handleHealth(checkers))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(apikey.Middleware(apiKey))
		payments.Register(r)
	})

	return r
}

func handleHealth(checkers []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for _, c := range checkers {
			if err := c.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
