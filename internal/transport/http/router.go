// Package http wires the service's HTTP surface: the proofing flow, MFA
// setup, assertion issuance, and operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idport/internal/platform/middleware"
	"idport/pkg/requesttime"
)

const requestTimeout = 30 * time.Second

// Handler is anything that mounts routes on the router.
type Handler interface {
	Register(r chi.Router)
}

// HealthChecker reports dependency health for the readiness endpoint.
type HealthChecker func(r *http.Request) error

// NewRouter assembles the middleware stack and mounts all handlers.
// A nil latency observer disables endpoint latency recording.
func NewRouter(logger *slog.Logger, latency middleware.LatencyObserver, health HealthChecker, handlers ...Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(latency))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
