package app

import (
	"net/http"

	examhandlers "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func metricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// newHTTPRouter builds the root router. Module routes are mounted on it afterwards.
func newHTTPRouter(registry *prometheus.Registry, serveMetrics bool) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", examhandlers.HealthHandler)
	if serveMetrics {
		r.Handle("/metrics", metricsHandler(registry))
	}
	return r
}
