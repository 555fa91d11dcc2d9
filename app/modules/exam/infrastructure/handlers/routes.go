package examhandlers

import (
	"net/http"

	"github.com/Black-And-White-Club/dojo-portal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

// RouteConfig carries what the HTTP routes need besides the handlers.
type RouteConfig struct {
	Tokens         jwt.Service
	Limiter        *IPRateLimiter
	AllowedOrigins []string
}

// RegisterRoutes mounts the exam endpoints under /api/exams.
func RegisterRoutes(r chi.Router, h Handlers, cfg RouteConfig) {
	r.Route("/api/exams", func(r chi.Router) {
		r.Use(CORSMiddleware(cfg.AllowedOrigins))
		if cfg.Limiter != nil {
			r.Use(RateLimitMiddleware(cfg.Limiter))
		}
		r.Use(AdminMiddleware(cfg.Tokens))

		r.Post("/results/import", h.HandleHTTPImportResults)
		r.Post("/registrations/import", h.HandleHTTPImportRegistrations)
		r.Get("/import/template", h.HandleHTTPTemplate)
		r.Get("/{testID}/results", h.HandleHTTPListResults)
		r.Get("/{testID}/registrations", h.HandleHTTPListRegistrations)
	})
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
