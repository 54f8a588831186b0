package routes

import (
	"net/http"

	"github.com/BradenHooton/dbconn/internal/handlers"
	"github.com/BradenHooton/dbconn/internal/middleware"
	pkghttp "github.com/BradenHooton/dbconn/pkg/http"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes. A non-positive health
// limit falls back to middleware.DefaultHealthRateLimit.
func RegisterRoutes(
	router chi.Router,
	healthHandler *handlers.HealthHandler,
	healthLimit middleware.RateLimitConfig,
) {
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteNotFound(w, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteMethodNotAllowed(w, "Method not allowed")
	})

	if healthLimit.RequestsPerMinute <= 0 {
		healthLimit = middleware.DefaultHealthRateLimit()
	}

	router.With(middleware.RateLimitByIP(healthLimit)).Get("/health", healthHandler.Health)
}
