package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/sentinelauth/sentinel/internal/handlers"
	"github.com/sentinelauth/sentinel/internal/metrics"
	"github.com/sentinelauth/sentinel/internal/middleware"
)

// RegisterRoutes registers all application routes. Debug and reset routes
// stay off the router in production.
func RegisterRoutes(
	router chi.Router,
	loginHandler *handlers.LoginHandler,
	adminHandler *handlers.AdminHandler,
	env string,
) {
	rateLimitConfig := middleware.DefaultLoginRateLimit()

	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/login", loginHandler.Login)

	router.Get("/stats", adminHandler.Stats)
	router.Method("GET", "/metrics", metrics.Handler())

	if env != "production" {
		router.Post("/debug/analysis", adminHandler.DebugAnalysis)
		router.Get("/debug/fingerprint/{fingerprint}", adminHandler.FingerprintHistory)
		router.Post("/reset-db", adminHandler.ResetDatabase)
	}
}
