package api

import (
	"net/http"

	"github.com/ethpandaops/parkoor/pkg/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// buildRouter constructs the chi router with all routes and middleware.
func (s *server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.metrics.instrument)
	r.Use(s.corsMiddleware())

	if root := s.cfg.Server.RootPath; root != "" {
		r.Route(root, s.mountRoutes)
	} else {
		s.mountRoutes(r)
	}

	return r
}

func (s *server) mountRoutes(r chi.Router) {
	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	r.Get("/uploads/{name}", s.handleEvidence)

	// Interactive sign-in.
	r.Group(func(r chi.Router) {
		if s.cfg.Server.RateLimit.Enabled {
			r.Use(s.rateLimitMiddleware(s.cfg.Server.RateLimit.Auth))
		}

		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/sso", s.handleSSO)
	})

	// Session endpoints.
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession(auth.Roles(auth.RoleAdmin, auth.RoleGuard, auth.RoleViewer)))

		r.Get("/api/auth/me", s.handleMe)
		r.Get("/admin", s.handleAdmin)
	})

	// Enforcement devices.
	r.Group(func(r chi.Router) {
		if s.cfg.Server.RateLimit.Enabled {
			r.Use(s.rateLimitMiddleware(s.cfg.Server.RateLimit.Machine))
		}

		r.Use(s.requireAPIKey)

		r.Get("/api/plates/check", s.handleCheckPlate)
		r.Post("/api/violations/upload", s.handleUploadViolation)
	})
}

// corsMiddleware returns a CORS handler configured from the server config.
func (s *server) corsMiddleware() func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", apiKeyHeader, siteHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}

	origins := s.cfg.Server.CORSOrigins

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// Reflect the requesting origin so credentials work from any origin.
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool {
			return true
		}
	} else {
		opts.AllowedOrigins = origins
	}

	return cors.Handler(opts)
}
