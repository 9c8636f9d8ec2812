// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// PulseCRM API. Everything under /api requires a bearer token; the health
// check is public.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"pulsecrm/internal/handlers"
	"pulsecrm/internal/middleware"
)

// Options configures the middleware around the API handlers.
type Options struct {
	// Tokens verifies bearer tokens for the /api group.
	Tokens middleware.TokenVerifier

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	// IPLimiter throttles every /api request by client IP. Nil disables it.
	IPLimiter *middleware.RateLimiter

	// Limiter throttles AI generation per owner. Nil disables throttling.
	Limiter *middleware.RateLimiter
}

// New creates the configured Chi router.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		if opts.IPLimiter != nil {
			r.Use(opts.IPLimiter.Middleware)
		}
		r.Use(middleware.Authenticate(opts.Tokens))

		r.Get("/components", api.Components)

		r.Route("/customizations", func(r chi.Router) {
			r.Get("/", api.ListCustomizations)
			r.Get("/{id}", api.GetCustomization)
			r.Post("/{id}/apply", api.ApplyCustomization)
			r.Post("/{id}/rollback", api.RollbackCustomization)
			r.Post("/{id}/preview", api.StartPreview)
		})
		r.Delete("/preview", api.StopPreview)

		r.Route("/styles", func(r chi.Router) {
			r.Get("/active.css", api.ActiveCSS)
			r.Get("/preview.css", api.PreviewCSS)
			r.Post("/compile", api.Compile)
		})

		// Wizard, throttled per owner because every call may reach an LLM.
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(opts.Limiter.PerOwner)
			}
			r.Post("/wizard", api.Wizard)
			r.Post("/wizard/generate", api.Generate)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", api.ListSessions)
			r.Post("/", api.CreateSession)
			r.Get("/{id}/turns", api.ListTurns)
			r.Delete("/{id}", api.DeleteSession)
		})

		r.Get("/settings", api.GetSettings)
		r.Put("/settings", api.UpdateSettings)

		r.Get("/ai/provider", api.GetProvider)
		r.Put("/ai/provider", api.SwitchProvider)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
