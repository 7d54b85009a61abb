package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sendai-ikuei-track/site-server/internal/config"
	"github.com/sendai-ikuei-track/site-server/internal/handler"
	"github.com/sendai-ikuei-track/site-server/internal/middleware"
	"github.com/sendai-ikuei-track/site-server/internal/service"
)

type routerDeps struct {
	cfg            *config.Config
	access         *service.AccessService
	contact        *service.ContactService
	attemptLimiter service.RateLimiter
	csrf           *middleware.CSRFMiddleware
	health         *handler.HealthHandler
}

func newRouter(d routerDeps) http.Handler {
	isProduction := d.cfg.IsProduction()

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(config.ContactMaxBodySize)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)
	exclusiveGate := middleware.NewExclusiveGate(d.access)
	attemptThrottle := middleware.NewIPRateLimitMiddleware(
		d.attemptLimiter, d.cfg.ExclusiveAttemptsPerMinute, config.ExclusiveAttemptWindow, "exclusive",
	)

	accessHandler := handler.NewAccessHandler(d.access, attemptThrottle.Handler, isProduction)
	contactHandler := handler.NewContactHandler(d.contact)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(securityHeadersMiddleware.Handler)

	r.Method(http.MethodGet, "/health", d.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.NewCORSMiddleware(d.cfg.CORSOrigins))
		r.Use(d.csrf.Handler)
		r.Use(bodyLimitMiddleware.Handler)

		r.Mount("/auth/exclusive", accessHandler.Routes())
		r.Mount("/contact", contactHandler.Routes())
	})

	r.Route("/limited-content", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(exclusiveGate.Handler)
		r.Handle("/*", handler.NewContentHandler(d.cfg.ExclusiveContentDir, ""))
	})

	return r
}
