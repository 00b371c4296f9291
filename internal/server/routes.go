package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/bselens/bselens/internal/server/handlers"
)

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", MetricsHandler)

	if s.api == nil {
		return
	}

	exchange := &handlers.Exchange{API: s.api}
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/lookup", exchange.Lookup)
		r.Get("/scrips/{code}/name", exchange.ScripName)
		r.Get("/symbols/{symbol}/code", exchange.ScripCode)
		r.Get("/quotes/{code}", exchange.Quote)
		r.Get("/throttle", exchange.Throttle)
	})
}
