package api

import (
	"github.com/go-chi/chi/v5"

	"ccf-policy/api/handlers"
	"ccf-policy/api/routegroups"
)

func (s *Server) registerRoutes() {
	s.router.Use(s.recoverMiddleware)
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.securityHeadersMiddleware)

	s.registerObservabilityRoutes()

	apiRouter := chi.NewRouter()
	apiRouter.Use(s.bodyLimitMiddleware)
	apiRouter.Use(s.tokenMiddleware)

	g := routegroups.Guards{RequirePermission: s.requirePermission}
	catalog := handlers.NewCatalogHandler(s.deps.Data, s.engine, s.logger)
	policies := handlers.NewPoliciesHandler(s.deps.Generator, s.engine, s.cfg.Output.DefaultFormat, s.metrics, s.logger)
	tpls := handlers.NewTemplatesHandler(s.deps.Templates, s.logger)

	routegroups.RegisterCatalog(apiRouter, g, catalog)
	routegroups.RegisterPolicies(apiRouter, g, policies)
	routegroups.RegisterTemplates(apiRouter, g, tpls)
	s.router.Mount("/api", apiRouter)
}
