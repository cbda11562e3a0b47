package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ccf-policy/config"
	"ccf-policy/core/mapping"
	"ccf-policy/core/rbac"
	"ccf-policy/core/utils"
)

type Server struct {
	cfg        *config.AppConfig
	router     chi.Router
	httpServer *http.Server
	logger     *utils.Logger
	deps       ServerDeps
	engine     *mapping.Engine
	policy     *rbac.Policy
	metrics    *metrics
}

func NewServer(cfg *config.AppConfig, logger *utils.Logger, deps ServerDeps) *Server {
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		logger: logger,
		deps:   deps,
		engine: mapping.NewEngine(deps.Data),
		policy: rbac.NewPolicy(rbac.DefaultRoles()),
	}
	s.metrics = newMetrics(deps.Templates)
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.HTTP.WriteTimeout,
	}
	s.logger.Printf("listening on %s", s.cfg.ListenAddr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
