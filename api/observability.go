package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ccf-policy/api/handlers"
	"ccf-policy/core/utils"
)

var processStartedAt = time.Now().UTC()

func (s *Server) registerObservabilityRoutes() {
	s.router.MethodFunc("GET", "/healthz", s.healthz)
	s.router.MethodFunc("GET", "/readyz", s.readyz)

	if s.cfg.Metrics.Enabled {
		handler := promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})
		s.router.Method("GET", "/metrics", s.requireMetricsAuth(handler))
	}
}

func (s *Server) requireMetricsAuth(next http.Handler) http.Handler {
	token := strings.TrimSpace(s.cfg.Metrics.Token)
	if token == "" {
		if s.cfg.IsDev() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !utils.TokenEquals(strings.TrimSpace(got), token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"now":        time.Now().UTC().Format(time.RFC3339Nano),
		"uptime_sec": int64(time.Since(processStartedAt).Seconds()),
		"app_env":    s.cfg.AppEnv,
	})
}

// readyz reports ready once the dataset is loaded and, for SQL template
// storage, the database answers.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Data == nil || s.deps.Templates == nil || s.deps.Generator == nil {
		handlers.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.deps.DB.PingContext(ctx); err != nil {
			handlers.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	c := s.deps.Data.Counts()
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"controls":  c.Guidance,
		"mapped":    c.Mapped,
		"evidence":  c.Evidence,
		"templates": s.deps.Templates.Count(),
	})
}
