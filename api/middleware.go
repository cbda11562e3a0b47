package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"ccf-policy/api/handlers"
	"ccf-policy/core/rbac"
	"ccf-policy/core/utils"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	rolesKey
)

const requestIDHeader = "X-Request-ID"

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Errorf("panic %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				handlers.WriteError(w, http.StatusInternalServerError, "internal", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 64 {
			if u, err := uuid.NewV4(); err == nil {
				id = u.String()
			}
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return "-"
}

func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("RESP %s %s id=%s status=%d dur=%s bytes=%d", r.Method, r.URL.Path, requestID(r.Context()), rec.status, time.Since(start), rec.size)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (s *Server) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && s.cfg.HTTP.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.HTTP.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// tokenMiddleware resolves the bearer token to a role when API auth is on.
func (s *Server) tokenMiddleware(next http.Handler) http.Handler {
	if !s.cfg.Auth.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		role, known := s.roleForToken(strings.TrimSpace(token))
		if !ok || !known {
			handlers.WriteError(w, http.StatusUnauthorized, "auth.unauthorized", "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), rolesKey, []string{role})))
	})
}

func (s *Server) roleForToken(token string) (string, bool) {
	for t, role := range s.cfg.Auth.Tokens {
		if utils.TokenEquals(token, t) {
			return role, true
		}
	}
	return "", false
}

func (s *Server) requirePermission(perm string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if !s.cfg.Auth.Enabled {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			roles, _ := r.Context().Value(rolesKey).([]string)
			if !s.policy.Allowed(roles, rbac.Permission(perm)) {
				s.logger.Printf("PERM fail %s %s roles=%v need=%s", r.Method, r.URL.Path, roles, perm)
				handlers.WriteError(w, http.StatusForbidden, "auth.forbidden", "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}
