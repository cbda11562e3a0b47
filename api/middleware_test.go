package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ccf-policy/config"
	"ccf-policy/core/rbac"
	"ccf-policy/core/utils"
)

func authConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Auth.Enabled = true
	cfg.Auth.Tokens = map[string]string{"view-token": "viewer", "edit-token": "editor"}
	return cfg
}

func TestRequirePermissionDeniesMissingPermission(t *testing.T) {
	s := &Server{cfg: authConfig(), policy: rbac.NewPolicy(rbac.DefaultRoles()), logger: utils.NopLogger()}
	handler := s.requirePermission("templates.manage")(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/api/templates", nil)
	req = req.WithContext(context.WithValue(req.Context(), rolesKey, []string{"viewer"}))
	rr := httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %d", rr.Code)
	}
}

func TestTokenAuthOnRoutes(t *testing.T) {
	cfg := authConfig()
	cfg.Output.Dir = t.TempDir()
	s := newTestServer(t, cfg)

	cases := []struct {
		name, method, path, token string
		want                      int
	}{
		{"no token", http.MethodGet, "/api/frameworks", "", http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/api/frameworks", "nope", http.StatusUnauthorized},
		{"viewer reads", http.MethodGet, "/api/templates", "view-token", http.StatusOK},
		{"viewer cannot delete", http.MethodDelete, "/api/templates/standard", "view-token", http.StatusForbidden},
		{"editor reaches registry", http.MethodDelete, "/api/templates/standard", "edit-token", http.StatusForbidden},
		{"editor deletes missing", http.MethodDelete, "/api/templates/ghost", "edit-token", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.want, rr.Code, rr.Body.String())
		}
	}
}

func TestRecoverMiddleware(t *testing.T) {
	s := &Server{cfg: &config.AppConfig{}, logger: utils.NopLogger()}
	h := s.recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
}
