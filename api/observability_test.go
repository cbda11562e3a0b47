package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsEndpointDisabledByDefault(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestMetricsEndpointRequiresTokenByDefault(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	s := newTestServer(t, cfg)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestMetricsEndpointWithToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	cfg.Metrics.Token = "secret"
	s := newTestServer(t, cfg)

	gen := httptest.NewRecorder()
	s.router.ServeHTTP(gen, httptest.NewRequest(http.MethodPost, "/api/policies/generate",
		strings.NewReader(`{"policy_standard":"Access Control","selected_frameworks":["iso_27001"]}`)))
	if gen.Code != http.StatusOK {
		t.Fatalf("generate failed: %d %s", gen.Code, gen.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"ccf_uptime_seconds",
		"ccf_templates 2",
		`ccf_policy_generations_total{format="md",outcome="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s: missing request id header", path)
		}
	}

	empty := NewServer(testConfig(t), nil, ServerDeps{})
	rr := httptest.NewRecorder()
	empty.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without deps, got %d", rr.Code)
	}
}
