package api

import (
	"context"
	"os"
	"strings"
	"testing"

	"ccf-policy/config"
	"ccf-policy/core/controls"
	"ccf-policy/core/dataset"
	"ccf-policy/core/policy"
	"ccf-policy/core/templates"
	"ccf-policy/core/utils"
)

type fakeConverter struct{}

func (fakeConverter) MarkdownToDocx(_ context.Context, src, dst string) (string, error) {
	if dst == "" {
		dst = strings.TrimSuffix(src, ".md") + ".docx"
	}
	return dst, os.WriteFile(dst, []byte("docx-bytes"), 0o600)
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := &config.AppConfig{}
	cfg.Output.Dir = t.TempDir()
	cfg.HTTP.MaxBodyBytes = 1 << 16
	return cfg
}

func testData() *dataset.DataSet {
	guidance := []controls.Control{
		{ID: "AC-01", Name: "Access Provisioning", Domain: "Identity & Access", PolicyStandard: "Access Control",
			Description: "Access is approved.", ImplementationGuidance: "Approve requests.", AuditArtifacts: []string{"E-1"}},
		{ID: "AC-02", Name: "Account Reviews", Domain: "Identity & Access", PolicyStandard: "Access Control",
			References: map[string][]string{"soc_2": {"CC6.2"}}},
	}
	framework := []controls.Control{
		{ID: "AC-01", Name: "Access Provisioning\nsecond line"},
		{ID: "AC-02", Name: "Account Reviews"},
		{ID: "BC-01", Name: "Backups"},
	}
	mapping := dataset.Mapping{
		"AC-01": {"iso_27001": {"A.9.1"}},
		"AC-02": {"iso_27001": {"A.9.1"}, "soc_2": {"CC6.2"}},
		"BC-01": {"iso_27001": {"A.17.1"}},
	}
	evidence := []dataset.EvidenceRecord{{ID: "E-1", Domain: "Identity", Title: "Approval tickets"}}
	return dataset.New(guidance, framework, mapping, evidence)
}

func newTestServer(t *testing.T, cfg *config.AppConfig) *Server {
	t.Helper()
	logger := utils.NopLogger()
	data := testData()
	reg, err := templates.NewRegistry(context.Background(), nil, logger)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	gen := policy.NewGenerator(data, reg, fakeConverter{}, policy.Options{OutputDir: cfg.Output.Dir}, logger)
	return NewServer(cfg, logger, ServerDeps{Data: data, Templates: reg, Generator: gen})
}
