package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"ccf-policy/core/mapping"
	"ccf-policy/core/policy"
	"ccf-policy/core/render"
	"ccf-policy/core/utils"
)

// GenerationObserver records the outcome of policy generations.
type GenerationObserver interface {
	ObserveGeneration(format, outcome string, d time.Duration)
}

type PoliciesHandler struct {
	generator     *policy.Generator
	engine        *mapping.Engine
	defaultFormat string
	observer      GenerationObserver
	logger        *utils.Logger
	now           func() time.Time
}

func NewPoliciesHandler(gen *policy.Generator, engine *mapping.Engine, defaultFormat string, observer GenerationObserver, logger *utils.Logger) *PoliciesHandler {
	if defaultFormat == "" {
		defaultFormat = policy.FormatMarkdown
	}
	return &PoliciesHandler{
		generator:     gen,
		engine:        engine,
		defaultFormat: defaultFormat,
		observer:      observer,
		logger:        logger,
		now:           time.Now,
	}
}

type generateResponse struct {
	Success      bool   `json:"success"`
	Content      string `json:"content"`
	Format       string `json:"format"`
	Filename     string `json:"filename"`
	Message      string `json:"message"`
	GenerationID string `json:"generation_id"`
	TemplateID   string `json:"template_id"`
	ControlCount int    `json:"control_count"`
}

func (h *PoliciesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = h.defaultFormat
	}
	label := format
	if format != policy.FormatMarkdown && format != policy.FormatDocx {
		label = "invalid"
	}
	outcome := "error"
	defer func() {
		if h.observer != nil {
			h.observer.ObserveGeneration(label, outcome, time.Since(started))
		}
	}()

	var cfg policy.Config
	if err := decodeJSON(r, &cfg); err != nil {
		writeErr(w, err)
		return
	}
	out, err := h.generator.Export(r.Context(), cfg, format)
	if err != nil {
		if !isClientError(err) {
			h.logger.Errorf("generate %q: %v", cfg.PolicyStandard, err)
		}
		writeErr(w, err)
		return
	}
	content := out.Content
	if out.Format == policy.FormatDocx {
		content = base64.StdEncoding.EncodeToString(out.Data)
	}
	outcome = "ok"
	WriteJSON(w, http.StatusOK, generateResponse{
		Success:      true,
		Content:      content,
		Format:       out.Format,
		Filename:     out.Filename,
		Message:      "Policy generated successfully",
		GenerationID: out.ID,
		TemplateID:   out.TemplateID,
		ControlCount: len(out.ControlIDs),
	})
}

type mappingRequest struct {
	SelectedFrameworks []string `json:"selected_frameworks"`
}

func (h *PoliciesHandler) Mapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	a := h.engine.Analyze(req.SelectedFrameworks)
	if len(a.Frameworks) == 0 {
		writeErr(w, &policy.ValidationError{Fields: []string{"selected_frameworks"}})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"content": render.AnalysisMarkdown(a, h.now()),
		"stats": map[string]any{
			"total_controls": a.Total(),
			"coverage":       a.Coverage,
		},
	})
}

func isClientError(err error) bool {
	status, _ := classify(err)
	return status < http.StatusInternalServerError
}
