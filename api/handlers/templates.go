package handlers

import (
	"net/http"

	"ccf-policy/core/templates"
	"ccf-policy/core/utils"
)

type TemplatesHandler struct {
	registry *templates.Registry
	logger   *utils.Logger
}

func NewTemplatesHandler(registry *templates.Registry, logger *utils.Logger) *TemplatesHandler {
	return &TemplatesHandler{registry: registry, logger: logger}
}

func (h *TemplatesHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"templates": h.registry.List()})
}

func (h *TemplatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.registry.Details(urlParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

func (h *TemplatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in templates.Input
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, err)
		return
	}
	t, err := h.registry.Create(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, t)
}

func (h *TemplatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p templates.Patch
	if err := decodeJSON(r, &p); err != nil {
		writeErr(w, err)
		return
	}
	t, err := h.registry.Update(r.Context(), urlParam(r, "id"), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

func (h *TemplatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
