package handlers

import (
	"net/http"

	"ccf-policy/core/controls"
	"ccf-policy/core/dataset"
	"ccf-policy/core/evidence"
	"ccf-policy/core/mapping"
	"ccf-policy/core/render"
	"ccf-policy/core/utils"
)

// CatalogHandler serves read-only views of the loaded dataset.
type CatalogHandler struct {
	data     *dataset.DataSet
	engine   *mapping.Engine
	evidence *evidence.Resolver
	logger   *utils.Logger
}

func NewCatalogHandler(data *dataset.DataSet, engine *mapping.Engine, logger *utils.Logger) *CatalogHandler {
	return &CatalogHandler{data: data, engine: engine, evidence: evidence.NewResolver(data), logger: logger}
}

func (h *CatalogHandler) Frameworks(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"frameworks": controls.Frameworks()})
}

func (h *CatalogHandler) PolicyStandards(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"standards": h.engine.Standards(),
		"domains":   h.data.Domains(),
	})
}

type controlView struct {
	controls.Control
	Crosswalk []mapping.ForwardRow `json:"crosswalk"`
	Evidence  []evidence.Item      `json:"evidence"`
}

func (h *CatalogHandler) Control(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	c, ok := h.data.ControlByID(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "controls.not_found", "control not found: "+id)
		return
	}
	WriteJSON(w, http.StatusOK, controlView{
		Control:   c,
		Crosswalk: h.engine.ForwardTable([]controls.Control{c}, controls.FrameworkKeys),
		Evidence:  h.evidence.Resolve(c.AuditArtifacts),
	})
}

func (h *CatalogHandler) Sections(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"sections": render.Sections()})
}
