package routegroups

import (
	"github.com/go-chi/chi/v5"

	"ccf-policy/api/handlers"
)

func RegisterCatalog(apiRouter chi.Router, g Guards, h *handlers.CatalogHandler) {
	apiRouter.MethodFunc("GET", "/frameworks", g.Perm("catalog.view", h.Frameworks))
	apiRouter.MethodFunc("GET", "/policy-standards", g.Perm("catalog.view", h.PolicyStandards))
	apiRouter.MethodFunc("GET", "/controls/{id}", g.Perm("catalog.view", h.Control))
	apiRouter.MethodFunc("GET", "/sections", g.Perm("catalog.view", h.Sections))
}
