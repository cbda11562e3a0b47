package routegroups

import (
	"github.com/go-chi/chi/v5"

	"ccf-policy/api/handlers"
)

func RegisterPolicies(apiRouter chi.Router, g Guards, h *handlers.PoliciesHandler) {
	apiRouter.MethodFunc("POST", "/policies/generate", g.Perm("policies.generate", h.Generate))
	apiRouter.MethodFunc("POST", "/mapping", g.Perm("mapping.view", h.Mapping))
}
