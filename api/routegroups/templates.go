package routegroups

import (
	"github.com/go-chi/chi/v5"

	"ccf-policy/api/handlers"
)

func RegisterTemplates(apiRouter chi.Router, g Guards, h *handlers.TemplatesHandler) {
	apiRouter.Route("/templates", func(r chi.Router) {
		r.MethodFunc("GET", "/", g.Perm("templates.view", h.List))
		r.MethodFunc("POST", "/", g.Perm("templates.manage", h.Create))
		r.MethodFunc("GET", "/{id}", g.Perm("templates.view", h.Get))
		r.MethodFunc("PUT", "/{id}", g.Perm("templates.manage", h.Update))
		r.MethodFunc("DELETE", "/{id}", g.Perm("templates.manage", h.Delete))
	})
}
