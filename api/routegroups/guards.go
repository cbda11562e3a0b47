package routegroups

import "net/http"

type Guards struct {
	RequirePermission func(string) func(http.HandlerFunc) http.HandlerFunc
}

func (g Guards) Perm(perm string, handler http.HandlerFunc) http.HandlerFunc {
	if g.RequirePermission == nil {
		return handler
	}
	return g.RequirePermission(perm)(handler)
}
