package rbac

import (
	"sort"
	"strings"
)

type Permission string

const (
	PermCatalogView     Permission = "catalog.view"
	PermMappingView     Permission = "mapping.view"
	PermPoliciesCreate  Permission = "policies.generate"
	PermTemplatesView   Permission = "templates.view"
	PermTemplatesManage Permission = "templates.manage"
)

// Role grants permissions; Inherits names roles whose grants it includes.
type Role struct {
	Name        string
	Permissions []Permission
	Inherits    []string
}

var permissions = []Permission{
	PermCatalogView, PermMappingView, PermPoliciesCreate,
	PermTemplatesView, PermTemplatesManage,
}

var knownPermissionSet = buildPermissionSet()

func buildPermissionSet() map[Permission]struct{} {
	out := make(map[Permission]struct{}, len(permissions))
	for _, p := range permissions {
		out[p] = struct{}{}
	}
	return out
}

func AllPermissions() []Permission {
	out := make([]Permission, len(permissions))
	copy(out, permissions)
	return out
}

func IsKnownPermission(p Permission) bool {
	_, ok := knownPermissionSet[p]
	return ok
}

// NormalizePermissionNames lower-cases and dedupes names, splitting them
// into known and unknown permissions.
func NormalizePermissionNames(in []string) ([]string, []string) {
	validSet := map[string]struct{}{}
	invalidSet := map[string]struct{}{}
	for _, raw := range in {
		p := strings.ToLower(strings.TrimSpace(raw))
		if p == "" {
			continue
		}
		if IsKnownPermission(Permission(p)) {
			validSet[p] = struct{}{}
			continue
		}
		invalidSet[p] = struct{}{}
	}
	return sortedSet(validSet), sortedSet(invalidSet)
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var roles = []Role{
	{Name: "viewer", Permissions: []Permission{PermCatalogView, PermMappingView, PermPoliciesCreate, PermTemplatesView}},
	{Name: "editor", Permissions: []Permission{PermTemplatesManage}, Inherits: []string{"viewer"}},
}

func DefaultRoles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
