// Package rbac decides which API token roles may call which operations.
package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj
`

// Policy is a casbin enforcer over role grants and role inheritance.
type Policy struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
	names    []string
}

func NewPolicy(roles []Role) *Policy {
	p := &Policy{}
	p.Replace(roles)
	return p
}

func (p *Policy) Allowed(userRoles []string, perm Permission) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.enforcer == nil {
		return false
	}
	for _, r := range userRoles {
		if ok, err := p.enforcer.Enforce(r, string(perm)); err == nil && ok {
			return true
		}
	}
	return false
}

func (p *Policy) Roles() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.names...)
}

// Replace rebuilds the enforcer from roles.
func (p *Policy) Replace(roles []Role) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		panic(err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		panic(err)
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
		for _, perm := range r.Permissions {
			_, _ = e.AddPolicy(r.Name, string(perm))
		}
		for _, parent := range r.Inherits {
			_, _ = e.AddGroupingPolicy(r.Name, parent)
		}
	}
	p.mu.Lock()
	p.enforcer = e
	p.names = names
	p.mu.Unlock()
}
