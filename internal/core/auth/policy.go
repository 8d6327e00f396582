package auth

import (
	"fmt"
	"net/http"
	"slices"

	"online-library/internal/domain"
)

// Rule grants access to one route. Anonymous rules admit requests without
// an identity; otherwise the identity's role must be listed.
type Rule struct {
	Method    string
	Path      string
	Roles     []domain.Role
	Anonymous bool
}

// Policy is evaluated once per request against the matched route pattern.
// Routes without a rule admit any authenticated identity.
type Policy struct {
	rules map[string]Rule
}

func NewPolicy(rules ...Rule) *Policy {
	p := &Policy{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		p.rules[r.Method+" "+r.Path] = r
	}
	return p
}

func (p *Policy) Rule(method, path string) (Rule, bool) {
	r, ok := p.rules[method+" "+path]
	return r, ok
}

// Check returns nil, ErrUnauthenticated or ErrForbidden.
func (p *Policy) Check(method, path string, who *domain.Principal) error {
	r, ok := p.Rule(method, path)
	if ok && r.Anonymous {
		return nil
	}
	if who == nil {
		return fmt.Errorf("%w: %s %s", domain.ErrUnauthenticated, method, path)
	}
	if !ok || len(r.Roles) == 0 {
		return nil
	}
	if !slices.Contains(r.Roles, who.Role) {
		return fmt.Errorf("%w: role %s may not %s %s", domain.ErrForbidden, who.Role, method, path)
	}
	return nil
}

var (
	adminOnly  = []domain.Role{domain.RoleAdmin}
	anyRole    = []domain.Role{domain.RoleAdmin, domain.RoleUser}
	buyersOnly = []domain.Role{domain.RoleUser}
)

// LibraryPolicy is the access table of the HTTP surface.
func LibraryPolicy() *Policy {
	return NewPolicy(
		Rule{Method: http.MethodPost, Path: "/authors", Roles: adminOnly},
		Rule{Method: http.MethodGet, Path: "/authors", Roles: anyRole},
		Rule{Method: http.MethodDelete, Path: "/authors/:id", Roles: adminOnly},

		Rule{Method: http.MethodPost, Path: "/books", Roles: adminOnly},
		Rule{Method: http.MethodGet, Path: "/books", Roles: anyRole},
		Rule{Method: http.MethodGet, Path: "/books/:id", Roles: anyRole},
		Rule{Method: http.MethodPut, Path: "/books/:id", Roles: adminOnly},
		Rule{Method: http.MethodDelete, Path: "/books/:id", Roles: adminOnly},
		Rule{Method: http.MethodPost, Path: "/books/:id/purchase", Roles: buyersOnly},

		Rule{Method: http.MethodPost, Path: "/users", Anonymous: true},
		Rule{Method: http.MethodPost, Path: "/users/auth", Anonymous: true},

		Rule{Method: http.MethodGet, Path: "/health", Anonymous: true},
		Rule{Method: http.MethodGet, Path: "/metrics", Anonymous: true},
	)
}
