package domain

import "context"

// Employee roles. A principal's role decides which live-tracking groups it
// joins and which commands it may issue.
const (
	RoleDispatcher = "dispatcher"
	RoleDriver     = "driver"
	RoleManager    = "manager"
)

type principalKey struct{}

// ContextPrincipal carries the authenticated identity through request context.
type ContextPrincipal struct {
	Name     string
	TenantID string
	Roles    []string
}

// HasRole reports whether the principal carries the given role.
func (p ContextPrincipal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithPrincipal stores a ContextPrincipal in the context.
func WithPrincipal(ctx context.Context, p ContextPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the ContextPrincipal from the context.
func PrincipalFromContext(ctx context.Context) (ContextPrincipal, bool) {
	p, ok := ctx.Value(principalKey{}).(ContextPrincipal)
	return p, ok
}
