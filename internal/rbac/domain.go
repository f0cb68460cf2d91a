package rbac

import "context"

// RoleTier is one of the three fixed privilege levels. The persistence layer
// may attach names and descriptions to role rows, but authorization decisions
// consume only the tier.
type RoleTier string

const (
	// TierSuperAdmin has full system access.
	TierSuperAdmin RoleTier = "SUPER_ADMIN"
	// TierAdmin can manage content and regular users.
	TierAdmin RoleTier = "ADMIN_LIFEUP"
	// TierClient is the default tier for new registrations.
	TierClient RoleTier = "CLIENT"
)

// ParseTier validates a raw tier string against the fixed set.
func ParseTier(raw string) (RoleTier, bool) {
	switch RoleTier(raw) {
	case TierSuperAdmin, TierAdmin, TierClient:
		return RoleTier(raw), true
	}
	return "", false
}

// Privilege returns the total ordering of the tier, higher is more privileged.
func (t RoleTier) Privilege() int {
	switch t {
	case TierSuperAdmin:
		return 3
	case TierAdmin:
		return 2
	case TierClient:
		return 1
	}
	return 0
}

// HasAdminPrivileges reports whether the tier is SUPER_ADMIN or ADMIN_LIFEUP.
func (t RoleTier) HasAdminPrivileges() bool {
	return t == TierSuperAdmin || t == TierAdmin
}

// Principal is the identity reconstructed per request from verified token
// claims. It is never persisted.
type Principal struct {
	ID        string
	Email     string
	RoleID    string
	RoleTier  RoleTier
	IsPremium bool
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, nil when anonymous.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
