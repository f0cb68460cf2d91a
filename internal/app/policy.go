package app

import "github.com/lifeup-app/lifeup-api/internal/rbac"

// Operation names used by the policy table and the router.
const (
	OpUsersList        = "users.list"
	OpUsersGet         = "users.get"
	OpUsersCreate      = "users.create"
	OpUsersUpdate      = "users.update"
	OpUsersDelete      = "users.delete"
	OpUsersDeactivate  = "users.deactivate"
	OpRolesList        = "roles.list"
	OpRolesGet         = "roles.get"
	OpActivityLogsList = "activitylogs.list"
)

// NewPolicyTable declares required tiers and audit tags per operation.
// SUPER_ADMIN is listed explicitly wherever ADMIN_LIFEUP is allowed; the
// decision engine grants nothing by inference.
func NewPolicyTable() (*rbac.PolicyTable, error) {
	adminTiers := []rbac.RoleTier{rbac.TierSuperAdmin, rbac.TierAdmin}
	return rbac.NewPolicyTable(
		rbac.Policy{Operation: OpUsersList, Roles: adminTiers},
		rbac.Policy{Operation: OpUsersGet, Roles: adminTiers},
		rbac.Policy{
			Operation: OpUsersCreate,
			Roles:     adminTiers,
			Audit:     &rbac.AuditTag{Action: "CREATE", Resource: "USERS"},
		},
		rbac.Policy{
			Operation: OpUsersUpdate,
			Roles:     adminTiers,
			Audit:     &rbac.AuditTag{Action: "UPDATE", Resource: "USERS"},
		},
		rbac.Policy{
			Operation: OpUsersDelete,
			Roles:     []rbac.RoleTier{rbac.TierSuperAdmin},
			Audit:     &rbac.AuditTag{Action: "DELETE", Resource: "USERS"},
		},
		rbac.Policy{
			Operation: OpUsersDeactivate,
			Roles:     adminTiers,
			Audit:     &rbac.AuditTag{Action: "DEACTIVATE", Resource: "USERS"},
		},
		rbac.Policy{Operation: OpRolesList, Roles: adminTiers},
		rbac.Policy{Operation: OpRolesGet, Roles: adminTiers},
		rbac.Policy{Operation: OpActivityLogsList, Roles: []rbac.RoleTier{rbac.TierSuperAdmin}},
	)
}
