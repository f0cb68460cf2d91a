package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyTableIndexesPolicies(t *testing.T) {
	table, err := NewPolicyTable(
		Policy{Operation: "users.list", Roles: []RoleTier{TierSuperAdmin, TierAdmin}},
		Policy{Operation: "roles.list", Roles: []RoleTier{TierSuperAdmin, TierAdmin}},
		Policy{Operation: "ping"},
	)
	require.NoError(t, err)

	p, ok := table.Lookup("users.list")
	require.True(t, ok)
	assert.Equal(t, []RoleTier{TierSuperAdmin, TierAdmin}, p.Roles)
	assert.False(t, p.Public())

	p, ok = table.Lookup("ping")
	require.True(t, ok)
	assert.True(t, p.Public())

	_, ok = table.Lookup("users.delete")
	assert.False(t, ok)
}

func TestNewPolicyTableRejectsDuplicates(t *testing.T) {
	_, err := NewPolicyTable(
		Policy{Operation: "users.list", Roles: []RoleTier{TierAdmin}},
		Policy{Operation: "users.list", Roles: []RoleTier{TierSuperAdmin}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewPolicyTableRejectsUnknownTier(t *testing.T) {
	_, err := NewPolicyTable(
		Policy{Operation: "users.list", Roles: []RoleTier{"MODERATOR"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tier")
}

func TestNewPolicyTableRejectsEmptyOperation(t *testing.T) {
	_, err := NewPolicyTable(Policy{Operation: "  "})
	require.Error(t, err)
}
