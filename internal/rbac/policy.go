package rbac

import (
	"fmt"
	"strings"
)

// AuditTag names a privilege-sensitive operation for the activity recorder.
type AuditTag struct {
	Action   string
	Resource string
}

// Policy declares the required tiers and optional audit tag for one operation.
type Policy struct {
	Operation string
	Roles     []RoleTier
	Audit     *AuditTag
}

// Public reports whether the operation carries no tier restriction.
func (p Policy) Public() bool {
	return len(p.Roles) == 0
}

// PolicyTable is the static operation-to-policy mapping, built once at
// startup and never mutated afterwards.
type PolicyTable struct {
	policies map[string]Policy
}

// NewPolicyTable validates and indexes the given policies.
func NewPolicyTable(policies ...Policy) (*PolicyTable, error) {
	table := &PolicyTable{policies: make(map[string]Policy, len(policies))}
	for _, p := range policies {
		op := strings.TrimSpace(p.Operation)
		if op == "" {
			return nil, fmt.Errorf("rbac: policy with empty operation name")
		}
		if _, exists := table.policies[op]; exists {
			return nil, fmt.Errorf("rbac: duplicate policy for operation %q", op)
		}
		for _, tier := range p.Roles {
			if _, ok := ParseTier(string(tier)); !ok {
				return nil, fmt.Errorf("rbac: policy %q references unknown tier %q", op, tier)
			}
		}
		p.Operation = op
		table.policies[op] = p
	}
	return table, nil
}

// Lookup returns the policy declared for the operation.
func (t *PolicyTable) Lookup(operation string) (Policy, bool) {
	p, ok := t.policies[operation]
	return p, ok
}
