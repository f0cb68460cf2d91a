package roles

import (
	"time"

	"github.com/lifeup-app/lifeup-api/internal/rbac"
)

// Role is a role row. Name and Description are descriptive metadata only;
// authorization consumes the fixed Tier.
type Role struct {
	ID          string
	Name        string
	Tier        rbac.RoleTier
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
