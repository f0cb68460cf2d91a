package rbac

// Authorize decides whether a caller tier may invoke an operation scoped to
// the required tiers. An empty required set means the operation is public.
// Membership is exact: no tier is implicitly granted another tier's
// operations, so policy declarations list SUPER_ADMIN explicitly wherever
// ADMIN_LIFEUP is allowed.
func Authorize(caller RoleTier, required []RoleTier) bool {
	if len(required) == 0 {
		return true
	}
	for _, tier := range required {
		if caller == tier {
			return true
		}
	}
	return false
}
