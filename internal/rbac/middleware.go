package rbac

import (
	"net/http"

	"github.com/lifeup-app/lifeup-api/internal/platform/httpx"
	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// Require builds middleware enforcing the policy's tier set. An anonymous
// caller on a protected operation is unauthorized; an authenticated caller
// outside the tier set gets a generic forbidden that does not reveal which
// tiers the policy names.
func Require(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.Public() {
				next.ServeHTTP(w, r)
				return
			}
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, shared.ErrInvalidToken)
				return
			}
			if !Authorize(principal.RoleTier, policy.Roles) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
