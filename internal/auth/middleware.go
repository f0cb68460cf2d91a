package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lifeup-app/lifeup-api/internal/platform/httpx"
	"github.com/lifeup-app/lifeup-api/internal/rbac"
	"github.com/lifeup-app/lifeup-api/internal/roles"
	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// Authenticator turns an optional bearer token into a request principal.
// Requests without an Authorization header pass through anonymously; a
// present but unverifiable token is rejected outright. The role id inside
// the claims is re-resolved against storage, so a token naming a deleted
// role is unauthorized rather than trusted or crashed on.
type Authenticator struct {
	Tokens   *TokenIssuer
	Resolver *roles.Resolver
	Logger   *slog.Logger
}

// Handler wraps next with bearer-token authentication.
func (a Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present := bearerToken(r)
		if !present {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.Tokens.VerifyAccess(token)
		if err != nil {
			httpx.RespondError(w, shared.ErrInvalidToken)
			return
		}

		tier, err := a.Resolver.Resolve(r.Context(), claims.RoleID)
		if err != nil {
			if a.Logger != nil {
				a.Logger.Warn("resolve token role", slog.String("roleId", claims.RoleID), slog.Any("error", err))
			}
			httpx.RespondError(w, shared.ErrInvalidToken)
			return
		}

		ctx := rbac.ContextWithPrincipal(r.Context(), claims.Principal(tier))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	// The auth scheme is case-insensitive.
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", true
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
