package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/lifeup-app/lifeup-api/internal/platform/httpx"
	"github.com/lifeup-app/lifeup-api/internal/rbac"
	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// Middleware admits or rejects requests based on the caller's quota.
// Authenticated callers are keyed by user id, anonymous callers by network
// address, so it must run after the authentication middleware.
type Middleware struct {
	Limiter *Limiter
	Logger  *slog.Logger
}

// Handler wraps next with quota admission.
func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := rbac.PrincipalFromContext(r.Context())
		key := callerKey(r, principal)

		decision, err := m.Limiter.Admit(r.Context(), key, principal)
		if err != nil {
			// Counter store outage: admit and keep serving, the quota
			// guarantee resumes when the store recovers.
			if m.Logger != nil {
				m.Logger.Warn("rate limiter store unavailable", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		if !decision.Allowed {
			httpx.RespondError(w, &shared.RateLimitedError{RetryAfter: decision.RetryAfter})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func callerKey(r *http.Request, p *rbac.Principal) string {
	if p != nil && p.ID != "" {
		return "user:" + p.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
