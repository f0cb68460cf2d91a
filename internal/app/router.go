package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/lifeup-app/lifeup-api/internal/audit"
	"github.com/lifeup-app/lifeup-api/internal/auth"
	"github.com/lifeup-app/lifeup-api/internal/ratelimit"
	"github.com/lifeup-app/lifeup-api/internal/rbac"
	"github.com/lifeup-app/lifeup-api/internal/roles"
	"github.com/lifeup-app/lifeup-api/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config        *Config
	Logger        *slog.Logger
	Policies      *rbac.PolicyTable
	Authenticator auth.Authenticator
	RateLimit     ratelimit.Middleware
	Recorder      audit.Recorder

	AuthHandler  *auth.Handler
	UsersHandler *users.Handler
	RolesHandler *roles.Handler
	AuditHandler *audit.Handler
}

// NewRouter constructs the chi.Router. Every protected route follows the
// same pipeline: authenticate, authorize against the policy table, admit
// through the rate limiter, execute, then record tagged operations.
func NewRouter(params RouterParams) (http.Handler, error) {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)
	r.Use(params.Authenticator.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	guards, err := buildGuards(params)
	if err != nil {
		return nil, err
	}

	loginShield := httprate.Limit(
		params.Config.LoginIPLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Use(loginShield)
			ar.Use(params.RateLimit.Handler)
			params.AuthHandler.MountRoutes(ar)
		})

		api.Route("/users", func(ur chi.Router) {
			ur.With(guards[OpUsersList]...).Get("/", params.UsersHandler.List)
			ur.With(guards[OpUsersCreate]...).Post("/", params.UsersHandler.Create)
			ur.With(guards[OpUsersGet]...).Get("/{id}", params.UsersHandler.Get)
			ur.With(guards[OpUsersUpdate]...).Patch("/{id}", params.UsersHandler.Update)
			ur.With(guards[OpUsersDelete]...).Delete("/{id}", params.UsersHandler.Delete)
			ur.With(guards[OpUsersDeactivate]...).Post("/{id}/deactivate", params.UsersHandler.Deactivate)
		})

		api.Route("/roles", func(rr chi.Router) {
			rr.With(guards[OpRolesList]...).Get("/", params.RolesHandler.List)
			rr.With(guards[OpRolesGet]...).Get("/{id}", params.RolesHandler.Get)
		})

		api.With(guards[OpActivityLogsList]...).Get("/activity-logs", params.AuditHandler.List)
	})

	return r, nil
}

// buildGuards assembles the per-operation middleware chain from the policy
// table: authorize, then rate-limit, then the audit hook for tagged
// operations. Order matters and mirrors the request pipeline.
func buildGuards(params RouterParams) (map[string][]func(http.Handler) http.Handler, error) {
	operations := []string{
		OpUsersList, OpUsersGet, OpUsersCreate, OpUsersUpdate,
		OpUsersDelete, OpUsersDeactivate,
		OpRolesList, OpRolesGet,
		OpActivityLogsList,
	}
	guards := make(map[string][]func(http.Handler) http.Handler, len(operations))
	for _, op := range operations {
		policy, ok := params.Policies.Lookup(op)
		if !ok {
			return nil, fmt.Errorf("app: no policy declared for operation %q", op)
		}
		chain := []func(http.Handler) http.Handler{
			rbac.Require(policy),
			params.RateLimit.Handler,
		}
		if policy.Audit != nil {
			chain = append(chain, audit.Hook(*policy.Audit, params.Recorder, params.Logger))
		}
		guards[op] = chain
	}
	return guards, nil
}
