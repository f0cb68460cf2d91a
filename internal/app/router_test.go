package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeup-app/lifeup-api/internal/audit"
	"github.com/lifeup-app/lifeup-api/internal/auth"
	"github.com/lifeup-app/lifeup-api/internal/ratelimit"
	"github.com/lifeup-app/lifeup-api/internal/rbac"
	"github.com/lifeup-app/lifeup-api/internal/roles"
	"github.com/lifeup-app/lifeup-api/internal/shared"
	"github.com/lifeup-app/lifeup-api/internal/users"
	_ "github.com/lifeup-app/lifeup-api/testing"
)

type memRoleRepo struct {
	byID   map[string]*roles.Role
	byTier map[rbac.RoleTier]*roles.Role
}

func newMemRoleRepo(list ...roles.Role) *memRoleRepo {
	repo := &memRoleRepo{byID: map[string]*roles.Role{}, byTier: map[rbac.RoleTier]*roles.Role{}}
	for i := range list {
		role := list[i]
		repo.byID[role.ID] = &role
		repo.byTier[role.Tier] = &role
	}
	return repo
}

func (m *memRoleRepo) FindByID(_ context.Context, id string) (*roles.Role, error) {
	if r, ok := m.byID[id]; ok {
		return r, nil
	}
	return nil, shared.ErrRoleNotFound
}

func (m *memRoleRepo) FindByTier(_ context.Context, tier rbac.RoleTier) (*roles.Role, error) {
	if r, ok := m.byTier[tier]; ok {
		return r, nil
	}
	return nil, shared.ErrRoleNotFound
}

func (m *memRoleRepo) List(_ context.Context) ([]roles.Role, error) {
	out := make([]roles.Role, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, *r)
	}
	return out, nil
}

type memAccountRepo struct {
	byEmail map[string]*auth.User
	byID    map[string]*auth.User
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{byEmail: map[string]*auth.User{}, byID: map[string]*auth.User{}}
}

func (m *memAccountRepo) add(u *auth.User) {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
}

func (m *memAccountRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if u, ok := m.byEmail[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memAccountRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	if u, ok := m.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memAccountRepo) Create(_ context.Context, user *auth.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return shared.ErrDuplicate
	}
	m.add(user)
	return nil
}

type memUserRepo struct {
	byID map[string]*users.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*users.User{}}
}

func (m *memUserRepo) List(_ context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUserRepo) FindByID(_ context.Context, id string) (*users.User, error) {
	if u, ok := m.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memUserRepo) Create(_ context.Context, user *users.User, _ string) error {
	m.byID[user.ID] = user
	return nil
}

func (m *memUserRepo) Update(_ context.Context, user *users.User) error {
	if _, ok := m.byID[user.ID]; !ok {
		return shared.ErrNotFound
	}
	m.byID[user.ID] = user
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUserRepo) SetActive(_ context.Context, id string, active bool) error {
	u, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	return nil
}

type memAuditLog struct {
	entries []audit.Entry
}

func (m *memAuditLog) Record(_ context.Context, entry audit.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAuditLog) List(context.Context, int, int) ([]audit.Entry, error) {
	return m.entries, nil
}

var (
	superRole  = roles.Role{ID: "role-super", Name: "Super Administrator", Tier: rbac.TierSuperAdmin}
	adminRole  = roles.Role{ID: "role-admin", Name: "LifeUp Administrator", Tier: rbac.TierAdmin}
	clientRole = roles.Role{ID: "role-client", Name: "Client", Tier: rbac.TierClient}
)

type testServer struct {
	router   http.Handler
	issuer   *auth.TokenIssuer
	accounts *memAccountRepo
	managed  *memUserRepo
	log      *memAuditLog
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roleRepo := newMemRoleRepo(superRole, adminRole, clientRole)
	accounts := newMemAccountRepo()
	managed := newMemUserRepo()
	log := &memAuditLog{}

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  []byte("router-access-secret"),
		RefreshSecret: []byte("router-refresh-secret"),
	})
	require.NoError(t, err)

	authService := auth.NewService(accounts, roleRepo, issuer)
	userService := users.NewService(managed, roleRepo)
	roleService := roles.NewServiceWithRepository(roleRepo)

	policies, err := NewPolicyTable()
	require.NoError(t, err)

	cfg := &Config{
		AppEnv:            "test",
		AppRequestTimeout: 30 * time.Second,
		LoginIPLimit:      1000,
		RateLimitBackend:  "memory",
	}

	router, err := NewRouter(RouterParams{
		Config:   cfg,
		Logger:   logger,
		Policies: policies,
		Authenticator: auth.Authenticator{
			Tokens:   issuer,
			Resolver: roles.NewResolver(roleRepo),
			Logger:   logger,
		},
		RateLimit: ratelimit.Middleware{
			Limiter: ratelimit.NewLimiter(ratelimit.NewMemoryStore()),
			Logger:  logger,
		},
		Recorder:     log,
		AuthHandler:  auth.NewHandler(logger, authService),
		UsersHandler: users.NewHandler(logger, userService),
		RolesHandler: roles.NewHandler(logger, roleService),
		AuditHandler: audit.NewHandler(logger, log),
	})
	require.NoError(t, err)

	return &testServer{router: router, issuer: issuer, accounts: accounts, managed: managed, log: log}
}

func (s *testServer) seedAccount(t *testing.T, email, password string, role roles.Role, active bool) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := &auth.User{
		ID:           "acct-" + email,
		Email:        email,
		Name:         "Seeded",
		PasswordHash: hash,
		RoleID:       role.ID,
		IsActive:     active,
	}
	s.accounts.add(user)
	return user
}

func (s *testServer) tokenFor(t *testing.T, user *auth.User, tier rbac.RoleTier) string {
	t.Helper()
	pair, err := s.issuer.IssuePair(auth.PairInput{
		SubjectID: user.ID,
		Email:     user.Email,
		RoleID:    user.RoleID,
		RoleTier:  tier,
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "198.51.100.7:52000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLoginRefreshFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "client@lifeup.local", "correct horse", clientRole, true)

	rec := srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "client@lifeup.local",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loginResp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			Email string `json:"email"`
			Role  struct {
				Type string `json:"type"`
			} `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	assert.Equal(t, "client@lifeup.local", loginResp.User.Email)
	assert.Equal(t, "CLIENT", loginResp.User.Role.Type)
	assert.NotEmpty(t, loginResp.AccessToken)

	rec = srv.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": loginResp.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "client@lifeup.local", "correct horse", clientRole, true)

	rec := srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "client@lifeup.local",
		"password": "battery staple",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClientForbiddenOnManagementAPI(t *testing.T) {
	srv := newTestServer(t)
	client := srv.seedAccount(t, "client@lifeup.local", "correct horse", clientRole, true)
	token := srv.tokenFor(t, client, rbac.TierClient)

	rec := srv.do(http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodGet, "/api/roles", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAnonymousUnauthorizedOnManagementAPI(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTamperedTokenIsUnauthorized(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.seedAccount(t, "admin@lifeup.local", "correct horse", adminRole, true)
	token := srv.tokenFor(t, admin, rbac.TierAdmin)

	rec := srv.do(http.MethodGet, "/api/users", token[:len(token)-2]+"xx", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminCanManageUsers(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.seedAccount(t, "admin@lifeup.local", "correct horse", adminRole, true)
	token := srv.tokenFor(t, admin, rbac.TierAdmin)

	rec := srv.do(http.MethodPost, "/api/users", token, map[string]any{
		"email":    "new@lifeup.local",
		"name":     "New Person",
		"password": "long enough pw",
		"roleId":   clientRole.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The create is a tagged mutation by an admin, so it landed in the log.
	require.Len(t, srv.log.entries, 1)
	assert.Equal(t, "CREATE", srv.log.entries[0].Action)
	assert.Equal(t, "USERS", srv.log.entries[0].Resource)
	assert.Equal(t, admin.ID, srv.log.entries[0].UserID)
}

func TestUserDeleteIsSuperAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.seedAccount(t, "admin@lifeup.local", "correct horse", adminRole, true)
	super := srv.seedAccount(t, "root@lifeup.local", "correct horse", superRole, true)
	srv.managed.byID["victim"] = &users.User{ID: "victim", Email: "v@lifeup.local", RoleID: clientRole.ID}

	rec := srv.do(http.MethodDelete, "/api/users/victim", srv.tokenFor(t, admin, rbac.TierAdmin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/users/victim", srv.tokenFor(t, super, rbac.TierSuperAdmin), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	require.Len(t, srv.log.entries, 1)
	assert.Equal(t, "DELETE", srv.log.entries[0].Action)
}

func TestActivityLogsAreSuperAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.seedAccount(t, "admin@lifeup.local", "correct horse", adminRole, true)
	super := srv.seedAccount(t, "root@lifeup.local", "correct horse", superRole, true)

	rec := srv.do(http.MethodGet, "/api/activity-logs", srv.tokenFor(t, admin, rbac.TierAdmin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodGet, "/api/activity-logs", srv.tokenFor(t, super, rbac.TierSuperAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnonymousRateLimitOnAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	body := map[string]string{"email": "nobody@lifeup.local", "password": "whatever pw"}
	for i := 0; i < ratelimit.QuotaAnonymous; i++ {
		rec := srv.do(http.MethodPost, "/api/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "request %d", i+1)
	}

	rec := srv.do(http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retryAfter, 0)
}

func TestDeactivatedAccountCannotLogin(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "gone@lifeup.local", "correct horse", clientRole, false)

	rec := srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "gone@lifeup.local",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAssignsClientTier(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "fresh@lifeup.local",
		"name":     "Fresh Person",
		"password": "long enough pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			Role struct {
				Type string `json:"type"`
			} `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CLIENT", resp.User.Role.Type)
}
