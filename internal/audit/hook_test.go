package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeup-app/lifeup-api/internal/rbac"
)

type captureRecorder struct {
	entries []Entry
	err     error
}

func (c *captureRecorder) Record(_ context.Context, entry Entry) error {
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, entry)
	return nil
}

var deleteTag = rbac.AuditTag{Action: "DELETE", Resource: "USERS"}

func runHook(recorder Recorder, principal *rbac.Principal, status int) *httptest.ResponseRecorder {
	handler := Hook(deleteTag, recorder, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/users/u9", nil)
	req.RemoteAddr = "198.51.100.7:52000"
	req.Header.Set("User-Agent", "lifeup-test/1.0")
	if principal != nil {
		req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHookRecordsAdminSuccess(t *testing.T) {
	sink := &captureRecorder{}
	admin := &rbac.Principal{ID: "admin-1", RoleTier: rbac.TierAdmin}

	rec := runHook(sink, admin, http.StatusNoContent)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, "admin-1", entry.UserID)
	assert.Equal(t, "DELETE", entry.Action)
	assert.Equal(t, "USERS", entry.Resource)
	assert.JSONEq(t, `{"method":"DELETE","path":"/api/users/u9"}`, entry.Details)
	assert.Equal(t, "198.51.100.7:52000", entry.IPAddress)
	assert.Equal(t, "lifeup-test/1.0", entry.UserAgent)
}

func TestHookSkipsFailedResponses(t *testing.T) {
	sink := &captureRecorder{}
	admin := &rbac.Principal{ID: "admin-1", RoleTier: rbac.TierSuperAdmin}

	runHook(sink, admin, http.StatusConflict)
	runHook(sink, admin, http.StatusInternalServerError)
	assert.Empty(t, sink.entries)
}

func TestHookSkipsNonAdminCallers(t *testing.T) {
	sink := &captureRecorder{}

	runHook(sink, &rbac.Principal{ID: "c1", RoleTier: rbac.TierClient}, http.StatusOK)
	runHook(sink, nil, http.StatusOK)
	assert.Empty(t, sink.entries)
}

func TestHookSwallowsRecorderErrors(t *testing.T) {
	sink := &captureRecorder{err: errors.New("queue unavailable")}
	admin := &rbac.Principal{ID: "admin-1", RoleTier: rbac.TierAdmin}

	rec := runHook(sink, admin, http.StatusOK)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHookDefaultsImplicitStatusToOK(t *testing.T) {
	sink := &captureRecorder{}
	admin := &rbac.Principal{ID: "admin-1", RoleTier: rbac.TierAdmin}

	handler := Hook(deleteTag, sink, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	req := httptest.NewRequest(http.MethodDelete, "/api/users/u9", nil)
	req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), admin))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, sink.entries, 1)
}
