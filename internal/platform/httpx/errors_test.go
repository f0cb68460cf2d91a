package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeup-app/lifeup-api/internal/shared"
)

func respond(err error) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	RespondError(rec, err)
	return rec
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{"deactivated account", shared.ErrAccountDeactivated, http.StatusUnauthorized},
		{"invalid token", shared.ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden},
		{"validation", shared.ErrValidation, http.StatusBadRequest},
		{"not found", shared.ErrNotFound, http.StatusNotFound},
		{"duplicate", shared.ErrDuplicate, http.StatusConflict},
		{"role integrity", shared.ErrRoleIntegrity, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := respond(tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tc.want, problem.Status)
			assert.NotEmpty(t, problem.Title)
		})
	}
}

func TestRespondErrorWrappedErrorsKeepTheirStatus(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), shared.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, respond(wrapped).Code)
}

func TestRespondErrorRateLimited(t *testing.T) {
	rec := respond(&shared.RateLimitedError{RetryAfter: 42 * time.Second})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
}

func TestRespondErrorRateLimitedFloorsRetryAfter(t *testing.T) {
	rec := respond(&shared.RateLimitedError{RetryAfter: 200 * time.Millisecond})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := respond(errors.New("pq: connection refused"))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Empty(t, problem.Detail)
}
